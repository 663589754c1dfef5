package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL はIDトークンの既定の有効期間（3000秒）。
const DefaultTokenTTL = 3000 * time.Second

// defaultIssuer はトークンのissクレームの既定値。
const defaultIssuer = "voting-backend"

// Claims はIDトークンのクレーム（ペイロード）を表す。
// 主体IDはsubクレームに格納し、ロールは含めない。
type Claims struct {
	jwt.RegisteredClaims
}

// Identity は検証済みトークンから得られた主体の身元。
type Identity struct {
	// SubjectID は主体（ユーザー）の一意識別子。
	SubjectID string
	// TokenID はトークンの一意識別子（jti）。失効リストの照合に使用する。
	TokenID string
	// IssuedAt はトークンの発行日時。
	IssuedAt time.Time
	// ExpiresAt はトークンの有効期限。
	ExpiresAt time.Time
}

// TokenService はIDトークンの発行と検証を行う。
// 状態を持たないため、複数のgoroutineから同時に使用できる。
type TokenService struct {
	// secret はHMAC署名用の秘密鍵。起動時に一度だけ注入される。
	secret []byte
	// ttl はトークンの有効期間。
	ttl time.Duration
	// issuer はissクレームに設定する発行者名。
	issuer string
	// now は現在時刻を返す関数。テストで差し替える。
	now func() time.Time
}

// TokenOption はTokenServiceの設定を変更する関数。
type TokenOption func(*TokenService)

// WithTTL はトークンの有効期間を設定する。
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithIssuer はissクレームの値を設定する。
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithClock は現在時刻を返す関数を設定する。
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService は新しいTokenServiceを生成する。
// 秘密鍵が空の場合はエラーを返す。
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("トークン署名用の秘密鍵が空です")
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		issuer: defaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL はトークンの有効期間を返す。
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue は主体IDを埋め込んだ署名付きトークンを発行する。
func (s *TokenService) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("主体IDが空です")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名・形式・有効期限を検証し、主体の身元を返す。
// いずれかに失敗した場合はErrInvalidTokenを返す。
func (s *TokenService) Verify(token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(_ *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, wrap(KindInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		SubjectID: claims.Subject,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
