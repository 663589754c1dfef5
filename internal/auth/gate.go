package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderAuthorization は資格情報を運ぶHTTPヘッダー名。
const HeaderAuthorization = "Authorization"

// bearerScheme は資格情報ヘッダーで受け付ける認証スキーム。
const bearerScheme = "Bearer"

// Verifier はトークンを検証して主体の身元を返す。
// *TokenService が実装する。
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Gate はリクエストから資格情報を取り出して検証する。
// ストレージには触れない（失効リストが設定された場合を除く）。
type Gate struct {
	// verifier はトークン検証を委譲する先。
	verifier Verifier
	// revocations はトークン失効リスト。nilの場合は照合しない。
	revocations RevocationList
}

// GateOption はGateの設定を変更する関数。
type GateOption func(*Gate)

// WithRevocationList はトークン失効リストを設定する。
func WithRevocationList(list RevocationList) GateOption {
	return func(g *Gate) {
		g.revocations = list
	}
}

// NewGate は新しいGateを生成する。
func NewGate(verifier Verifier, opts ...GateOption) *Gate {
	g := &Gate{verifier: verifier}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate はAuthorizationヘッダーのBearerトークンを検証し、主体の身元を返す。
//
// ヘッダーが無い場合はErrMissingCredential、"Bearer <token>" の2要素形式でない場合は
// ErrMalformedCredential、検証に失敗した場合はErrInvalidTokenを返す。
func (g *Gate) Authenticate(r *http.Request) (Identity, error) {
	header := strings.TrimSpace(r.Header.Get(HeaderAuthorization))
	if header == "" {
		return Identity{}, ErrMissingCredential
	}

	token, err := parseBearer(header)
	if err != nil {
		return Identity{}, err
	}

	identity, err := g.verifier.Verify(token)
	if err != nil {
		return Identity{}, err
	}

	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(r.Context(), identity.TokenID)
		if err != nil {
			return Identity{}, fmt.Errorf("トークン失効リストの照合に失敗: %w", err)
		}
		if revoked {
			return Identity{}, ErrInvalidToken
		}
	}

	return identity, nil
}

// parseBearer は "Bearer <token>" 形式のヘッダー値からトークンを取り出す。
func parseBearer(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", ErrMalformedCredential
	}
	return parts[1], nil
}
