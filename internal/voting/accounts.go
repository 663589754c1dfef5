package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/pkg/event"
)

// TokenIssuer はIDトークンを発行する。*auth.TokenService が実装する。
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// SignupInput はユーザー登録の入力。
type SignupInput struct {
	Name             string
	Age              int
	Email            string
	Mobile           string
	Address          string
	AadharCardNumber string
	Password         string
	// Role は省略時に投票者となる。
	Role auth.Role
}

// Accounts はユーザー登録・ログイン・プロフィール管理を行う。
type Accounts struct {
	stores      Stores
	tx          TxRunner
	tokens      TokenIssuer
	revocations auth.RevocationList
	now         func() time.Time
}

// AccountsOption はAccountsの設定を変更する関数。
type AccountsOption func(*Accounts)

// WithRevocations はログアウト時にトークンを失効させるための失効リストを設定する。
func WithRevocations(list auth.RevocationList) AccountsOption {
	return func(a *Accounts) {
		a.revocations = list
	}
}

// WithAccountsClock は現在時刻を返す関数を設定する。
func WithAccountsClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAccounts は新しいAccountsを生成する。
func NewAccounts(stores Stores, tx TxRunner, tokens TokenIssuer, opts ...AccountsOption) *Accounts {
	a := &Accounts{
		stores: stores,
		tx:     tx,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Signup はユーザーを登録し、IDトークンを発行する。
// 管理者は1名のみ登録でき、2人目はErrAdminExistsになる。
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (User, string, error) {
	if err := validateSignup(&in); err != nil {
		return User{}, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, "", invalidInput("password is not acceptable")
	}

	user := User{
		ID:               uuid.New().String(),
		Name:             in.Name,
		Age:              in.Age,
		Email:            in.Email,
		Mobile:           in.Mobile,
		Address:          in.Address,
		AadharCardNumber: in.AadharCardNumber,
		PasswordHash:     hash,
		Role:             in.Role,
		CreatedAt:        a.now().UTC(),
	}

	err = a.tx.RunInTx(ctx, func(s Stores) error {
		if err := s.Voters.Create(ctx, user); err != nil {
			return err
		}
		ev, err := event.New(user.ID, event.AggregateTypeUser, event.TypeUserSignedUp, event.UserSignedUpData{
			Role: string(user.Role),
		})
		if err != nil {
			return err
		}
		return s.Events.Append(ctx, ev)
	})
	if errors.Is(err, ErrConflict) {
		return User{}, "", a.classifyConflict(ctx, user)
	}
	if err != nil {
		return User{}, "", fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// classifyConflict は登録時の一意制約違反が本人確認番号と管理者のどちらによるものか判定する。
func (a *Accounts) classifyConflict(ctx context.Context, user User) error {
	if _, err := a.stores.Voters.FindByCredentialRef(ctx, user.AadharCardNumber); err == nil {
		return ErrDuplicateCredential
	}
	if user.Role == auth.RoleAdmin {
		return ErrAdminExists
	}
	return ErrDuplicateCredential
}

// Login は本人確認番号とパスワードを照合し、IDトークンを発行する。
// ユーザーが存在しない場合とパスワード不一致は区別せずErrInvalidCredentialsを返す。
func (a *Accounts) Login(ctx context.Context, aadharCardNumber, password string) (string, error) {
	aadharCardNumber = strings.TrimSpace(aadharCardNumber)
	if aadharCardNumber == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := a.stores.Voters.FindByCredentialRef(ctx, aadharCardNumber)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if !auth.ComparePassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return a.tokens.Issue(user.ID)
}

// Logout は身元のトークンを残りの有効期間だけ失効させる。
// 失効リストが設定されていない場合は何もしない。
func (a *Accounts) Logout(ctx context.Context, identity auth.Identity) error {
	if a.revocations == nil {
		return nil
	}
	ttl := identity.ExpiresAt.Sub(a.now())
	if err := a.revocations.Revoke(ctx, identity.TokenID, ttl); err != nil {
		return fmt.Errorf("トークンの失効に失敗: %w", err)
	}
	return nil
}

// Profile は身元の主体のユーザー情報を返す。
func (a *Accounts) Profile(ctx context.Context, identity auth.Identity) (User, error) {
	user, err := a.stores.Voters.FindByID(ctx, identity.SubjectID)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrVoterNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return user, nil
}

// ChangePassword は現在のパスワードを照合した上で新しいパスワードに変更する。
func (a *Accounts) ChangePassword(ctx context.Context, identity auth.Identity, current, next string) error {
	if next == "" {
		return invalidInput("newPassword is required")
	}

	user, err := a.Profile(ctx, identity)
	if err != nil {
		return err
	}
	if !auth.ComparePassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return invalidInput("newPassword is not acceptable")
	}
	user.PasswordHash = hash

	return a.tx.RunInTx(ctx, func(s Stores) error {
		if err := s.Voters.Save(ctx, user); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrVoterNotFound
			}
			return fmt.Errorf("パスワードの更新に失敗: %w", err)
		}
		ev, err := event.New(user.ID, event.AggregateTypeUser, event.TypePasswordChanged, event.PasswordChangedData{})
		if err != nil {
			return err
		}
		return s.Events.Append(ctx, ev)
	})
}

// ListUsers は全ユーザーを登録順に返す。
func (a *Accounts) ListUsers(ctx context.Context) ([]User, error) {
	users, err := a.stores.Voters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
	}
	return users, nil
}

// validateSignup は登録入力を検証し、前後の空白除去とロールの既定値設定を行う。
func validateSignup(in *SignupInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Address = strings.TrimSpace(in.Address)
	in.AadharCardNumber = strings.TrimSpace(in.AadharCardNumber)

	switch {
	case in.Name == "":
		return invalidInput("name is required")
	case in.Age <= 0:
		return invalidInput("age must be positive")
	case in.Address == "":
		return invalidInput("address is required")
	case in.AadharCardNumber == "":
		return invalidInput("aadharCardNumber is required")
	case in.Password == "":
		return invalidInput("password is required")
	}

	if in.Role == "" {
		in.Role = auth.RoleVoter
	}
	if !in.Role.Valid() {
		return invalidInput("role must be voter or admin")
	}
	return nil
}
