package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// memoryRevocations はテスト用のインメモリ失効リスト。
type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[string]time.Duration)}
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// newRequest はAuthorizationヘッダー付きのテスト用リクエストを生成する。
func newRequest(authorization string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authorization != "" {
		req.Header.Set(HeaderAuthorization, authorization)
	}
	return req
}

// TestGate_Authenticate はGate.Authenticateを検証する。
func TestGate_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("有効なBearerトークンで身元が返ること", func(t *testing.T) {
		t.Parallel()

		tokens := newTestTokenService(t, baseTime)
		token, err := tokens.Issue("user-ok")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		identity, err := NewGate(tokens).Authenticate(newRequest("Bearer " + token))
		if err != nil {
			t.Fatalf("Authenticate()でエラーが発生: %v", err)
		}
		if identity.SubjectID != "user-ok" {
			t.Errorf("SubjectID = %q, want %q", identity.SubjectID, "user-ok")
		}
	})

	t.Run("スキーム名は大文字小文字を区別しないこと", func(t *testing.T) {
		t.Parallel()

		tokens := newTestTokenService(t, baseTime)
		token, _ := tokens.Issue("user-case")

		if _, err := NewGate(tokens).Authenticate(newRequest("bearer " + token)); err != nil {
			t.Errorf("Authenticate()でエラーが発生: %v", err)
		}
	})

	t.Run("ヘッダーが無い場合はMissingCredentialになること", func(t *testing.T) {
		t.Parallel()

		gate := NewGate(newTestTokenService(t, baseTime))
		for _, header := range []string{"", "   "} {
			req := newRequest("")
			if header != "" {
				req.Header.Set(HeaderAuthorization, header)
			}
			if _, err := gate.Authenticate(req); !errors.Is(err, ErrMissingCredential) {
				t.Errorf("header=%q: err = %v, want %v", header, err, ErrMissingCredential)
			}
		}
	})

	t.Run("2要素形式でない場合はMalformedCredentialになること", func(t *testing.T) {
		t.Parallel()

		tokens := newTestTokenService(t, baseTime)
		token, _ := tokens.Issue("user-malformed")
		gate := NewGate(tokens)

		// スキーム無し、トークン無し、異なるスキーム、3要素
		for _, header := range []string{
			token,
			"Bearer",
			"Basic " + token,
			"Bearer " + token + " tail",
		} {
			if _, err := gate.Authenticate(newRequest(header)); !errors.Is(err, ErrMalformedCredential) {
				t.Errorf("header=%q: err = %v, want %v", header, err, ErrMalformedCredential)
			}
		}
	})

	t.Run("検証に失敗したトークンはInvalidTokenになること", func(t *testing.T) {
		t.Parallel()

		gate := NewGate(newTestTokenService(t, baseTime))
		if _, err := gate.Authenticate(newRequest("Bearer invalid-token-string")); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("期限切れトークンはInvalidTokenになること", func(t *testing.T) {
		t.Parallel()

		token, _ := newTestTokenService(t, baseTime).Issue("user-expired")
		gate := NewGate(newTestTokenService(t, baseTime.Add(DefaultTokenTTL+time.Minute)))

		if _, err := gate.Authenticate(newRequest("Bearer " + token)); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("失効済みトークンはInvalidTokenになること", func(t *testing.T) {
		t.Parallel()

		tokens := newTestTokenService(t, baseTime)
		token, _ := tokens.Issue("user-revoked")
		identity, err := tokens.Verify(token)
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}

		revocations := newMemoryRevocations()
		gate := NewGate(tokens, WithRevocationList(revocations))

		if _, err := gate.Authenticate(newRequest("Bearer " + token)); err != nil {
			t.Fatalf("失効前のAuthenticate()でエラーが発生: %v", err)
		}

		if err := revocations.Revoke(t.Context(), identity.TokenID, time.Hour); err != nil {
			t.Fatalf("Revoke()でエラーが発生: %v", err)
		}
		if _, err := gate.Authenticate(newRequest("Bearer " + token)); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("失効リストの照合に失敗した場合は種別なしのエラーになること", func(t *testing.T) {
		t.Parallel()

		tokens := newTestTokenService(t, baseTime)
		token, _ := tokens.Issue("user-backend")

		revocations := newMemoryRevocations()
		revocations.err = errors.New("connection refused")
		gate := NewGate(tokens, WithRevocationList(revocations))

		_, err := gate.Authenticate(newRequest("Bearer " + token))
		if err == nil {
			t.Fatal("エラーが返るべき")
		}
		var authErr *Error
		if errors.As(err, &authErr) {
			t.Errorf("ストレージ障害が認証エラー %q として扱われた", authErr.Kind)
		}
	})
}

// TestIdentityContext はWithIdentityとIdentityFromを検証する。
func TestIdentityContext(t *testing.T) {
	t.Parallel()

	t.Run("設定した身元が取得できること", func(t *testing.T) {
		t.Parallel()

		want := Identity{SubjectID: "user-ctx", TokenID: "jti-1"}
		got, ok := IdentityFrom(WithIdentity(t.Context(), want))
		if !ok {
			t.Fatal("IdentityFrom()がfalseを返した")
		}
		if got != want {
			t.Errorf("IdentityFrom() = %+v, want %+v", got, want)
		}
	})

	t.Run("未設定のコンテキストではfalseが返ること", func(t *testing.T) {
		t.Parallel()

		if _, ok := IdentityFrom(t.Context()); ok {
			t.Error("IdentityFrom()がtrueを返した")
		}
	})

	t.Run("主体IDが空の身元は未認証として扱うこと", func(t *testing.T) {
		t.Parallel()

		if _, ok := IdentityFrom(WithIdentity(t.Context(), Identity{})); ok {
			t.Error("IdentityFrom()がtrueを返した")
		}
	})
}
