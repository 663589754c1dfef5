package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/ballot/internal/auth"
)

// ErrorInternal は内部エラー時にクライアントへ返すエラー種別。
const ErrorInternal = "internal_error"

// Authenticator はHTTPリクエストから身元を確立する。*auth.Gate が実装する。
type Authenticator interface {
	Authenticate(r *http.Request) (auth.Identity, error)
}

// FailureHook は認証・認可の失敗をエラー種別とともに通知する関数。メトリクス収集に使用する。
type FailureHook func(kind string)

// JWTAuth はBearerトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、リクエストのコンテキストに身元を設定する。
func JWTAuth(authn Authenticator, onFailure FailureHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authn.Authenticate(c.Request)
		if err != nil {
			abortWithAuthError(c, err, onFailure)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// GetIdentity はGinコンテキストから身元を取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	return auth.IdentityFrom(c.Request.Context())
}

// abortWithAuthError は認証・認可エラーを種別に応じたステータスコードで返す。
// 種別を持たないエラーはストレージ等の障害として500を返す。
func abortWithAuthError(c *gin.Context, err error, onFailure FailureHook) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		slog.ErrorContext(c.Request.Context(), "認証処理に失敗",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrorInternal})
		return
	}

	if onFailure != nil {
		onFailure(string(authErr.Kind))
	}

	status := http.StatusUnauthorized
	if authErr.Kind == auth.KindForbidden {
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, gin.H{"error": string(authErr.Kind)})
}
