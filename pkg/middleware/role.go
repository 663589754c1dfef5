package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/ballot/internal/auth"
)

// Authorizer は身元が要求ロールを満たすか判定する。*auth.RoleGuard が実装する。
type Authorizer interface {
	Authorize(ctx context.Context, identity auth.Identity, required auth.Role) error
}

// RequireRole は身元の現在のロールが required であることを要求するGinミドルウェアを返す。
// JWTAuthの後に適用する。
func RequireRole(authz Authorizer, required auth.Role, onFailure FailureHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			abortWithAuthError(c, auth.ErrMissingCredential, onFailure)
			return
		}

		if err := authz.Authorize(c.Request.Context(), identity, required); err != nil {
			abortWithAuthError(c, err, onFailure)
			return
		}
		c.Next()
	}
}
