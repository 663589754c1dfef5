package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/ballot/internal/voting"
	"github.com/nao1215/ballot/pkg/middleware"
)

// statusByKind はドメインエラー種別とHTTPステータスコードの対応。
var statusByKind = map[voting.Kind]int{
	voting.KindInvalidCandidateID:  http.StatusBadRequest,
	voting.KindCandidateNotFound:   http.StatusNotFound,
	voting.KindVoterNotFound:       http.StatusNotFound,
	voting.KindAdminCannotVote:     http.StatusForbidden,
	voting.KindAlreadyVoted:        http.StatusConflict,
	voting.KindInvalidInput:        http.StatusBadRequest,
	voting.KindInvalidCredentials:  http.StatusUnauthorized,
	voting.KindDuplicateCredential: http.StatusConflict,
	voting.KindAdminExists:         http.StatusConflict,
	voting.KindCandidateHasVotes:   http.StatusConflict,
}

// respondError はエラーを種別に応じたステータスコードとJSONで返す。
// 種別を持たないエラーは内部的な原因をログに出力し、500を返す。
func (s *Server) respondError(c *gin.Context, err error) {
	var domainErr *voting.Error
	if errors.As(err, &domainErr) {
		if status, ok := statusByKind[domainErr.Kind]; ok {
			body := gin.H{"error": string(domainErr.Kind)}
			if domainErr.Detail != "" {
				body["detail"] = domainErr.Detail
			}
			c.AbortWithStatusJSON(status, body)
			return
		}
	}

	s.deps.Logger.ErrorContext(c.Request.Context(), "リクエストの処理に失敗",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": middleware.ErrorInternal})
}

// respondBindError はリクエストボディの解析失敗を400で返す。
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":  string(voting.KindInvalidInput),
		"detail": err.Error(),
	})
}
