package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/ballot/internal/voting"
)

const (
	// defaultEventLimit はイベント一覧の既定の件数。
	defaultEventLimit = 50
	// maxEventLimit はイベント一覧の最大件数。
	maxEventLimit = 500
)

// candidateRequest は候補者の登録・更新リクエストのJSON構造。
type candidateRequest struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Age   int    `json:"age"`
}

func (r candidateRequest) input() voting.CandidateInput {
	return voting.CandidateInput{Name: r.Name, Party: r.Party, Age: r.Age}
}

// handleListCandidates は候補者一覧を処理するハンドラを返す。
func (s *Server) handleListCandidates() gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates, err := s.deps.Candidates.List(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, candidates)
	}
}

// handleCreateCandidate は候補者の登録を処理するハンドラを返す。
func (s *Server) handleCreateCandidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		var req candidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		created, err := s.deps.Candidates.Create(c.Request.Context(), id, req.input())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, created)
	}
}

// handleUpdateCandidate は候補者の更新を処理するハンドラを返す。
func (s *Server) handleUpdateCandidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		var req candidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		updated, err := s.deps.Candidates.Update(c.Request.Context(), id, c.Param("candidateID"), req.input())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// handleDeleteCandidate は候補者の削除を処理するハンドラを返す。
func (s *Server) handleDeleteCandidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		if err := s.deps.Candidates.Delete(c.Request.Context(), id, c.Param("candidateID")); err != nil {
			s.respondError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// handleVote は投票を処理するハンドラを返す。
func (s *Server) handleVote() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		result, err := s.deps.Coordinator.CastVote(c.Request.Context(), id, c.Param("candidateID"))
		if err != nil {
			if kind, ok := voting.KindOf(err); ok {
				s.deps.Metrics.IncrementVotesRejected(string(kind))
			}
			s.respondError(c, err)
			return
		}

		s.deps.Metrics.IncrementVotesCast()
		c.JSON(http.StatusOK, result)
	}
}

// handleTally は集計を処理するハンドラを返す。
func (s *Server) handleTally() gin.HandlerFunc {
	return func(c *gin.Context) {
		tally, err := s.deps.Coordinator.Tally(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, tally)
	}
}

// handleListEvents は監査イベント一覧を処理するハンドラを返す。
// クエリパラメータ limit で件数を指定できる。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultEventLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > maxEventLimit {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error":  string(voting.KindInvalidInput),
					"detail": "limit must be between 1 and 500",
				})
				return
			}
			limit = n
		}

		events, err := s.deps.Events.ListRecent(c.Request.Context(), limit)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, events)
	}
}
