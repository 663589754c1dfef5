package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/export"
	"github.com/nao1215/ballot/internal/voting"
)

// signupRequest はユーザー登録リクエストのJSON構造。
type signupRequest struct {
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Email            string `json:"email"`
	Mobile           string `json:"mobile"`
	Address          string `json:"address"`
	AadharCardNumber string `json:"aadharCardNumber"`
	Password         string `json:"password"`
	// Role は省略時に投票者となる。
	Role string `json:"role"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	AadharCardNumber string `json:"aadharCardNumber" binding:"required"`
	Password         string `json:"password" binding:"required"`
}

// changePasswordRequest はパスワード変更リクエストのJSON構造。
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// handleSignup はユーザー登録を処理するハンドラを返す。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		user, token, err := s.deps.Accounts.Signup(c.Request.Context(), voting.SignupInput{
			Name:             req.Name,
			Age:              req.Age,
			Email:            req.Email,
			Mobile:           req.Mobile,
			Address:          req.Address,
			AadharCardNumber: req.AadharCardNumber,
			Password:         req.Password,
			Role:             auth.Role(req.Role),
		})
		if err != nil {
			s.respondError(c, err)
			return
		}

		s.deps.Metrics.IncrementUsersCreated()
		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

// handleLogin はログインを処理するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		token, err := s.deps.Accounts.Login(c.Request.Context(), req.AadharCardNumber, req.Password)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		if err := s.deps.Accounts.Logout(c.Request.Context(), id); err != nil {
			s.respondError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// handleProfile はプロフィール取得を処理するハンドラを返す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		user, err := s.deps.Accounts.Profile(c.Request.Context(), id)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// handleChangePassword はパスワード変更を処理するハンドラを返す。
func (s *Server) handleChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		if err := s.deps.Accounts.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
			s.respondError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// handleExportCSV はユーザー一覧のCSVエクスポートを処理するハンドラを返す。
func (s *Server) handleExportCSV() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.deps.Accounts.ListUsers(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteUsersCSV(&buf, users); err != nil {
			s.respondError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=users.csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

// handleExportPDF はユーザー一覧のPDFエクスポートを処理するハンドラを返す。
func (s *Server) handleExportPDF() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.deps.Accounts.ListUsers(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteUsersPDF(&buf, users); err != nil {
			s.respondError(c, err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=users.pdf")
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}

// handleCandidatesWithVoters は候補者ごとの投票者一覧を処理するハンドラを返す。
func (s *Server) handleCandidatesWithVoters() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := s.deps.Report.CandidatesWithVoters(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
