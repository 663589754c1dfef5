// Package server は投票バックエンドのHTTP APIを提供する。
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/metrics"
	"github.com/nao1215/ballot/internal/voting"
	"github.com/nao1215/ballot/pkg/middleware"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

// Dependencies はサーバーが使用するサービス群。
type Dependencies struct {
	// Gate はBearerトークンから身元を確立する。
	Gate middleware.Authenticator
	// Guard は身元の現在のロールを判定する。
	Guard middleware.Authorizer
	// Coordinator は投票と集計を行う。
	Coordinator *voting.Coordinator
	// Accounts はユーザー登録・ログインを行う。
	Accounts *voting.Accounts
	// Candidates は候補者を管理する。
	Candidates *voting.Candidates
	// Report は管理者向けレポートを生成する。
	Report *voting.Report
	// Events は監査イベントを読み込む。
	Events voting.EventStore
	// Metrics はPrometheusメトリクス。
	Metrics *metrics.Metrics
	// Ping はストレージの疎通を確認する。ヘルスチェックで使用する。
	Ping func(ctx context.Context) error
	// Logger はアプリケーションログの出力先。
	Logger *slog.Logger
	// AllowedOrigins はCORSで許可するオリジン。空の場合はCORSを設定しない。
	AllowedOrigins []string
}

// Server は投票バックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// deps はハンドラが使用するサービス群。
	deps Dependencies
}

// New は新しいサーバーを生成する。
func New(port string, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	router := gin.New()
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(gin.Logger())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
	}
	s.setupRoutes()

	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxが取り消されるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	onFailure := middleware.FailureHook(s.deps.Metrics.IncrementAuthFailures)
	authn := middleware.JWTAuth(s.deps.Gate, onFailure)
	admin := middleware.RequireRole(s.deps.Guard, auth.RoleAdmin, onFailure)

	api := s.router.Group("/api/v1")
	{
		user := api.Group("/user")
		{
			// ユーザー登録
			user.POST("/signup", s.handleSignup())
			// ログイン
			user.POST("/login", s.handleLogin())
			// ログアウト（トークン失効）
			user.POST("/logout", authn, s.handleLogout())
			// プロフィール取得
			user.GET("/profile", authn, s.handleProfile())
			// パスワード変更
			user.PUT("/profile/password", authn, s.handleChangePassword())
			// ユーザー一覧のエクスポート
			user.GET("/export/csv", authn, admin, s.handleExportCSV())
			user.GET("/export/pdf", authn, admin, s.handleExportPDF())
			// 候補者ごとの投票者一覧
			user.GET("/candidates-with-voters", authn, admin, s.handleCandidatesWithVoters())
		}

		candidate := api.Group("/candidate")
		{
			// 候補者一覧
			candidate.GET("", s.handleListCandidates())
			// 候補者の登録・更新・削除
			candidate.POST("", authn, admin, s.handleCreateCandidate())
			candidate.PUT("/:candidateID", authn, admin, s.handleUpdateCandidate())
			candidate.DELETE("/:candidateID", authn, admin, s.handleDeleteCandidate())
			// 投票
			candidate.POST("/vote/:candidateID", authn, s.handleVote())
			// 集計
			candidate.GET("/vote/count", s.handleTally())
		}

		// 監査イベント
		api.GET("/events", authn, admin, s.handleListEvents())
	}

	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())
	// メトリクス
	s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
}

// handleHealth はストレージの疎通を含むヘルスチェックを処理するハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.deps.Ping != nil {
			if err := s.deps.Ping(c.Request.Context()); err != nil {
				s.deps.Logger.ErrorContext(c.Request.Context(), "ヘルスチェックに失敗", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "voting"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "voting"})
	}
}

// identity はJWTAuth適用済みのハンドラで身元を取得する。
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": string(auth.KindMissingCredential)})
	}
	return id, ok
}
