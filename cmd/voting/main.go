// 投票バックエンドのエントリポイント。
// ユーザー登録・候補者管理・投票・集計のHTTP APIを提供する。
// 1人1票の保証はストレージの条件付き更新とトランザクションで実現する。
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/ballot/internal/auth"
	"github.com/nao1215/ballot/internal/config"
	"github.com/nao1215/ballot/internal/metrics"
	"github.com/nao1215/ballot/internal/server"
	"github.com/nao1215/ballot/internal/store"
	"github.com/nao1215/ballot/internal/voting"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("投票サービスの起動に失敗", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, store.WithTimeout(cfg.StorageTimeout))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret),
		auth.WithTTL(cfg.TokenTTL),
		auth.WithIssuer(cfg.TokenIssuer),
	)
	if err != nil {
		return err
	}

	m := metrics.New()
	if err := m.RegisterDB(db.SQL(), "voting"); err != nil {
		return err
	}

	var (
		gateOpts    []auth.GateOption
		accountOpts []voting.AccountsOption
	)
	if cfg.RedisURL != "" {
		client, err := auth.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		revocations := auth.NewRedisRevocationList(client)
		gateOpts = append(gateOpts, auth.WithRevocationList(revocations))
		accountOpts = append(accountOpts, voting.WithRevocations(revocations))
		logger.Info("トークン失効リストを有効にしました")
	}

	stores := db.Stores()
	srv := server.New(cfg.Port, server.Dependencies{
		Gate:           auth.NewGate(tokens, gateOpts...),
		Guard:          auth.NewRoleGuard(db.Users()),
		Coordinator:    voting.NewCoordinator(stores, db),
		Accounts:       voting.NewAccounts(stores, db, tokens, accountOpts...),
		Candidates:     voting.NewCandidates(stores, db),
		Report:         voting.NewReport(stores),
		Events:         stores.Events,
		Metrics:        m,
		Ping:           db.Ping,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	logger.Info("投票サービスを起動します", "port", cfg.Port, "driver", cfg.DatabaseDriver)
	return srv.Run(ctx)
}
