// Package config は環境変数からサーバー設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/nao1215/ballot/internal/store"
)

// defaultSQLitePath はDATABASE_DSN未指定時のSQLiteファイルのパス。
const defaultSQLitePath = "/data/voting.db"

// minSecretLength はJWT署名鍵の最小バイト数。
const minSecretLength = 16

// Config はサーバー設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// JWTSecret はIDトークンの署名鍵。必須。
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	// TokenTTL はIDトークンの有効期間。
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"3000s"`
	// TokenIssuer はIDトークンの発行者。
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"voting-backend"`
	// DatabaseDriver はデータベースドライバ（sqlite または postgres）。
	DatabaseDriver store.Driver `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	// DatabaseDSN はデータベースの接続文字列。
	DatabaseDSN string `env:"DATABASE_DSN"`
	// StorageTimeout はストア呼び出し1回あたりの制限時間。
	StorageTimeout time.Duration `env:"STORAGE_TIMEOUT" envDefault:"5s"`
	// RedisURL はトークン失効リストに使用するRedisのURL。空の場合は失効を無効にする。
	RedisURL string `env:"REDIS_URL"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Load はプロセスの環境変数から設定を読み込む。
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom は与えられた環境変数のマップから設定を読み込む。
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET は%dバイト以上必要です", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL は正の値である必要があります")
	}
	if c.StorageTimeout <= 0 {
		return errors.New("STORAGE_TIMEOUT は正の値である必要があります")
	}

	switch c.DatabaseDriver {
	case store.DriverSQLite:
		if c.DatabaseDSN == "" {
			c.DatabaseDSN = store.SQLiteDSN(defaultSQLitePath)
		}
	case store.DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DRIVER=postgres の場合は DATABASE_DSN が必要です")
		}
	default:
		return fmt.Errorf("未対応のDATABASE_DRIVER: %q", c.DatabaseDriver)
	}
	return nil
}
