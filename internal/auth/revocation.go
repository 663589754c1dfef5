package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedKeyPrefix は失効済みトークンを格納するRedisキーの接頭辞。
const revokedKeyPrefix = "voting:revoked:jti:"

// RevocationList は失効済みトークンID（jti）の一覧を管理する。
type RevocationList interface {
	// Revoke はトークンIDを失効させる。ttl経過後にエントリは自然消滅する。
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	// IsRevoked はトークンIDが失効済みであればtrueを返す。
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationList はRedisを用いたRevocationListの実装。
// 複数プロセスで失効状態を共有できる。
type RedisRevocationList struct {
	// client はRedisクライアント。
	client *redis.Client
}

// NewRedisRevocationList は新しいRedisRevocationListを生成する。
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// NewRedisClient はURLからRedisクライアントを生成し、疎通を確認する。
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("Redis URLの解析に失敗: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redisへの疎通確認に失敗: %w", err)
	}
	return client, nil
}

// Revoke はトークンIDを失効リストに追加する。
// ttlが0以下の場合はトークンが既に期限切れのため何もしない。
func (l *RedisRevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("トークンの失効登録に失敗: %w", err)
	}
	return nil
}

// IsRevoked はトークンIDが失効リストに存在するか確認する。
func (l *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	err := l.client.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("トークン失効状態の取得に失敗: %w", err)
	}
	return true, nil
}
