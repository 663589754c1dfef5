package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestRedisRevocationList はVOTING_TEST_REDIS_URLが設定されている場合のみ実行する。
func TestRedisRevocationList(t *testing.T) {
	url := os.Getenv("VOTING_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VOTING_TEST_REDIS_URL が未設定のためスキップ")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	if err != nil {
		t.Fatalf("Redisへの接続に失敗: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	list := NewRedisRevocationList(client)

	t.Run("失効させたトークンIDが失効済みと判定されること", func(t *testing.T) {
		tokenID := uuid.New().String()
		if err := list.Revoke(ctx, tokenID, time.Minute); err != nil {
			t.Fatalf("失効に失敗: %v", err)
		}
		revoked, err := list.IsRevoked(ctx, tokenID)
		if err != nil || !revoked {
			t.Errorf("失効済みと判定されるべき: revoked=%v err=%v", revoked, err)
		}
	})

	t.Run("未登録のトークンIDは失効済みでないこと", func(t *testing.T) {
		revoked, err := list.IsRevoked(ctx, uuid.New().String())
		if err != nil || revoked {
			t.Errorf("失効済みと判定されてはいけない: revoked=%v err=%v", revoked, err)
		}
	})

	t.Run("有効期間が残っていないトークンは登録しないこと", func(t *testing.T) {
		tokenID := uuid.New().String()
		if err := list.Revoke(ctx, tokenID, 0); err != nil {
			t.Fatalf("失効に失敗: %v", err)
		}
		revoked, err := list.IsRevoked(ctx, tokenID)
		if err != nil || revoked {
			t.Errorf("期限切れのトークンは登録されないべき: revoked=%v err=%v", revoked, err)
		}
	})
}

func TestNewRedisClientInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisClient(context.Background(), "not a url"); err == nil {
		t.Error("不正なURLはエラーになるべき")
	}
}
