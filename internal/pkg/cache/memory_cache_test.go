package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCache()
	m.now = func() time.Time { return now }

	if err := m.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := m.IsRevoked(ctx, "jti-1"); !ok {
		t.Fatalf("注销后应处于失效状态")
	}
	if ok, _ := m.IsRevoked(ctx, "jti-2"); ok {
		t.Fatalf("未注销的 token 不应失效")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := m.IsRevoked(ctx, "jti-1"); ok {
		t.Fatalf("超过 ttl 后记录应过期")
	}

	if err := m.Revoke(ctx, "jti-3", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := m.IsRevoked(ctx, "jti-3"); ok {
		t.Fatalf("ttl 非正时不应记录")
	}
}
