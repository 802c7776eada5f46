package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 是未配置 Redis 时使用的进程内实现，重启后失效
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ TokenBlocklist = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	// 顺带清理已过期的条目
	for k, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, k)
		}
	}
	m.entries[GenerateRevokedTokenKey(tokenID)] = now.Add(ttl)
	return nil
}

func (m *MemoryCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[GenerateRevokedTokenKey(tokenID)]
	return ok && exp.After(m.now()), nil
}
