package cache

import (
	"context"
	"fmt"
	"time"
)

// TokenBlocklist 记录已注销的 Token，直到其自然过期
type TokenBlocklist interface {
	// Revoke 使 tokenID 在 ttl 内失效，ttl 非正时直接忽略
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func GenerateRevokedTokenKey(tokenID string) string {
	return fmt.Sprintf("auth:token:revoked:%s", tokenID)
}
