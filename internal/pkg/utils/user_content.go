package utils

import (
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

// gin 上下文中认证信息的键
const (
	ContextIdentityKey = "identity"
	ContextTokenIDKey  = "tokenID"
	ContextTokenExpKey = "tokenExpiresAt"
)

// SetIdentity 由认证中间件调用
func SetIdentity(c *gin.Context, id authz.Identity, tokenID string, expiresAt time.Time) {
	c.Set(ContextIdentityKey, id)
	c.Set("userID", id.UserID)
	c.Set(ContextTokenIDKey, tokenID)
	c.Set(ContextTokenExpKey, expiresAt)
}

// GetIdentityFromContext 从 Gin 上下文中获取调用方身份
// 如果获取失败，会中止请求并返回 401
func GetIdentityFromContext(c *gin.Context) (authz.Identity, bool) {
	v, exists := c.Get(ContextIdentityKey)
	if !exists {
		xerr.AbortWithErr(c, xerr.ErrUnauthorized)
		return authz.Identity{}, false
	}
	id, ok := v.(authz.Identity)
	if !ok {
		xerr.AbortWithErr(c, xerr.ErrUnauthorized)
		return authz.Identity{}, false
	}
	return id, true
}

// GetUserIDFromContext 从 Gin 上下文中获取并验证用户ID
func GetUserIDFromContext(c *gin.Context) (uint64, bool) {
	id, ok := GetIdentityFromContext(c)
	if !ok {
		return 0, false
	}
	return id.UserID, true
}

// GetTokenFromContext 返回当前请求 Token 的 ID 与过期时间
func GetTokenFromContext(c *gin.Context) (string, time.Time) {
	tokenID := c.GetString(ContextTokenIDKey)
	expiresAt := c.GetTime(ContextTokenExpKey)
	return tokenID, expiresAt
}
