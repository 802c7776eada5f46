package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/cache"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验 Bearer Token 并把身份写入上下文，blocklist 为空时不检查注销状态
func AuthMiddleware(cfg *config.Config, blocklist cache.TokenBlocklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从请求头获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.UnauthorizedCode, "Authorization header is required")
			return
		}

		// Token 格式通常是 "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.UnauthorizedCode, "Invalid Authorization header format")
			return
		}

		// 2. 解析和验证 Token
		claims, err := utils.ParseToken(parts[1], &cfg.JWT)
		if err != nil {
			logger.Debug("AuthMiddleware: Invalid token", zap.Error(err))
			xerr.AbortWithErr(c, xerr.ErrTokenInvalid)
			return
		}

		if blocklist != nil {
			revoked, err := blocklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Error("AuthMiddleware: Failed to check token blocklist", zap.String("tokenID", claims.ID), zap.Error(err))
				xerr.AbortWithErr(c, err)
				return
			}
			if revoked {
				xerr.AbortWithErr(c, xerr.ErrTokenInvalid)
				return
			}
		}

		// 3. 将用户信息存储到 Gin Context 中，以便后续 Handler 使用
		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		utils.SetIdentity(c, authz.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Roles:    claims.Roles,
		}, claims.ID, expiresAt)

		c.Next()
	}
}

// AdminOnly 只放行带有 Admin 角色的请求，需挂在 AuthMiddleware 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := utils.GetIdentityFromContext(c)
		if !ok {
			return
		}
		if !id.IsAdmin() {
			logger.Warn("AdminOnly: Access denied", zap.Uint64("userID", id.UserID), zap.String("path", c.FullPath()))
			xerr.AbortWithErr(c, xerr.ErrAdminRequired)
			return
		}
		c.Next()
	}
}
