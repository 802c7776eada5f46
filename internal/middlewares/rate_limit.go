package middlewares

import (
	"sync"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 3 * time.Minute

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	b       int
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*client),
		r:       r,
		b:       b,
		now:     time.Now,
	}
}

// Allow 取出 ip 对应的令牌，同时清理长时间未出现的 IP
func (i *IPRateLimiter) Allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	for key, c := range i.clients {
		if now.Sub(c.lastSeen) > limiterIdleTTL {
			delete(i.clients, key)
		}
	}

	c, ok := i.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(i.r, i.b)}
		i.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// RateLimit 按每分钟请求数限流，LoginPerMinute 非正时不限流
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.LoginPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.LoginBurst
	if burst <= 0 {
		burst = 1
	}
	limiter := NewIPRateLimiter(rate.Limit(float64(cfg.LoginPerMinute)/60), burst)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			logger.Warn("RateLimit: Too many requests", zap.String("ip", ip), zap.String("path", c.FullPath()))
			xerr.AbortWithErr(c, xerr.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
