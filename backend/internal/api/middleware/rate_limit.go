package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"course-portal/backend/pkg/response"
)

// RateLimiter 滑动窗口限流器（*redis.Client 实现）
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// 已认证请求按 user_id 计数，否则按客户端 IP；limiter 为 nil 或 Redis 出错时降级放行
func RateLimit(limiter RateLimiter, limit int, window time.Duration, code int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if p, ok := GetPrincipal(c); ok {
			subject = "user:" + p.UserID
		}

		key := fmt.Sprintf("rate_limit:%s:%s:%s", subject, c.FullPath(), c.Param("id"))
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, code, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
