package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit 按客户端 IP 与路由限制请求频率，计数保存在 Redis 中。
// Redis 不可用时放行请求，只记录日志。
func RateLimit(client *redis.Client, limit int, window time.Duration, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			if log != nil {
				log.Warn("rate limit check failed", "error", err, "key", key)
			}
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				// 没有过期时间的计数会永久封禁该 IP，删除后放行本次请求。
				if log != nil {
					log.Warn("rate limit expiry failed", "error", err, "key", key)
				}
				client.Del(ctx, key)
				c.Next()
				return
			}
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
