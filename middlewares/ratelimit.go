package middlewares

import (
	"time"

	"teacreek/controller"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// RateLimitMiddleware 创建一个令牌桶限流中间件
// fillInterval: 令牌填充间隔（例如 10ms = 每秒100个令牌）
// capacity: 令牌桶的总容量（允许的突发请求数量）
//
// 工作原理：
// 1. 系统以固定速率往桶里放入令牌（fillInterval 控制速率）
// 2. 每个请求必须获取1个令牌才能通过
// 3. 如果桶空了，请求被拒绝并返回 429 Too Many Requests
func RateLimitMiddleware(fillInterval time.Duration, capacity int64) gin.HandlerFunc {
	bucket := ratelimit.NewBucket(fillInterval, capacity)

	return func(c *gin.Context) {
		// TakeAvailable 非阻塞，返回实际获取到的令牌数
		if bucket.TakeAvailable(1) < 1 {
			controller.ResponseError(c, errorx.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
