package middlewares

import (
	"context"
	"errors"
	"time"

	"teacreek/controller"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// TimeoutMiddleware 给请求的 context 设置截止时间
// 数据库、Redis 调用都会继承这个 context，超时后由下游返回错误
// 处理函数还没有写响应时，统一返回 503
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			controller.ResponseError(c, errorx.ErrTimeout)
		}
	}
}
