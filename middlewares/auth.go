package middlewares

import (
	"context"
	"strings"

	"teacreek/controller"
	"teacreek/models"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// Authenticator 校验令牌并返回调用方身份，由 *logic.Service 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// JWTAuthMiddleware 基于JWT的认证中间件
// 缺少 Authorization 头返回 401；格式错误、签名无效、过期返回 403
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 获取 Authorization header
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			controller.ResponseError(c, errorx.ErrNeedLogin)
			return
		}

		// 2. 按空格分割，格式为 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
			controller.ResponseError(c, errorx.ErrInvalidToken.WithMsg("Token格式错误"))
			return
		}

		// 3. 解析 Token，并在启用 Redis 时做单点登录校验
		id, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			controller.HandleError(c, err)
			return
		}

		// 4. 将当前请求的身份信息保存到请求的上下文
		c.Set(controller.CtxIdentityKey, id)
		c.Next()
	}
}

// AdminOnly 只允许管理员访问，必须挂在 JWTAuthMiddleware 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(controller.CtxIdentityKey)
		id, _ := v.(*models.Identity)
		if id == nil {
			controller.ResponseError(c, errorx.ErrNeedLogin)
			return
		}
		if !id.IsAdmin() {
			controller.ResponseError(c, errorx.ErrForbidden)
			return
		}
		c.Next()
	}
}
