package controller

import (
	"errors"
	"strconv"

	"teacreek/models"

	"github.com/gin-gonic/gin"
)

var (
	ErrorUserNotLogin = errors.New("用户未登录")
	ErrorInvalidID    = errors.New("无效的ID")
)

// getCurrentIdentity 从 Gin 上下文中获取 JWT 中间件写入的调用方身份
func getCurrentIdentity(c *gin.Context) (*models.Identity, error) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil, ErrorUserNotLogin
	}
	id, ok := v.(*models.Identity)
	if !ok || id == nil {
		return nil, ErrorUserNotLogin
	}
	return id, nil
}

// paramID 读取路径参数中的正整数 ID
func paramID(c *gin.Context, key string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrorInvalidID
	}
	return id, nil
}
