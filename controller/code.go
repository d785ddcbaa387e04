package controller

import (
	"errors"
	"net/http"

	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CtxIdentityKey Context 中保存当前调用方身份 (*models.Identity) 的 Key
// 注意:将此常量定义在 controller 包中而非 middlewares 包中,是为了避免循环引用
const CtxIdentityKey = "identity"

// ErrorBody 错误响应结构体 (用于 Swagger 文档生成)
type ErrorBody struct {
	Success bool              `json:"success"`          // 恒为 false
	Code    int               `json:"code"`             // 业务错误码
	Message string            `json:"message"`          // 提示信息
	Errors  map[string]string `json:"errors,omitempty"` // 参数校验失败的字段
}

// SuccessBody 成功响应结构体 (用于 Swagger 文档生成)
type SuccessBody struct {
	Success bool `json:"success"`
}

// ResponseSuccess 返回 {"success": true, ...fields}
func ResponseSuccess(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// ResponseData 直接返回数据本身，列表接口返回裸数组
func ResponseData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// ResponseError 按错误携带的 HTTP 状态码返回错误响应
func ResponseError(c *gin.Context, e *errorx.CodeError) {
	c.AbortWithStatusJSON(e.Status, ErrorBody{
		Success: false,
		Code:    e.Code,
		Message: e.Msg,
	})
}

// ResponseValidationError 返回参数校验失败的详细字段信息
func ResponseValidationError(c *gin.Context, fields map[string]string) {
	e := errorx.ErrInvalidParam
	c.AbortWithStatusJSON(e.Status, ErrorBody{
		Success: false,
		Code:    e.Code,
		Message: e.Msg,
		Errors:  fields,
	})
}

// HandleError 统一处理 Logic 层返回的错误
// 业务错误 (*errorx.CodeError) 直接透传；其他错误记录日志后返回服务繁忙
func HandleError(c *gin.Context, err error) {
	var ce *errorx.CodeError
	if errors.As(err, &ce) {
		ResponseError(c, ce)
		return
	}
	zap.L().Error("unexpected error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	ResponseError(c, errorx.ErrServerBusy)
}
