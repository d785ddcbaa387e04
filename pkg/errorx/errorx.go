package errorx

import "net/http"

// CodeError 带业务错误码和 HTTP 状态码的自定义错误
// Logic 层返回它，Controller 层据此决定响应状态
type CodeError struct {
	Code   int    // 业务错误码
	Status int    // HTTP 状态码
	Msg    string // 错误消息
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return e.Msg
}

// New 创建一个新的 CodeError
func New(code, status int, msg string) *CodeError {
	return &CodeError{
		Code:   code,
		Status: status,
		Msg:    msg,
	}
}

// WithMsg 复制一份错误码相同、消息不同的错误
func (e *CodeError) WithMsg(msg string) *CodeError {
	return &CodeError{Code: e.Code, Status: e.Status, Msg: msg}
}

// 业务错误码常量定义
const (
	CodeInvalidParam         = 1001
	CodeInvalidPassword      = 1004
	CodeServerBusy           = 1005
	CodeNeedLogin            = 1006
	CodeInvalidToken         = 1007
	CodeNotFound             = 1008
	CodeForbidden            = 1011
	CodeReservedUsername     = 1012
	CodeRestrictedDepartment = 1013
	CodeRateLimitExceeded    = 1014
	CodeTimeout              = 1015
	CodeTokenReplaced        = 1016
)

// 预定义常用错误实例（Logic 层可直接返回）
var (
	ErrInvalidParam         = New(CodeInvalidParam, http.StatusBadRequest, "请求参数错误")
	ErrInvalidPassword      = New(CodeInvalidPassword, http.StatusUnauthorized, "用户名或密码错误")
	ErrNeedLogin            = New(CodeNeedLogin, http.StatusUnauthorized, "需要登录")
	ErrInvalidToken         = New(CodeInvalidToken, http.StatusForbidden, "无效的Token")
	ErrTokenReplaced        = New(CodeTokenReplaced, http.StatusForbidden, "账号已在其他设备登录")
	ErrForbidden            = New(CodeForbidden, http.StatusForbidden, "权限不足")
	ErrReservedUsername     = New(CodeReservedUsername, http.StatusForbidden, "该用户名为保留账号")
	ErrRestrictedDepartment = New(CodeRestrictedDepartment, http.StatusForbidden, "只有管理员可以发布到该分类")
	ErrNotFound             = New(CodeNotFound, http.StatusNotFound, "资源不存在")
	ErrServerBusy           = New(CodeServerBusy, http.StatusInternalServerError, "服务繁忙")
	ErrRateLimitExceeded    = New(CodeRateLimitExceeded, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
	ErrTimeout              = New(CodeTimeout, http.StatusServiceUnavailable, "请求超时")
)
