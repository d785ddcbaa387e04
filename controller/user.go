package controller

import (
	"teacreek/logic"
	"teacreek/models"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// LoginResponse 登录成功的响应
type LoginResponse struct {
	Success  bool         `json:"success"`
	Token    string       `json:"token"`
	ExpireAt int64        `json:"expire_at"` // 毫秒时间戳
	Created  bool         `json:"created"`   // 是否自动注册了新账号
	User     *models.User `json:"user"`
}

func loginResponse(c *gin.Context, res *logic.LoginResult) {
	ResponseData(c, LoginResponse{
		Success:  true,
		Token:    res.Token,
		ExpireAt: res.ExpireAt.UnixMilli(),
		Created:  res.Created,
		User:     res.User,
	})
}

// LoginHandler 处理用户登录请求
// @Summary 用户登录
// @Description 用户名不存在时自动注册；账号设置过密码时需要提供密码
// @Tags 用户相关
// @Accept application/json
// @Produce application/json
// @Param object body models.ParamLogin true "登录参数"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorBody
// @Failure 401 {object} ErrorBody
// @Failure 403 {object} ErrorBody
// @Router /login [post]
func (h *Handler) LoginHandler(c *gin.Context) {
	p := new(models.ParamLogin)
	if err := c.ShouldBindJSON(p); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	loginResponse(c, res)
}

// AdminLoginHandler 管理员登录
// @Summary 管理员登录
// @Tags 管理后台
// @Accept application/json
// @Produce application/json
// @Param object body models.ParamAdminLogin true "登录参数"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorBody
// @Failure 401 {object} ErrorBody
// @Router /admin/login [post]
func (h *Handler) AdminLoginHandler(c *gin.Context) {
	p := new(models.ParamAdminLogin)
	if err := c.ShouldBindJSON(p); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.svc.AdminLogin(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	loginResponse(c, res)
}

// LogoutHandler 注销当前令牌
// @Summary 退出登录
// @Tags 用户相关
// @Produce application/json
// @Param Authorization header string true "Bearer 用户令牌"
// @Success 200 {object} SuccessBody
// @Failure 401 {object} ErrorBody
// @Router /logout [post]
// @Security ApiKeyAuth
func (h *Handler) LogoutHandler(c *gin.Context) {
	id, err := getCurrentIdentity(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}
	if err = h.svc.Logout(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}

// MeHandler 查询当前登录用户
// @Summary 当前用户信息
// @Tags 用户相关
// @Produce application/json
// @Param Authorization header string true "Bearer 用户令牌"
// @Success 200 {object} object{success=bool,user=models.User}
// @Failure 401 {object} ErrorBody
// @Router /me [get]
// @Security ApiKeyAuth
func (h *Handler) MeHandler(c *gin.Context) {
	id, err := getCurrentIdentity(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}
	user, err := h.svc.CurrentUser(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"user": user})
}
