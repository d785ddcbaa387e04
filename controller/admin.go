package controller

import (
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// StatsHandler 管理后台统计
// @Summary 统计数据
// @Description 帖子总数、今日发帖数（服务器本地时间）、各分类帖子数
// @Tags 管理后台
// @Produce application/json
// @Param Authorization header string true "Bearer 管理员令牌"
// @Success 200 {object} object{success=bool,total=int,today=int,categories=[]models.DepartmentCount}
// @Failure 401 {object} ErrorBody
// @Failure 403 {object} ErrorBody
// @Router /admin/stats [get]
// @Security ApiKeyAuth
func (h *Handler) StatsHandler(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{
		"total":      stats.Total,
		"today":      stats.Today,
		"categories": stats.Categories,
	})
}

// AdminListHandler 全部帖子，按发布时间倒序
// @Summary 帖子管理列表
// @Tags 管理后台
// @Produce application/json
// @Param Authorization header string true "Bearer 管理员令牌"
// @Success 200 {array} models.Post
// @Failure 401 {object} ErrorBody
// @Failure 403 {object} ErrorBody
// @Router /admin/list [get]
// @Security ApiKeyAuth
func (h *Handler) AdminListHandler(c *gin.Context) {
	posts, err := h.svc.AdminListPosts(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseData(c, posts)
}

// AdminDeletePostHandler 删除帖子，评论保留
// @Summary 删除帖子
// @Tags 管理后台
// @Produce application/json
// @Param Authorization header string true "Bearer 管理员令牌"
// @Param id path int true "帖子ID"
// @Success 200 {object} object{success=bool,deleted=int}
// @Failure 401 {object} ErrorBody
// @Failure 403 {object} ErrorBody
// @Failure 404 {object} ErrorBody
// @Router /admin/post/{id} [delete]
// @Security ApiKeyAuth
func (h *Handler) AdminDeletePostHandler(c *gin.Context) {
	id, err := getCurrentIdentity(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}
	pid, err := paramID(c, "id")
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	deleted, err := h.svc.DeletePost(c.Request.Context(), id, pid)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"deleted": deleted})
}
