package controller

import (
	"teacreek/models"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// AddCommentHandler 在帖子下发表评论
// @Summary 发表评论
// @Tags 评论相关
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer 用户令牌"
// @Param id path int true "帖子ID"
// @Param object body models.ParamComment true "评论内容"
// @Success 200 {object} object{success=bool,commentId=int}
// @Failure 400 {object} ErrorBody
// @Failure 401 {object} ErrorBody
// @Failure 404 {object} ErrorBody
// @Router /post/{id}/comment [post]
// @Security ApiKeyAuth
func (h *Handler) AddCommentHandler(c *gin.Context) {
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

	p := new(models.ParamComment)
	if err = c.ShouldBindJSON(p); err != nil {
		bindFailed(c, err)
		return
	}
	h.addComment(c, id, pid, p.Content)
}

// CreateCommentHandler 发表评论，帖子 ID 放在请求体中
// @Summary 发表评论(请求体携带帖子ID)
// @Tags 评论相关
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer 用户令牌"
// @Param object body models.ParamCommentWithPost true "评论参数"
// @Success 200 {object} object{success=bool,commentId=int}
// @Failure 400 {object} ErrorBody
// @Failure 401 {object} ErrorBody
// @Failure 404 {object} ErrorBody
// @Router /comments [post]
// @Security ApiKeyAuth
func (h *Handler) CreateCommentHandler(c *gin.Context) {
	id, err := getCurrentIdentity(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	p := new(models.ParamCommentWithPost)
	if err = c.ShouldBindJSON(p); err != nil {
		bindFailed(c, err)
		return
	}
	h.addComment(c, id, p.PostID, p.Content)
}

func (h *Handler) addComment(c *gin.Context, id *models.Identity, pid int64, content string) {
	cid, err := h.svc.AddComment(c.Request.Context(), id, pid, content)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"commentId": cid})
}

// ListCommentsHandler 帖子的全部评论，最新的在前
// @Summary 评论列表
// @Tags 评论相关
// @Produce application/json
// @Param postId path int true "帖子ID"
// @Success 200 {array} models.Comment
// @Failure 400 {object} ErrorBody
// @Router /comments/{postId} [get]
func (h *Handler) ListCommentsHandler(c *gin.Context) {
	pid, err := paramID(c, "postId")
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	comments, err := h.svc.ListComments(c.Request.Context(), pid)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseData(c, comments)
}

// DeleteCommentHandler 删除评论，评论作者或管理员可操作
// @Summary 删除评论
// @Tags 评论相关
// @Produce application/json
// @Param Authorization header string true "Bearer 用户令牌"
// @Param id path int true "评论ID"
// @Success 200 {object} SuccessBody
// @Failure 401 {object} ErrorBody
// @Failure 403 {object} ErrorBody
// @Failure 404 {object} ErrorBody
// @Router /comments/{id} [delete]
// @Security ApiKeyAuth
func (h *Handler) DeleteCommentHandler(c *gin.Context) {
	id, err := getCurrentIdentity(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}
	cid, err := paramID(c, "id")
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	if err = h.svc.DeleteComment(c.Request.Context(), id, cid); err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, nil)
}
