package controller

import (
	"teacreek/models"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// SubmitHandler 发布帖子
// @Summary 发布帖子
// @Description "村务公开" 等受限分类只有管理员可以发布
// @Tags 帖子相关
// @Accept application/json
// @Produce application/json
// @Param Authorization header string true "Bearer 用户令牌"
// @Param object body models.ParamSubmit true "帖子内容"
// @Success 200 {object} object{success=bool,postId=int}
// @Failure 400 {object} ErrorBody
// @Failure 401 {object} ErrorBody
// @Failure 403 {object} ErrorBody
// @Router /submit [post]
// @Security ApiKeyAuth
func (h *Handler) SubmitHandler(c *gin.Context) {
	id, err := getCurrentIdentity(c)
	if err != nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return
	}

	p := new(models.ParamSubmit)
	if err = c.ShouldBindJSON(p); err != nil {
		bindFailed(c, err)
		return
	}

	pid, err := h.svc.Submit(c.Request.Context(), id, p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"postId": pid})
}

// FeedHandler 帖子列表
// @Summary 帖子列表
// @Description 置顶分类的帖子排在最前，其余按发布时间倒序；size 为空时返回全部
// @Tags 帖子相关
// @Produce application/json
// @Param tag query string false "分类，空或 全部 表示不过滤"
// @Param search query string false "在标题、内容、作者名中搜索"
// @Param user_id query int false "只看某个用户的帖子"
// @Param page query int false "页码，从 1 开始"
// @Param size query int false "每页数量，最大 100"
// @Success 200 {array} models.Post
// @Failure 400 {object} ErrorBody
// @Router /feed [get]
func (h *Handler) FeedHandler(c *gin.Context) {
	p := new(models.ParamFeed)
	if err := c.ShouldBindQuery(p); err != nil {
		bindFailed(c, err)
		return
	}

	posts, err := h.svc.Feed(c.Request.Context(), p)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseData(c, posts)
}

// PostDetailHandler 帖子详情，每次访问浏览数 +1
// @Summary 帖子详情
// @Tags 帖子相关
// @Produce application/json
// @Param id path int true "帖子ID"
// @Success 200 {object} models.ApiPostDetail
// @Failure 400 {object} ErrorBody
// @Failure 404 {object} ErrorBody
// @Router /post/{id} [get]
func (h *Handler) PostDetailHandler(c *gin.Context) {
	pid, err := paramID(c, "id")
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	detail, err := h.svc.PostDetail(c.Request.Context(), pid)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseData(c, detail)
}

// LikeHandler 点赞或取消点赞
// @Summary 点赞
// @Description isLiked=true 点赞数 +1，false 点赞数 -1（最低为 0）；不记录点赞人
// @Tags 帖子相关
// @Accept application/json
// @Produce application/json
// @Param id path int true "帖子ID"
// @Param object body models.ParamLike true "点赞参数"
// @Success 200 {object} object{success=bool,likes=int}
// @Failure 400 {object} ErrorBody
// @Failure 404 {object} ErrorBody
// @Router /post/{id}/like [post]
func (h *Handler) LikeHandler(c *gin.Context) {
	pid, err := paramID(c, "id")
	if err != nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	p := new(models.ParamLike)
	if err = c.ShouldBindJSON(p); err != nil {
		bindFailed(c, err)
		return
	}

	likes, err := h.svc.Like(c.Request.Context(), pid, *p.IsLiked)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"likes": likes})
}
