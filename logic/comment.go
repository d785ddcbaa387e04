package logic

import (
	"context"
	"strings"

	"teacreek/models"
	"teacreek/pkg/errorx"

	"go.uber.org/zap"
)

// AddComment 发表评论，返回评论 ID
func (s *Service) AddComment(ctx context.Context, id *models.Identity, pid int64, content string) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, errorx.ErrInvalidParam.WithMsg("评论内容不能为空")
	}

	post, err := s.store.GetPostByID(ctx, pid)
	if err != nil {
		zap.L().Error("store.GetPostByID failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}
	if post == nil {
		return 0, errorx.ErrNotFound.WithMsg("帖子不存在")
	}

	author, err := s.store.GetUserByID(ctx, id.UserID)
	if err != nil {
		zap.L().Error("store.GetUserByID failed",
			zap.Int64("user_id", id.UserID),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}
	if author == nil {
		return 0, errorx.ErrNeedLogin
	}

	comment := &models.Comment{
		PostID:     pid,
		UserID:     author.ID,
		UserName:   author.Username,
		UserAvatar: author.Avatar,
		Content:    content,
	}
	if err = s.store.CreateComment(ctx, comment); err != nil {
		zap.L().Error("store.CreateComment failed",
			zap.Int64("post_id", pid),
			zap.Int64("user_id", author.ID),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}

	s.metrics.CommentsCreated.Inc()
	return comment.ID, nil
}

// ListComments 查询帖子的评论，最新的在前；帖子不存在时返回空列表
func (s *Service) ListComments(ctx context.Context, pid int64) ([]*models.Comment, error) {
	comments, err := s.store.ListComments(ctx, pid)
	if err != nil {
		zap.L().Error("store.ListComments failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return comments, nil
}

// DeleteComment 删除评论，只有评论作者或管理员可以删除
func (s *Service) DeleteComment(ctx context.Context, id *models.Identity, cid int64) error {
	comment, err := s.store.GetCommentByID(ctx, cid)
	if err != nil {
		zap.L().Error("store.GetCommentByID failed",
			zap.Int64("comment_id", cid),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	if comment == nil {
		return errorx.ErrNotFound.WithMsg("评论不存在")
	}
	if comment.UserID != id.UserID && !id.IsAdmin() {
		return errorx.ErrForbidden
	}

	if _, err = s.store.DeleteComment(ctx, cid); err != nil {
		zap.L().Error("store.DeleteComment failed",
			zap.Int64("comment_id", cid),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}
