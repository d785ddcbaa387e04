package database

import (
	"context"
	"errors"
	"fmt"

	"teacreek/models"

	"gorm.io/gorm"
)

// CreateComment 新增评论
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("insert comment failed: %w", err)
	}
	return nil
}

// GetCommentByID 查询单条评论，查不到返回 nil, nil
func (s *Store) GetCommentByID(ctx context.Context, cid int64) (*models.Comment, error) {
	comment := new(models.Comment)
	err := s.db.WithContext(ctx).Where("id = ?", cid).First(comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query comment by id failed: %w", err)
	}
	return comment, nil
}

// ListComments 查询帖子下的全部评论，最新的在前
func (s *Store) ListComments(ctx context.Context, pid int64) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	err := s.db.WithContext(ctx).
		Where("post_id = ?", pid).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("query comments of post %d failed: %w", pid, err)
	}
	return comments, nil
}

// DeleteComment 删除评论，返回删除的行数
func (s *Store) DeleteComment(ctx context.Context, cid int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", cid).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete comment failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
