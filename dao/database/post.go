package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teacreek/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 查询帖子时顺带计算评论数
const postColumnsWithCommentCount = "posts.*, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

// CreatePost 创建帖子
// DAO层只返回错误，不打印日志，由上层统一处理
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.SearchText = foldSearchText(post.Title, post.Description, post.UserName)
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("insert post failed: %w", err)
	}
	return nil
}

// GetPostByID 根据帖子ID查询帖子，查不到返回 nil, nil
func (s *Store) GetPostByID(ctx context.Context, pid int64) (*models.Post, error) {
	post := new(models.Post)
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumnsWithCommentCount).
		Where("posts.id = ?", pid).
		First(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id failed: %w", err)
	}
	return post, nil
}

// IncrementViews 浏览数 +1，帖子不存在时返回 false
// 单条 UPDATE 语句完成自增，并发请求不会丢失计数
func (s *Store) IncrementViews(ctx context.Context, pid int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", pid).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return false, fmt.Errorf("increment post views failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AddLikes 给点赞数加上 delta（可为负数），点赞数不会被减到 0 以下
// 返回是否有行被更新
func (s *Store) AddLikes(ctx context.Context, pid, delta int64) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", pid)
	if delta < 0 {
		tx = tx.Where("likes >= ?", -delta)
	}
	res := tx.UpdateColumn("likes", gorm.Expr("likes + ?", delta))
	if res.Error != nil {
		return false, fmt.Errorf("update post likes failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListPosts 按条件查询帖子列表
// 置顶分类的帖子排在最前，之后按发布时间倒序；发布时间相同时按 ID 倒序保证顺序稳定
func (s *Store) ListPosts(ctx context.Context, q *models.FeedQuery) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)

	tx := s.db.WithContext(ctx).Model(&models.Post{}).Select(postColumnsWithCommentCount)
	if q.Department != "" {
		tx = tx.Where("posts.department = ?", q.Department)
	}
	if q.UserID > 0 {
		tx = tx.Where("posts.user_id = ?", q.UserID)
	}
	if q.Search != "" {
		// 数据库的 LOWER 只处理 ASCII，两边都在 Go 里折叠大小写
		kw := "%" + escapeLike(foldSearchText(q.Search)) + "%"
		tx = tx.Where("posts.search_text LIKE ? ESCAPE '!'", kw)
	}

	if q.PinnedDepartment != "" {
		tx = tx.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN posts.department = ? THEN 0 ELSE 1 END, posts.created_at DESC, posts.id DESC",
				Vars:               []interface{}{q.PinnedDepartment},
				WithoutParentheses: true,
			},
		})
	} else {
		tx = tx.Order("posts.created_at DESC, posts.id DESC")
	}

	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}

	if err := tx.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("query post list failed: %w", err)
	}
	return posts, nil
}

// DeletePost 删除帖子，返回删除的行数
// 评论不做级联删除
func (s *Store) DeletePost(ctx context.Context, pid int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", pid).Delete(&models.Post{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete post failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountPosts 帖子总数
func (s *Store) CountPosts(ctx context.Context) (count int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count posts failed: %w", err)
	}
	return count, nil
}

// CountPostsSince 发布时间不早于 sinceMilli（毫秒时间戳）的帖子数
func (s *Store) CountPostsSince(ctx context.Context, sinceMilli int64) (count int64, err error) {
	err = s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("created_at >= ?", sinceMilli).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count posts since %d failed: %w", sinceMilli, err)
	}
	return count, nil
}

// CountPostsByDepartment 按分类统计帖子数，数量多的在前
func (s *Store) CountPostsByDepartment(ctx context.Context) ([]*models.DepartmentCount, error) {
	data := make([]*models.DepartmentCount, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("department, COUNT(*) AS count").
		Group("department").
		Order("count DESC, department").
		Scan(&data).Error
	if err != nil {
		return nil, fmt.Errorf("count posts by department failed: %w", err)
	}
	return data, nil
}

// foldSearchText 拼接并小写化搜索字段，字段之间用换行分隔
func foldSearchText(fields ...string) string {
	return strings.ToLower(strings.Join(fields, "\n"))
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike 转义 LIKE 中的通配符，用户输入按字面匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
