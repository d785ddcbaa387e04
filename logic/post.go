package logic

import (
	"context"
	"slices"
	"strings"
	"time"

	"teacreek/models"
	"teacreek/pkg/errorx"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Submit 发布帖子
// 受限分类（默认 "村务公开"）只有管理员可以发布；作者名和头像取发帖时的快照
func (s *Service) Submit(ctx context.Context, id *models.Identity, p *models.ParamSubmit) (int64, error) {
	department := strings.TrimSpace(p.Department)
	if slices.Contains(s.forum.RestrictedDepartments, department) && !id.IsAdmin() {
		return 0, errorx.ErrRestrictedDepartment
	}

	author, err := s.store.GetUserByID(ctx, id.UserID)
	if err != nil {
		zap.L().Error("store.GetUserByID failed",
			zap.Int64("user_id", id.UserID),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}
	if author == nil {
		// 令牌有效但账号已不存在
		return 0, errorx.ErrNeedLogin
	}

	images := p.Images
	if images == nil {
		images = []string{}
	}
	post := &models.Post{
		UserID:      author.ID,
		UserName:    author.Username,
		UserAvatar:  author.Avatar,
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Department:  department,
		Images:      images,
	}
	if err = s.store.CreatePost(ctx, post); err != nil {
		zap.L().Error("store.CreatePost failed",
			zap.Int64("user_id", author.ID),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}

	s.metrics.PostsCreated.WithLabelValues(department).Inc()
	return post.ID, nil
}

// Feed 查询帖子列表
func (s *Service) Feed(ctx context.Context, p *models.ParamFeed) ([]*models.Post, error) {
	q := &models.FeedQuery{
		Search: strings.TrimSpace(p.Search),
		UserID: p.UserID,
	}
	if tag := strings.TrimSpace(p.Tag); tag != "" && tag != models.TagAll {
		q.Department = tag
	}
	if s.forum.PinEnabled {
		q.PinnedDepartment = s.forum.PinnedDepartment
	}
	if p.Size > 0 {
		page := max(p.Page, 1)
		q.Offset = (page - 1) * p.Size
		q.Limit = p.Size
	}

	posts, err := s.store.ListPosts(ctx, q)
	if err != nil {
		zap.L().Error("store.ListPosts failed",
			zap.Any("query", q),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return posts, nil
}

// PostDetail 查询帖子详情，浏览数 +1
func (s *Service) PostDetail(ctx context.Context, pid int64) (*models.ApiPostDetail, error) {
	ok, err := s.store.IncrementViews(ctx, pid)
	if err != nil {
		zap.L().Error("store.IncrementViews failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.ErrNotFound.WithMsg("帖子不存在")
	}

	post, err := s.store.GetPostByID(ctx, pid)
	if err != nil {
		zap.L().Error("store.GetPostByID failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if post == nil {
		// 两次查询之间被管理员删除
		return nil, errorx.ErrNotFound.WithMsg("帖子不存在")
	}

	comments, err := s.store.ListComments(ctx, pid)
	if err != nil {
		zap.L().Error("store.ListComments failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	post.CommentsCount = int64(len(comments))

	return &models.ApiPostDetail{Post: post, Comments: comments}, nil
}

// Like 点赞 (liked=true) 或取消点赞，返回最新的点赞数
// 不记录谁点过赞，同一用户可以重复点赞；点赞数最低为 0
func (s *Service) Like(ctx context.Context, pid int64, liked bool) (int64, error) {
	delta, direction := int64(1), "up"
	if !liked {
		delta, direction = -1, "down"
	}

	if _, err := s.store.AddLikes(ctx, pid, delta); err != nil {
		zap.L().Error("store.AddLikes failed",
			zap.Int64("post_id", pid),
			zap.Int64("delta", delta),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}

	// 取消点赞时点赞数已为 0 不会有行被更新，因此这里再查一次确认帖子存在
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

	s.metrics.LikesTotal.WithLabelValues(direction).Inc()
	return post.Likes, nil
}

// AdminListPosts 管理后台查看全部帖子，按发布时间倒序，不置顶
func (s *Service) AdminListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.store.ListPosts(ctx, &models.FeedQuery{})
	if err != nil {
		zap.L().Error("store.ListPosts failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return posts, nil
}

// DeletePost 管理员删除帖子，评论保留，返回删除的行数
func (s *Service) DeletePost(ctx context.Context, id *models.Identity, pid int64) (int64, error) {
	if !id.IsAdmin() {
		return 0, errorx.ErrForbidden
	}
	n, err := s.store.DeletePost(ctx, pid)
	if err != nil {
		zap.L().Error("store.DeletePost failed",
			zap.Int64("post_id", pid),
			zap.Error(err))
		return 0, errorx.ErrServerBusy
	}
	if n == 0 {
		return 0, errorx.ErrNotFound.WithMsg("帖子不存在")
	}
	zap.L().Info("post deleted by admin",
		zap.Int64("post_id", pid),
		zap.Int64("admin_id", id.UserID))
	return n, nil
}

// Stats 管理后台统计：帖子总数、今日发帖数、各分类帖子数
// 今日从服务器本地时间 0 点算起
func (s *Service) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats := new(models.AdminStats)
	since := startOfDay(time.Now()).UnixMilli()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.store.CountPosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Today, err = s.store.CountPostsSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		stats.Categories, err = s.store.CountPostsByDepartment(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("collect admin stats failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
