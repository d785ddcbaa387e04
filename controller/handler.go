package controller

import (
	"context"
	"mime/multipart"
	"time"

	"teacreek/logic"
	"teacreek/models"
)

// ForumService Handler 依赖的业务接口，由 *logic.Service 实现
type ForumService interface {
	Login(ctx context.Context, p *models.ParamLogin) (*logic.LoginResult, error)
	AdminLogin(ctx context.Context, p *models.ParamAdminLogin) (*logic.LoginResult, error)
	Logout(ctx context.Context, id *models.Identity) error
	CurrentUser(ctx context.Context, id *models.Identity) (*models.User, error)

	Submit(ctx context.Context, id *models.Identity, p *models.ParamSubmit) (int64, error)
	Feed(ctx context.Context, p *models.ParamFeed) ([]*models.Post, error)
	PostDetail(ctx context.Context, pid int64) (*models.ApiPostDetail, error)
	Like(ctx context.Context, pid int64, liked bool) (int64, error)

	AddComment(ctx context.Context, id *models.Identity, pid int64, content string) (int64, error)
	ListComments(ctx context.Context, pid int64) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id *models.Identity, cid int64) error

	AdminListPosts(ctx context.Context) ([]*models.Post, error)
	DeletePost(ctx context.Context, id *models.Identity, pid int64) (int64, error)
	Stats(ctx context.Context) (*models.AdminStats, error)

	Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	Ping(ctx context.Context) error
}

// Handler 所有 HTTP 接口的处理器
type Handler struct {
	svc ForumService
	now func() time.Time
}

func NewHandler(svc ForumService) *Handler {
	return &Handler{svc: svc, now: time.Now}
}
