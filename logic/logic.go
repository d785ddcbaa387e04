package logic

import (
	"context"
	"io"
	"time"

	"teacreek/dao/database"
	"teacreek/pkg/jwt"
	"teacreek/pkg/metrics"
	"teacreek/settings"
)

// TokenRegistry 记录每个用户当前有效的令牌，用于登出和单点登录
// 由 dao/redis.Client 实现；未启用 Redis 时为 nil
type TokenRegistry interface {
	SetUserToken(ctx context.Context, userID int64, token string, ttl time.Duration) error
	GetUserToken(ctx context.Context, userID int64) (string, error)
	DeleteUserToken(ctx context.Context, userID int64) error
}

// FileStore 保存上传文件并返回访问 URL，由 dao/storage.Disk 实现
type FileStore interface {
	Save(name string, r io.Reader) (string, error)
}

// Deps 构造 Service 需要的依赖
type Deps struct {
	Store   *database.Store
	Tokens  TokenRegistry // 可为 nil
	JWT     *jwt.Manager
	Files   FileStore
	Metrics *metrics.Metrics
	Forum   *settings.ForumConfig

	TokenTTL      time.Duration
	AdminTokenTTL time.Duration
	StrictSSO     bool
}

// Service 业务逻辑层，所有依赖在启动时注入
type Service struct {
	store   *database.Store
	tokens  TokenRegistry
	jwt     *jwt.Manager
	files   FileStore
	metrics *metrics.Metrics
	forum   *settings.ForumConfig

	tokenTTL      time.Duration
	adminTokenTTL time.Duration
	strictSSO     bool
}

func NewService(d Deps) *Service {
	return &Service{
		store:         d.Store,
		tokens:        d.Tokens,
		jwt:           d.JWT,
		files:         d.Files,
		metrics:       d.Metrics,
		forum:         d.Forum,
		tokenTTL:      d.TokenTTL,
		adminTokenTTL: d.AdminTokenTTL,
		strictSSO:     d.StrictSSO,
	}
}

// Ping 健康检查，只检查数据库
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
