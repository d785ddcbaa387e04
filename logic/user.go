package logic

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"teacreek/dao/database"
	"teacreek/dao/redis"
	"teacreek/models"
	"teacreek/pkg/errorx"
	"teacreek/pkg/jwt"

	"go.uber.org/zap"
)

// maxPasswordBytes bcrypt 只接受不超过 72 字节的密码
// binding 的 max 按字符计数，多字节字符仍需在这里按字节再校验一次
const maxPasswordBytes = 72

// LoginResult 登录成功后返回给客户端的数据
type LoginResult struct {
	Token    string
	ExpireAt time.Time
	User     *models.User
	Created  bool // 本次登录是否自动注册了新账号
}

// Login 处理用户登录业务逻辑
// 用户名不存在时自动注册（保留用户名除外）；账号设置了密码时必须提供正确的密码
func (s *Service) Login(ctx context.Context, p *models.ParamLogin) (*LoginResult, error) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return nil, errorx.ErrInvalidParam.WithMsg("用户名必填")
	}
	if len(p.Password) > maxPasswordBytes {
		return nil, errorx.ErrInvalidParam.WithMsg("密码不能超过72字节")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		zap.L().Error("store.GetUserByUsername failed",
			zap.String("username", username),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	created := false
	if user == nil {
		if s.isReserved(username) {
			return nil, errorx.ErrReservedUsername
		}
		if user, created, err = s.register(ctx, username, p.Password); err != nil {
			return nil, err
		}
	}

	// 新注册的账号刚用这个密码建立，不需要再校验
	if !created && user.HasPassword() && !database.CheckPassword(user, p.Password) {
		return nil, errorx.ErrInvalidPassword
	}

	res, err := s.issueToken(ctx, user, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	res.Created = created
	if created {
		s.metrics.LoginsTotal.WithLabelValues("registered").Inc()
	} else {
		s.metrics.LoginsTotal.WithLabelValues("existing").Inc()
	}
	return res, nil
}

// isReserved 保留用户名比较时不区分大小写
func (s *Service) isReserved(username string) bool {
	return slices.ContainsFunc(s.forum.ReservedUsernames, func(name string) bool {
		return strings.EqualFold(name, username)
	})
}

// register 自动注册新用户
// 并发的首次登录可能同时插入同名用户，唯一索引冲突时读取已存在的那一行
func (s *Service) register(ctx context.Context, username, password string) (*models.User, bool, error) {
	user := &models.User{
		Username: username,
		Password: password,
		Avatar:   s.forum.AvatarBase + url.QueryEscape(username),
		Role:     s.forum.DefaultRole,
	}
	err := s.store.InsertUser(ctx, user)
	if err == nil {
		zap.L().Info("user auto registered",
			zap.Int64("user_id", user.ID),
			zap.String("username", username))
		return user, true, nil
	}
	if !errors.Is(err, database.ErrorUserExist) {
		zap.L().Error("store.InsertUser failed",
			zap.String("username", username),
			zap.Error(err))
		return nil, false, errorx.ErrServerBusy
	}

	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil || existing == nil {
		zap.L().Error("store.GetUserByUsername after duplicate insert failed",
			zap.String("username", username),
			zap.Error(err))
		return nil, false, errorx.ErrServerBusy
	}
	return existing, false, nil
}

// AdminLogin 管理员登录，只接受已存在、角色为 admin 且密码正确的账号
func (s *Service) AdminLogin(ctx context.Context, p *models.ParamAdminLogin) (*LoginResult, error) {
	username := strings.TrimSpace(p.Username)
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		zap.L().Error("store.GetUserByUsername failed",
			zap.String("username", username),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if user == nil || !user.IsAdmin() || !user.HasPassword() || !database.CheckPassword(user, p.Password) {
		return nil, errorx.ErrInvalidPassword.WithMsg("认证失败")
	}

	res, err := s.issueToken(ctx, user, s.adminTokenTTL)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginsTotal.WithLabelValues("admin").Inc()
	return res, nil
}

// issueToken 签发令牌，启用 Redis 时登记为该用户唯一有效的令牌
func (s *Service) issueToken(ctx context.Context, user *models.User, ttl time.Duration) (*LoginResult, error) {
	token, expireAt, err := s.jwt.GenToken(user.ID, user.Role, user.Username, ttl)
	if err != nil {
		zap.L().Error("jwt.GenToken failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if s.tokens != nil {
		if err = s.tokens.SetUserToken(ctx, user.ID, token, ttl); err != nil {
			zap.L().Error("tokens.SetUserToken failed",
				zap.Int64("user_id", user.ID),
				zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
	}
	return &LoginResult{Token: token, ExpireAt: expireAt, User: user}, nil
}

// Authenticate 校验令牌并返回调用方身份
//   - 令牌过期、被篡改：ErrInvalidToken (403)
//   - 启用 Redis 时令牌已登出：ErrInvalidToken；被新登录顶掉：ErrTokenReplaced
//   - Redis 故障：严格模式返回 ErrNeedLogin，宽松模式降级为只校验 JWT
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	mc, err := s.jwt.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errorx.ErrInvalidToken.WithMsg("Token已过期")
		}
		return nil, errorx.ErrInvalidToken
	}

	if s.tokens != nil {
		active, err := s.tokens.GetUserToken(ctx, mc.UserID)
		switch {
		case errors.Is(err, redis.ErrTokenNotFound):
			return nil, errorx.ErrInvalidToken
		case err != nil:
			if s.strictSSO {
				zap.L().Error("tokens.GetUserToken failed",
					zap.Int64("user_id", mc.UserID),
					zap.Error(err))
				return nil, errorx.ErrNeedLogin
			}
			zap.L().Warn("Redis Token 校验失败，启用降级模式",
				zap.Int64("user_id", mc.UserID),
				zap.Error(err))
		case active != token:
			return nil, errorx.ErrTokenReplaced
		}
	}

	return &models.Identity{UserID: mc.UserID, Role: mc.Role, Name: mc.Name}, nil
}

// Logout 注销当前令牌，未启用 Redis 时令牌只能等待自然过期
func (s *Service) Logout(ctx context.Context, id *models.Identity) error {
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.DeleteUserToken(ctx, id.UserID); err != nil {
		zap.L().Error("tokens.DeleteUserToken failed",
			zap.Int64("user_id", id.UserID),
			zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// CurrentUser 查询当前登录用户的资料
func (s *Service) CurrentUser(ctx context.Context, id *models.Identity) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id.UserID)
	if err != nil {
		zap.L().Error("store.GetUserByID failed",
			zap.Int64("user_id", id.UserID),
			zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if user == nil {
		return nil, errorx.ErrNotFound.WithMsg("用户不存在")
	}
	return user, nil
}

// SeedAdmin 确保配置中的管理员账号存在
func (s *Service) SeedAdmin(ctx context.Context) error {
	admin := s.forum.Admin
	if admin == nil || admin.Username == "" {
		return nil
	}
	created, err := s.store.EnsureUser(ctx, &models.User{
		Username: admin.Username,
		Password: admin.Password,
		Avatar:   admin.Avatar,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created {
		zap.L().Info("default admin account created", zap.String("username", admin.Username))
	}
	return nil
}
