package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound 用户没有处于登录状态的令牌（已登出或已过期）
var ErrTokenNotFound = errors.New("active token not found")

// SetUserToken 记录用户当前有效的令牌，新登录会覆盖旧令牌
func (c *Client) SetUserToken(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, activeTokenKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("set user token failed (user_id: %d): %w", userID, err)
	}
	return nil
}

// GetUserToken 获取用户当前有效的令牌
func (c *Client) GetUserToken(ctx context.Context, userID int64) (string, error) {
	token, err := c.rdb.Get(ctx, activeTokenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("get user token failed (user_id: %d): %w", userID, err)
	}
	return token, nil
}

// DeleteUserToken 删除用户的令牌 (用于登出)
func (c *Client) DeleteUserToken(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, activeTokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete user token failed (user_id: %d): %w", userID, err)
	}
	return nil
}
