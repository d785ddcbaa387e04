package redis

import (
	"context"
	"fmt"
	"time"

	"teacreek/settings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client 包装 go-redis 客户端，redis.Client 并发安全，整个应用共享一个连接池
type Client struct {
	rdb *redis.Client
}

// New 建立 Redis 连接并 Ping 校验
func New(cfg *settings.RedisConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis failed: %w", err)
	}

	zap.L().Info("init redis success",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)
	return &Client{rdb: rdb}, nil
}

// NewFromClient 使用已有的 go-redis 客户端
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close 关闭 Redis 连接
func (c *Client) Close() {
	if c != nil && c.rdb != nil {
		_ = c.rdb.Close()
	}
}
