package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"teacreek/models"
	"teacreek/settings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	otelgorm "gorm.io/plugin/opentelemetry/tracing"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Store 持有数据库连接，由 main 创建后注入到 logic 层
// gorm.DB 是并发安全的，所有请求共享同一个连接池
type Store struct {
	db *gorm.DB
}

// Options 打开数据库时的附加选项
type Options struct {
	LogLevel logger.LogLevel // 默认 logger.Warn
	Tracing  bool            // 是否注册 OpenTelemetry 插件
}

// New 按配置打开数据库、自动建表
func New(cfg *settings.DatabaseConfig, opts Options) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database.New received nil config")
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
		// 帖子、评论对用户是弱引用，不建外键
		DisableForeignKeyConstraintWhenMigrating: true,
		// 唯一索引冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to %s failed: %w", cfg.Driver, err)
	}

	if opts.Tracing {
		if err = db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("register gorm tracing plugin failed: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s failed: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite 只允许一个写者，单连接让写入在驱动层串行化
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
		sqlDB.SetConnMaxLifetime(2 * time.Hour)
	}

	if err = db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}

	zap.L().Info("init database success", zap.String("driver", cfg.Driver))
	return &Store{db: db}, nil
}

func openDialector(cfg *settings.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		cfg.Driver = DriverSQLite
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir failed: %w", err)
			}
		}
		return sqlite.Open(cfg.Path + "?_busy_timeout=5000"), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DbName,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close 关闭数据库连接
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Ping 检查数据库连接是否可用
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB failed: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
