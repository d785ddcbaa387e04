package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teacreek/controller"
	"teacreek/dao/database"
	"teacreek/dao/redis"
	"teacreek/dao/storage"
	_ "teacreek/docs" // 导入生成的 Swagger 文档包
	"teacreek/logger"
	"teacreek/logic"
	"teacreek/pkg/jwt"
	"teacreek/pkg/metrics"
	"teacreek/pkg/snowflake"
	"teacreek/pkg/tracing"
	"teacreek/routers"
	"teacreek/settings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// @title teacreek 社区论坛接口文档
// @version 1.0
// @description 村庄社区论坛后端：帖子、评论、点赞、上传和管理后台

// @host 127.0.0.1:5000
// @BasePath /api

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	// 1. 加载配置
	var confFile string
	flag.StringVar(&confFile, "conf", "./config.yaml", "配置文件路径")
	flag.Parse()

	// 配置文件修改后只热更新日志级别，其余配置需要重启生效
	if err := settings.Init(confFile, func(c *settings.Config) {
		if err := logger.SetLevel(c.Log.Level); err != nil {
			zap.L().Warn("reload log level failed", zap.String("level", c.Log.Level), zap.Error(err))
			return
		}
		zap.L().Info("log level reloaded", zap.String("level", c.Log.Level))
	}); err != nil {
		fmt.Printf("init settings failed, err:%v\n", err)
		return
	}
	conf := settings.Conf

	if err := snowflake.Init(conf.Snowflake.StartTime, conf.Snowflake.MachineID); err != nil {
		fmt.Printf("init snowflake failed, err:%v\n", err)
		return
	}

	// 2. 初始化日志
	if err := logger.Init(conf.Log, conf.App.Mode); err != nil {
		fmt.Printf("init logger failed, err:%v\n", err)
		return
	}
	defer zap.L().Sync()

	if err := run(conf); err != nil {
		zap.L().Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(conf *settings.Config) error {
	// 3. 链路追踪（可选）
	shutdownTracing, err := tracing.Init(context.Background(), conf.Tracing, conf.App.Version)
	if err != nil {
		return fmt.Errorf("init tracing failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			zap.L().Warn("shutdown tracing failed", zap.Error(err))
		}
	}()

	// 4. 数据库是核心依赖，连不上直接退出
	dbLogLevel := gormlogger.Warn
	if conf.App.Mode == gin.DebugMode {
		dbLogLevel = gormlogger.Info
	}
	store, err := database.New(conf.Database, database.Options{
		LogLevel: dbLogLevel,
		Tracing:  conf.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("init database failed: %w", err)
	}
	defer store.Close()

	// 5. Redis 可选，只用于登出和单点登录
	var tokens logic.TokenRegistry
	if conf.Redis.Enabled {
		rdb, err := redis.New(conf.Redis)
		if err != nil {
			return fmt.Errorf("init redis failed: %w", err)
		}
		defer rdb.Close()
		tokens = rdb
	} else {
		zap.L().Info("redis disabled, logout only takes effect when the token expires")
	}

	// 6. 上传文件存储
	disk, err := storage.NewDisk(afero.NewOsFs(), conf.Upload.Dir, conf.Upload.URLPrefix)
	if err != nil {
		return fmt.Errorf("init upload storage failed: %w", err)
	}

	tokenTTL, err := time.ParseDuration(conf.Auth.TokenExpire)
	if err != nil {
		return fmt.Errorf("parse auth.token_expire failed: %w", err)
	}
	adminTokenTTL, err := time.ParseDuration(conf.Auth.AdminTokenExpire)
	if err != nil {
		return fmt.Errorf("parse auth.admin_token_expire failed: %w", err)
	}

	m := metrics.New(conf.App.Name)
	svc := logic.NewService(logic.Deps{
		Store:         store,
		Tokens:        tokens,
		JWT:           jwt.NewManager(conf.Auth.JWTSecret, conf.Auth.Issuer),
		Files:         disk,
		Metrics:       m,
		Forum:         conf.Forum,
		TokenTTL:      tokenTTL,
		AdminTokenTTL: adminTokenTTL,
		StrictSSO:     conf.Auth.StrictSSO,
	})
	if err = svc.SeedAdmin(context.Background()); err != nil {
		return fmt.Errorf("seed admin account failed: %w", err)
	}

	if err = controller.InitTrans(conf.App.Locale); err != nil {
		return fmt.Errorf("init validator trans failed: %w", err)
	}

	// 7. 注册路由
	r := routers.SetupRouter(controller.NewHandler(svc), svc, routers.Options{
		Mode:               conf.App.Mode,
		RateLimit:          conf.RateLimit,
		MaxMultipartMemory: conf.Upload.MaxMultipartMemory,
		Tracing:            conf.Tracing.Enabled,
		ServiceName:        conf.Tracing.ServiceName,
		Metrics:            m,
		UploadURLPrefix:    disk.URLPrefix(),
		Uploads:            disk.FileSystem(),
	})

	// 8. 启动服务 (优雅关机模式)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.App.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server is running...", zap.Int("port", conf.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		return fmt.Errorf("listen failed: %w", err)
	case <-quit:
	}
	zap.L().Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	zap.L().Info("Server exiting")
	return nil
}
