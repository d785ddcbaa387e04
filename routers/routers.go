package routers

import (
	"net/http"
	"time"

	"teacreek/controller"
	"teacreek/logger"
	"teacreek/middlewares"
	"teacreek/pkg/errorx"
	"teacreek/pkg/metrics"
	"teacreek/settings"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Options 路由需要的运行参数
type Options struct {
	Mode               string // 运行模式 (debug, release, test)
	RateLimit          *settings.RateLimitConfig
	RequestTimeout     time.Duration // 为 0 时使用 10 秒
	MaxMultipartMemory int64
	Tracing            bool
	ServiceName        string
	Metrics            *metrics.Metrics

	// 上传文件的静态访问
	UploadURLPrefix string
	Uploads         http.FileSystem
}

// SetupRouter 初始化路由配置
func SetupRouter(h *controller.Handler, auth middlewares.Authenticator, opts Options) *gin.Engine {
	// 1. 设置 Gin 的运行模式
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	// 2. 创建引擎 (使用 New 而不是 Default，以便自定义中间件)
	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	// 3. 注册全局中间件
	fillInterval, capacity := rateLimitParams(opts.RateLimit)
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r.Use(logger.GinLogger(), logger.GinRecovery(true))
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Metrics != nil {
		r.Use(middlewares.MetricsMiddleware(opts.Metrics))
	}
	r.Use(
		middlewares.RateLimitMiddleware(fillInterval, capacity),
		middlewares.TimeoutMiddleware(timeout),
	)

	// 4. 运维相关路由
	if opts.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.Mode == gin.DebugMode {
		pprof.Register(r)
	}
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	if opts.Uploads != nil && opts.UploadURLPrefix != "" {
		r.StaticFS(opts.UploadURLPrefix, opts.Uploads)
	}

	// 5. 注册路由组
	api := r.Group("/api")

	// ----------------------------------------------------------------
	// A. 公共路由 (Public Routes)
	// ----------------------------------------------------------------
	{
		api.GET("/health", h.HealthHandler)
		api.POST("/login", h.LoginHandler)
		api.POST("/admin/login", h.AdminLoginHandler)
		api.POST("/upload", h.UploadHandler)

		api.GET("/feed", h.FeedHandler)
		api.GET("/post/:id", h.PostDetailHandler)
		api.POST("/post/:id/like", h.LikeHandler) // 匿名点赞，不做去重
		api.GET("/comments/:postId", h.ListCommentsHandler)
	}

	// ----------------------------------------------------------------
	// B. 认证路由 (Protected Routes)
	// 需要 Header 中携带 Authorization: Bearer <token>
	// ----------------------------------------------------------------
	authGroup := api.Group("")
	authGroup.Use(middlewares.JWTAuthMiddleware(auth))
	{
		authGroup.POST("/submit", h.SubmitHandler)
		authGroup.POST("/post/:id/comment", h.AddCommentHandler)
		authGroup.POST("/comments", h.CreateCommentHandler)
		authGroup.DELETE("/comments/:id", h.DeleteCommentHandler)
		authGroup.POST("/logout", h.LogoutHandler)
		authGroup.GET("/me", h.MeHandler)
	}

	// ----------------------------------------------------------------
	// C. 管理后台 (Admin Routes)
	// ----------------------------------------------------------------
	adminGroup := api.Group("/admin")
	adminGroup.Use(middlewares.JWTAuthMiddleware(auth), middlewares.AdminOnly())
	{
		adminGroup.GET("/stats", h.StatsHandler)
		adminGroup.GET("/list", h.AdminListHandler)
		adminGroup.DELETE("/post/:id", h.AdminDeletePostHandler)
	}

	// 6. 处理 404，API 服务统一返回 JSON
	r.NoRoute(func(c *gin.Context) {
		controller.ResponseError(c, errorx.ErrNotFound.WithMsg("404 page not found"))
	})

	return r
}

// rateLimitParams 解析限流配置，配置缺失或格式错误时使用 10ms / 200
func rateLimitParams(cfg *settings.RateLimitConfig) (time.Duration, int64) {
	fillInterval, capacity := 10*time.Millisecond, int64(200)
	if cfg == nil {
		return fillInterval, capacity
	}
	if d, err := time.ParseDuration(cfg.FillInterval); err == nil && d > 0 {
		fillInterval = d
	}
	if cfg.Capacity > 0 {
		capacity = cfg.Capacity
	}
	return fillInterval, capacity
}
