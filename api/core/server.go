package core

import (
	"net/http"
	"time"

	"github.com/calyx/image-service/api/middleware"
	"github.com/calyx/image-service/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Router *RouterDependencies
}

// setupRouter 构建 gin 引擎并注册中间件与路由
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())

	allowOrigins := []string{"*"}
	if cfg.ServerDomain != "" {
		allowOrigins = []string{cfg.ServerDomain}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: cfg.ServerDomain != "",
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	deps.Router.AuthRateLimiter = authRateLimiter
	deps.Router.APIRateLimiter = apiRateLimiter
	deps.Router.Config = cfg

	RegisterRoutes(router, deps.Router)

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, cleanup := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, cleanup
}
