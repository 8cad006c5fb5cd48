package core

import (
	"github.com/calyx/image-service/api"
	handlerAccounts "github.com/calyx/image-service/api/handler/accounts"
	handlerImages "github.com/calyx/image-service/api/handler/images"
	handlerSearch "github.com/calyx/image-service/api/handler/search"
	"github.com/calyx/image-service/api/middleware"
	"github.com/calyx/image-service/cache"
	"github.com/calyx/image-service/config"
	"github.com/calyx/image-service/database"
	"github.com/calyx/image-service/database/models"
	svcAccounts "github.com/calyx/image-service/internal/accounts"
	"github.com/calyx/image-service/internal/auth"
	svcImages "github.com/calyx/image-service/internal/images"
	"github.com/gin-gonic/gin"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	DBFactory       *database.Factory
	CacheProvider   cache.Provider
	AccountsService *svcAccounts.Service
	ImagesService   *svcImages.Service
	JWTService      *auth.JWTService
	LoginService    *auth.LoginService
	AuthRateLimiter *middleware.IPRateLimiter
	APIRateLimiter  *middleware.IPRateLimiter
	Config          *config.Config
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.DBFactory, deps.CacheProvider)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	accountHandler := handlerAccounts.NewHandler(deps.AccountsService)
	imageHandler := handlerImages.NewHandler(deps.ImagesService)
	searchHandler := handlerSearch.NewHandler(deps.ImagesService)
	loginHandler := api.NewLoginHandler(deps.LoginService)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) {
		// 所有 API 禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		// 认证路由
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(deps.AuthRateLimiter.Middleware())
		{
			authGroup.POST("/register", accountHandler.Register) // POST /api/auth/register
			authGroup.POST("/login", loginHandler.LoginHandlerFunc)
			authGroup.POST("/refresh", loginHandler.RefreshTokenHandlerFunc)
			authGroup.POST("/logout", loginHandler.LogoutHandlerFunc)
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(deps.APIRateLimiter.Middleware())
		v1.Use(middleware.JWTAuth(deps.JWTService))
		{
			// 账户管理
			accountsGroup := v1.Group("/accounts")
			{
				accountsGroup.GET("", middleware.RequireRole(models.RoleAdmin), accountHandler.ListAccounts)
				accountsGroup.DELETE("/:accountId", middleware.RequireRole(models.RoleAdmin), accountHandler.DeleteAccount)

				scoped := accountsGroup.Group("/:accountId")
				scoped.Use(middleware.RequireAccountScope("accountId"))
				{
					scoped.GET("", accountHandler.GetAccount)
					scoped.PUT("", accountHandler.UpdateAccount)

					// 账户作用域内的图片生命周期
					scoped.GET("/images", imageHandler.ListImages)                // GET /api/v1/accounts/{accountId}/images
					scoped.POST("/images", imageHandler.CreateImage)              // POST /api/v1/accounts/{accountId}/images
					scoped.GET("/images/:imageId", imageHandler.GetImage)         // GET /api/v1/accounts/{accountId}/images/{imageId}
					scoped.PUT("/images/:imageId", imageHandler.UpdateImage)      // PUT /api/v1/accounts/{accountId}/images/{imageId}
					scoped.DELETE("/images/:imageId", imageHandler.DeleteImage)   // DELETE /api/v1/accounts/{accountId}/images/{imageId}
				}
			}

			// 全局图片搜索（管理员）
			searchGroup := v1.Group("/search")
			searchGroup.Use(middleware.RequireRole(models.RoleAdmin))
			{
				searchGroup.POST("/images", searchHandler.SearchImages) // POST /api/v1/search/images
			}
		}
	}
}
