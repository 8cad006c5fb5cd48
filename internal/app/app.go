package app

import (
	"fmt"
	"log"

	"github.com/calyx/image-service/cache"
	"github.com/calyx/image-service/config"
	"github.com/calyx/image-service/database"
	"github.com/calyx/image-service/database/repo/accounts"
	"github.com/calyx/image-service/database/repo/images"
	"github.com/calyx/image-service/database/repo/tags"
	svcAccounts "github.com/calyx/image-service/internal/accounts"
	"github.com/calyx/image-service/internal/auth"
	svcImages "github.com/calyx/image-service/internal/images"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	cacheProvider   cache.Provider
	cacheHelper     *cache.Helper

	AccountsRepo *accounts.Repository
	DevicesRepo  *accounts.DeviceRepository
	ImagesRepo   *images.Repository
	TagsRepo     *tags.Repository

	AccountsService *svcAccounts.Service
	ImagesService   *svcImages.Service
	JWTService      *auth.JWTService
	LoginService    *auth.LoginService
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Init 初始化数据库、缓存和服务
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.InitCache(); err != nil {
		return err
	}
	if err := c.InitServices(); err != nil {
		return err
	}
	return nil
}

// InitDatabase 初始化数据库工厂和所有仓库
func (c *Container) InitDatabase() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory

	db := factory.GetProvider().DB()
	c.AccountsRepo = accounts.NewRepository(db)
	c.DevicesRepo = accounts.NewDeviceRepository(db)
	c.ImagesRepo = images.NewRepository(db)
	c.TagsRepo = tags.NewRepository(db)

	return nil
}

// InitCache 初始化缓存提供者
func (c *Container) InitCache() error {
	provider, err := cache.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	c.cacheProvider = provider
	c.cacheHelper = cache.NewHelper(provider, c.config.CacheImageMetaTTL)
	return nil
}

// InitServices 初始化业务服务
func (c *Container) InitServices() error {
	jwtService, err := auth.NewJWTService(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	c.JWTService = jwtService
	c.LoginService = auth.NewLoginService(c.AccountsRepo, c.DevicesRepo, jwtService)

	provider := c.databaseFactory.GetProvider()
	c.AccountsService = svcAccounts.NewService(provider, c.AccountsRepo)
	c.ImagesService = svcImages.NewService(provider, c.AccountsRepo, c.ImagesRepo, c.TagsRepo, c.cacheHelper)

	return nil
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetCacheProvider 获取缓存提供者
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cacheProvider
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("Error closing cache provider: %v", err)
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			return fmt.Errorf("failed to close database factory: %w", err)
		}
	}

	return nil
}
