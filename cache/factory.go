package cache

import (
	"fmt"
	"log"

	"github.com/calyx/image-service/cache/memory"
	"github.com/calyx/image-service/cache/redis"
	"github.com/calyx/image-service/config"
)

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		provider, err := redis.NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		log.Printf("Cache provider 'redis' initialized (%s)", cfg.CacheRedisAddr)
		return provider, nil

	case "memory", "":
		provider, err := memory.NewMemory(memory.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory cache: %w", err)
		}
		log.Println("Cache provider 'memory' initialized")
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
