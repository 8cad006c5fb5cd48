package core

import (
	"net/http"
	"time"

	"github.com/calyx/image-service/cache"
	"github.com/calyx/image-service/config"
	"github.com/calyx/image-service/database"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthHandler 健康检查处理器
type HealthHandler struct {
	dbFactory     *database.Factory
	cacheProvider cache.Provider
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(dbFactory *database.Factory, cacheProvider cache.Provider) *HealthHandler {
	return &HealthHandler{
		dbFactory:     dbFactory,
		cacheProvider: cacheProvider,
	}
}

// Handle 返回数据库和缓存的健康状态
func (h *HealthHandler) Handle(c *gin.Context) {
	checks := gin.H{
		"database": h.checkDatabase(),
		"cache":    h.checkCache(),
	}

	httpStatus := http.StatusOK
	for _, checkResult := range checks {
		if result, ok := checkResult.(string); ok && result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  "ok",
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func (h *HealthHandler) checkDatabase() string {
	if h.dbFactory == nil {
		return "not configured"
	}
	if err := h.dbFactory.Ping(); err != nil {
		return err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkCache() string {
	if h.cacheProvider == nil {
		return "not configured"
	}
	return "ok"
}
