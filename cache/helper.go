package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/calyx/image-service/database/models"
)

// DefaultImageMetaTTL 图片元数据缓存的默认过期时间
const DefaultImageMetaTTL = 1 * time.Hour

// Helper 领域对象缓存助手
type Helper struct {
	provider Provider
	metaTTL  time.Duration
}

// NewHelper 创建新的缓存助手
func NewHelper(provider Provider, metaTTL time.Duration) *Helper {
	if metaTTL <= 0 {
		metaTTL = DefaultImageMetaTTL
	}
	return &Helper{
		provider: provider,
		metaTTL:  metaTTL,
	}
}

func imageMetaKey(accountID, imageID uint) string {
	return ImageMeta.Build(fmt.Sprintf("%d", accountID), fmt.Sprintf("%d", imageID))
}

// CacheImage 缓存图片元数据
func (h *Helper) CacheImage(ctx context.Context, image *models.Image) error {
	if h == nil || h.provider == nil {
		return nil
	}
	return h.provider.Set(ctx, imageMetaKey(image.AccountID, image.ID), image, h.metaTTL)
}

// GetCachedImage 获取缓存的图片元数据
func (h *Helper) GetCachedImage(ctx context.Context, accountID, imageID uint, dest *models.Image) error {
	if h == nil || h.provider == nil {
		return ErrCacheMiss
	}
	return h.provider.Get(ctx, imageMetaKey(accountID, imageID), dest)
}

// InvalidateImage 删除图片元数据缓存
func (h *Helper) InvalidateImage(ctx context.Context, accountID, imageID uint) error {
	if h == nil || h.provider == nil {
		return nil
	}
	return h.provider.Delete(ctx, imageMetaKey(accountID, imageID))
}
