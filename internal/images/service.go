package images

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/calyx/image-service/cache"
	"github.com/calyx/image-service/database"
	"github.com/calyx/image-service/database/models"
	accountsRepo "github.com/calyx/image-service/database/repo/accounts"
	imagesRepo "github.com/calyx/image-service/database/repo/images"
	tagsRepo "github.com/calyx/image-service/database/repo/tags"
	"github.com/calyx/image-service/internal/apperrors"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var imageGroup singleflight.Group

// Filter 图片搜索过滤条件（从 repository 透传）
type Filter = imagesRepo.Filter

// Pagination 分页描述符（从 repository 透传）
type Pagination = imagesRepo.Pagination

// IsInvalidSort 判断错误是否由非法排序字段引起
func IsInvalidSort(err error) bool {
	return errors.Is(err, imagesRepo.ErrUnsupportedSort)
}

// ImageInput 图片可变字段
// 更新时所有字段整体替换，标签集合为全量替换语义
type ImageInput struct {
	OriginalName string
	ContentType  string
	Size         int64
	TagIDs       []uint
}

// SearchResult 图片搜索结果
type SearchResult struct {
	Images     []*models.Image
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// Service 图片服务层 - 按账户作用域管理图片生命周期
type Service struct {
	provider    database.Provider
	accounts    *accountsRepo.Repository
	images      *imagesRepo.Repository
	tags        *tagsRepo.Repository
	cacheHelper *cache.Helper
}

// NewService 创建新的图片服务
func NewService(
	provider database.Provider,
	accounts *accountsRepo.Repository,
	images *imagesRepo.Repository,
	tags *tagsRepo.Repository,
	cacheHelper *cache.Helper,
) *Service {
	return &Service{
		provider:    provider,
		accounts:    accounts,
		images:      images,
		tags:        tags,
		cacheHelper: cacheHelper,
	}
}

// checkAccount 校验账户存在，不存在时返回 AccountNotFoundError
func (s *Service) checkAccount(ctx context.Context, accountID uint) error {
	_, err := s.accounts.WithContext(ctx).FindByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperrors.AccountNotFoundError{AccountID: accountID}
		}
		return fmt.Errorf("failed to look up account %d: %w", accountID, err)
	}
	return nil
}

// List 获取账户下的全部图片
func (s *Service) List(ctx context.Context, ownerID uint) ([]*models.Image, error) {
	if err := s.checkAccount(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.images.WithContext(ctx).FindByAccount(ownerID)
}

// Get 通过 (账户ID, 图片ID) 获取图片（带缓存和 singleflight）
func (s *Service) Get(ctx context.Context, ownerID, imageID uint) (*models.Image, error) {
	if err := s.checkAccount(ctx, ownerID); err != nil {
		return nil, err
	}

	var cached models.Image
	if err := s.cacheHelper.GetCachedImage(ctx, ownerID, imageID, &cached); err == nil {
		return &cached, nil
	}

	key := fmt.Sprintf("%d/%d", ownerID, imageID)
	result, err, _ := imageGroup.Do(key, func() (interface{}, error) {
		image, err := s.images.WithContext(ctx).FindByIDAndAccount(imageID, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &apperrors.ImageNotFoundError{ImageID: imageID, AccountID: ownerID}
			}
			return nil, err
		}

		// 在 singleflight 回调内同步写入缓存，
		// 避免滞后的填充覆盖掉后续失效
		if cacheErr := s.cacheHelper.CacheImage(ctx, image); cacheErr != nil {
			log.Printf("Failed to cache image metadata for %d/%d: %v", image.AccountID, image.ID, cacheErr)
		}

		return image, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Image), nil
}

// Search 按组合谓词分页搜索图片，不限定账户作用域
func (s *Service) Search(ctx context.Context, filter Filter, p Pagination) (*SearchResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}

	// 限制最大分页数量
	const maxLimit = 100
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	list, total, err := s.images.WithContext(ctx).QueryImages(filter, p)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}

	totalPages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		totalPages++
	}

	return &SearchResult{
		Images:     list,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}, nil
}

// Create 在账户下创建图片
// 账户存在性检查、标签解析和写入在同一事务内完成，
// 标签校验失败时不会留下任何部分写入
func (s *Service) Create(ctx context.Context, ownerID uint, input ImageInput) (*models.Image, error) {
	var created *models.Image

	err := s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if _, err := s.accounts.WithTx(tx).FindByID(ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperrors.AccountNotFoundError{AccountID: ownerID}
			}
			return err
		}

		resolved, err := NewTagValidator(s.tags.WithTx(tx)).Resolve(input.TagIDs)
		if err != nil {
			return err
		}

		image := &models.Image{
			OriginalName: input.OriginalName,
			ContentType:  input.ContentType,
			Size:         input.Size,
			AccountID:    ownerID,
		}

		repo := s.images.WithTx(tx)
		if err := repo.Create(image); err != nil {
			return fmt.Errorf("failed to create image: %w", err)
		}
		if err := repo.ReplaceTags(image, resolved); err != nil {
			return fmt.Errorf("failed to attach tags: %w", err)
		}

		image.Tags = resolved
		created = image
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 按 (账户ID, 图片ID) 整体替换图片的可变字段
// 标签集合为全量替换：更新后图片恰好关联请求中的标签集合
func (s *Service) Update(ctx context.Context, ownerID, imageID uint, input ImageInput) (*models.Image, error) {
	var updated *models.Image

	err := s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if _, err := s.accounts.WithTx(tx).FindByID(ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperrors.AccountNotFoundError{AccountID: ownerID}
			}
			return err
		}

		repo := s.images.WithTx(tx)
		image, err := repo.FindByIDAndAccount(imageID, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperrors.ImageNotFoundError{ImageID: imageID, AccountID: ownerID}
			}
			return err
		}

		resolved, err := NewTagValidator(s.tags.WithTx(tx)).Resolve(input.TagIDs)
		if err != nil {
			return err
		}

		image.OriginalName = input.OriginalName
		image.ContentType = input.ContentType
		image.Size = input.Size

		if err := repo.Save(image); err != nil {
			return fmt.Errorf("failed to update image: %w", err)
		}
		if err := repo.ReplaceTags(image, resolved); err != nil {
			return fmt.Errorf("failed to replace tags: %w", err)
		}

		image.Tags = resolved
		updated = image
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, ownerID, imageID)
	return updated, nil
}

// Delete 按 (账户ID, 图片ID) 删除图片，记录不存在时为空操作
func (s *Service) Delete(ctx context.Context, ownerID, imageID uint) error {
	if err := s.images.WithContext(ctx).DeleteByIDAndAccount(imageID, ownerID); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	s.invalidateCache(ctx, ownerID, imageID)
	return nil
}

// invalidateCache 在返回前同步删除图片元数据缓存，
// 保证变更后的读取不会命中旧条目；失效失败仅记录日志
func (s *Service) invalidateCache(ctx context.Context, ownerID, imageID uint) {
	if err := s.cacheHelper.InvalidateImage(ctx, ownerID, imageID); err != nil {
		log.Printf("Failed to invalidate image cache for %d/%d: %v", ownerID, imageID, err)
	}
}
