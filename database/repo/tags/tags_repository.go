package tags

import (
	"context"

	"github.com/calyx/image-service/database/models"
	"gorm.io/gorm"
)

// Repository 标签仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的标签仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx 返回绑定到指定事务的仓库
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// WithContext 返回带上下文的仓库
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

// FindByIDs 批量通过ID获取标签（使用 IN 语句，单次查询）
func (r *Repository) FindByIDs(ids []uint) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}
	var tags []*models.Tag
	err := r.db.Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

// Create 创建标签
func (r *Repository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}
