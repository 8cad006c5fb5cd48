package images

import (
	"context"
	"errors"

	"github.com/calyx/image-service/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 图片仓库 - 封装所有图片相关的数据库操作
// 所有按账户维度的查询都以 account_id 作为作用域
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
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

// Create 创建图片记录，不级联修改标签实体
func (r *Repository) Create(image *models.Image) error {
	return r.db.Omit(clause.Associations).Create(image).Error
}

// Save 保存图片字段，不级联修改标签实体
func (r *Repository) Save(image *models.Image) error {
	return r.db.Omit(clause.Associations).Save(image).Error
}

// ReplaceTags 将图片的标签集合整体替换为给定集合
func (r *Repository) ReplaceTags(image *models.Image, tags []*models.Tag) error {
	return r.db.Model(image).Omit("Tags.*").Association("Tags").Replace(tags)
}

// FindByAccount 获取账户下的全部图片
func (r *Repository) FindByAccount(accountID uint) ([]*models.Image, error) {
	var images []*models.Image
	err := r.db.Preload("Tags").
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Find(&images).Error
	return images, err
}

// FindByIDAndAccount 通过ID和账户ID获取图片
func (r *Repository) FindByIDAndAccount(imageID, accountID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("Tags").
		Where("id = ? AND account_id = ?", imageID, accountID).
		First(&image).Error
	return &image, err
}

// DeleteByIDAndAccount 按 (账户ID, 图片ID) 删除图片
// 记录不存在时为空操作；删除前清除标签关联，软删除不残留关联行
func (r *Repository) DeleteByIDAndAccount(imageID, accountID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var image models.Image
		err := tx.Where("id = ? AND account_id = ?", imageID, accountID).First(&image).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&image).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&image).Error
	})
}

// CountByAccount 统计账户下的图片数量
func (r *Repository) CountByAccount(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}
