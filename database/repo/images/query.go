package images

import (
	"errors"
	"fmt"

	"github.com/calyx/image-service/database/models"
	"gorm.io/gorm"
)

// ErrUnsupportedSort 排序字段不在白名单内
var ErrUnsupportedSort = errors.New("unsupported sort field")

// Filter 图片搜索过滤条件
// 未设置的条件完全不参与谓词组合（缺席即无限制，而不是通配值），
// 设置的条件之间按逻辑 AND 组合
type Filter struct {
	OwnerID      *uint
	OriginalName *string // 精确匹配
	ContentType  *string // 精确匹配
	Size         *int64  // 精确匹配
	TagIDs       []uint  // 至少关联其中一个标签（成员测试，非全包含）
}

// apply 将过滤条件组合为查询谓词
func (f Filter) apply(db *gorm.DB) *gorm.DB {
	if f.OwnerID != nil {
		db = db.Where("images.account_id = ?", *f.OwnerID)
	}
	if f.OriginalName != nil {
		db = db.Where("images.original_name = ?", *f.OriginalName)
	}
	if f.ContentType != nil {
		db = db.Where("images.content_type = ?", *f.ContentType)
	}
	if f.Size != nil {
		db = db.Where("images.size = ?", *f.Size)
	}
	if len(f.TagIDs) > 0 {
		// 多个标签命中同一图片时靠 DISTINCT 去重
		db = db.Joins("JOIN images_tags ON images_tags.image_id = images.id").
			Where("images_tags.tag_id IN ?", f.TagIDs)
	}
	return db
}

// 允许的排序字段，防止排序参数注入任意列名
var sortColumns = map[string]string{
	"id":            "images.id",
	"original_name": "images.original_name",
	"content_type":  "images.content_type",
	"size":          "images.size",
	"created_on":    "images.created_at",
	"updated_on":    "images.updated_at",
}

// Pagination 分页描述符
// 排序由调用方指定；稳定的跨页遍历需要调用方给出确定性的排序键
type Pagination struct {
	Page  int
	Limit int
	Sort  string // 排序字段，见 sortColumns
	Order string // asc / desc
}

// orderClause 构建排序子句，Sort 为空时不施加任何排序
func (p Pagination) orderClause() (string, error) {
	if p.Sort == "" {
		return "", nil
	}
	column, ok := sortColumns[p.Sort]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSort, p.Sort)
	}
	direction := "asc"
	if p.Order == "desc" {
		direction = "desc"
	}
	return column + " " + direction, nil
}

// QueryImages 按组合谓词分页查询图片，返回当前页内容和总命中数
func (r *Repository) QueryImages(f Filter, p Pagination) ([]*models.Image, int64, error) {
	var total int64
	countQuery := f.apply(r.db.Model(&models.Image{}))
	if err := countQuery.Distinct("images.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := f.apply(r.db.Model(&models.Image{})).Distinct("images.*").Preload("Tags")
	orderBy, err := p.orderClause()
	if err != nil {
		return nil, 0, err
	}
	if orderBy != "" {
		query = query.Order(orderBy)
	}

	var list []*models.Image
	offset := (p.Page - 1) * p.Limit
	if err := query.Offset(offset).Limit(p.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
