package models

import "gorm.io/gorm"

type Image struct {
	gorm.Model
	OriginalName string `gorm:"not null;index"`
	ContentType  string `gorm:"not null"`
	Size         int64  `gorm:"not null;check:size >= 0"`

	AccountID uint    `gorm:"not null;index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	Tags []*Tag `gorm:"many2many:images_tags;"`
}

// TagIDs 返回图片当前关联的标签 ID 集合
func (i *Image) TagIDs() []uint {
	ids := make([]uint, len(i.Tags))
	for n, tag := range i.Tags {
		ids[n] = tag.ID
	}
	return ids
}
