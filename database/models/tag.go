package models

import "gorm.io/gorm"

// Tag 标签 - 多个图片共享，名称不要求唯一
type Tag struct {
	gorm.Model
	Name string `gorm:"not null;index"`

	Images []*Image `gorm:"many2many:images_tags;"`
}
