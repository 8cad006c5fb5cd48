package models

import "gorm.io/gorm"

// 角色名称常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Role struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null"`
}
