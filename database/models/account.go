package models

import "gorm.io/gorm"

type Account struct {
	gorm.Model
	DisplayName string `gorm:"type:varchar(100)"`
	Username    string `gorm:"uniqueIndex;not null"`
	Email       string `gorm:"type:varchar(255)"`
	Password    string `gorm:"not null" json:"-"`

	Images []*Image `gorm:"foreignKey:AccountID"`
	Roles  []*Role  `gorm:"many2many:accounts_roles;"`
}

// PrimaryRole 返回账户的最高权限角色名，无角色时回落为 user
func (a *Account) PrimaryRole() string {
	for _, role := range a.Roles {
		if role.Name == RoleAdmin {
			return RoleAdmin
		}
	}
	return RoleUser
}
