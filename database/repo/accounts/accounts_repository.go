package accounts

import (
	"context"
	"fmt"
	"log"

	"github.com/calyx/image-service/database/models"
	"github.com/calyx/image-service/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 账户仓库 - 封装所有账户相关的数据库操作
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的账户仓库
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

// FindByID 通过ID获取账户
func (r *Repository) FindByID(id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.Preload("Roles").First(&account, id).Error
	return &account, err
}

// FindByUsername 通过登录名获取账户
func (r *Repository) FindByUsername(username string) (*models.Account, error) {
	var account models.Account
	err := r.db.Preload("Roles").Where("username = ?", username).First(&account).Error
	return &account, err
}

// FindAll 获取全部账户
func (r *Repository) FindAll() ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.Order("id asc").Find(&accounts).Error
	return accounts, err
}

// UsernameExists 检查登录名是否已被占用
func (r *Repository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Create 创建账户并关联角色
// 角色实体只建立关联关系，不会被修改
func (r *Repository) Create(account *models.Account, roles []*models.Role) error {
	if err := r.db.Omit(clause.Associations).Create(account).Error; err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}
	return r.db.Model(account).Omit("Roles.*").Association("Roles").Replace(roles)
}

// Save 保存账户
func (r *Repository) Save(account *models.Account) error {
	return r.db.Omit(clause.Associations).Save(account).Error
}

// DeleteByID 删除账户（软删除），同时清除角色关联
func (r *Repository) DeleteByID(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&account).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
}

// FindRoleByName 通过名称获取角色
func (r *Repository) FindRoleByName(name string) (*models.Role, error) {
	var role models.Role
	err := r.db.Where("name = ?", name).First(&role).Error
	return &role, err
}

// EnsureDefaultRoles 确保内置角色存在
func (r *Repository) EnsureDefaultRoles() error {
	for _, name := range []string{models.RoleUser, models.RoleAdmin} {
		var count int64
		if err := r.db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role %q: %w", name, err)
		}
		if count == 0 {
			if err := r.db.Create(&models.Role{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to create role %q: %w", name, err)
			}
			log.Printf("Created default role %q", name)
		}
	}
	return nil
}

// CreateDefaultAdminAccount 创建默认管理员账户
// 返回生成的初始密码，让调用者决定如何展示
func (r *Repository) CreateDefaultAdminAccount() (string, error) {
	exists, err := r.UsernameExists("admin")
	if err != nil {
		return "", fmt.Errorf("failed to check admin account existence: %w", err)
	}
	if exists {
		return "", nil
	}

	randomPassword, err := utils.GenerateRandomToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(randomPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash default password: %w", err)
	}

	adminRole, err := r.FindRoleByName(models.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("failed to look up admin role: %w", err)
	}

	account := &models.Account{
		DisplayName: "Administrator",
		Username:    "admin",
		Password:    string(hashedPassword),
	}
	if err := r.Create(account, []*models.Role{adminRole}); err != nil {
		return "", fmt.Errorf("failed to create default admin account: %w", err)
	}

	return randomPassword, nil
}
