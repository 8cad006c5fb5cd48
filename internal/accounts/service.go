package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/calyx/image-service/database"
	"github.com/calyx/image-service/database/models"
	accountsRepo "github.com/calyx/image-service/database/repo/accounts"
	"github.com/calyx/image-service/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput 账户注册字段
type RegisterInput struct {
	DisplayName string
	Username    string
	Email       string
	Password    string
}

// UpdateInput 账户可更新字段（不含密码和角色）
type UpdateInput struct {
	DisplayName string
	Email       string
}

// Service 账户服务层
type Service struct {
	provider database.Provider
	accounts *accountsRepo.Repository
}

// NewService 创建新的账户服务
func NewService(provider database.Provider, accounts *accountsRepo.Repository) *Service {
	return &Service{
		provider: provider,
		accounts: accounts,
	}
}

// Register 注册新账户，用户名冲突时返回 AccountAlreadyExistsError
// 默认授予 user 角色
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	var created *models.Account

	err := s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		repo := s.accounts.WithTx(tx)

		exists, err := repo.UsernameExists(input.Username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return &apperrors.AccountAlreadyExistsError{Username: input.Username}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		role, err := repo.FindRoleByName(models.RoleUser)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperrors.RoleNotFoundError{Name: models.RoleUser}
			}
			return err
		}

		account := &models.Account{
			DisplayName: input.DisplayName,
			Username:    input.Username,
			Email:       input.Email,
			Password:    string(hash),
		}
		if err := repo.Create(account, []*models.Role{role}); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		account.Roles = []*models.Role{role}
		created = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByID 按 ID 获取账户
func (s *Service) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	account, err := s.accounts.WithContext(ctx).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.AccountNotFoundError{AccountID: id}
		}
		return nil, err
	}
	return account, nil
}

// FindAll 获取全部账户
func (s *Service) FindAll(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.WithContext(ctx).FindAll()
}

// Update 更新账户的展示字段，不触碰密码和角色
func (s *Service) Update(ctx context.Context, id uint, input UpdateInput) (*models.Account, error) {
	var updated *models.Account

	err := s.provider.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		repo := s.accounts.WithTx(tx)

		account, err := repo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperrors.AccountNotFoundError{AccountID: id}
			}
			return err
		}

		account.DisplayName = input.DisplayName
		account.Email = input.Email
		if err := repo.Save(account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 按 ID 删除账户
func (s *Service) Delete(ctx context.Context, id uint) error {
	_, err := s.accounts.WithContext(ctx).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperrors.AccountNotFoundError{AccountID: id}
		}
		return err
	}
	return s.accounts.WithContext(ctx).DeleteByID(id)
}
