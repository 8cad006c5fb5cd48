package accounts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/calyx/image-service/database"
	"github.com/calyx/image-service/database/models"
	accountsRepo "github.com/calyx/image-service/database/repo/accounts"
	"github.com/calyx/image-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testProvider 测试数据库提供者
type testProvider struct {
	db *gorm.DB
}

func (p *testProvider) DB() *gorm.DB { return p.db }

func (p *testProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *testProvider) Transaction(fn database.TxFunc) error {
	return p.db.Transaction(fn)
}

func (p *testProvider) TransactionWithContext(ctx context.Context, fn database.TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *testProvider) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

func (p *testProvider) SQLDB() (*sql.DB, error) { return p.db.DB() }

func (p *testProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (p *testProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *testProvider) Name() string { return "sqlite" }

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Role{}))

	repo := accountsRepo.NewRepository(db)
	require.NoError(t, repo.EnsureDefaultRoles())

	return NewService(&testProvider{db: db}, repo), db
}

// --- 测试账户注册 ---

// TestService_Register 注册成功，密码被散列，默认角色为 user
func TestService_Register(t *testing.T) {
	svc, _ := setupService(t)

	account, err := svc.Register(context.Background(), RegisterInput{
		DisplayName: "Alice",
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "alice", account.Username)

	// 密码以 bcrypt 散列存储
	assert.NotEqual(t, "correct horse battery", account.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("correct horse battery")))

	assert.Equal(t, models.RoleUser, account.PrimaryRole())
}

// TestService_Register_DuplicateUsername 用户名冲突返回 AccountAlreadyExistsError
func TestService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "password-one"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "password-two"})
	require.Error(t, err)

	var existsErr *apperrors.AccountAlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "alice", existsErr.Username)
	assert.True(t, apperrors.IsConflict(err))
}

// --- 测试账户查询与更新 ---

// TestService_FindByID_NotFound 不存在的账户返回 AccountNotFoundError
func TestService_FindByID_NotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.FindByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// TestService_Update 更新展示字段，不触碰密码
func TestService_Update(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "password-one"})
	require.NoError(t, err)
	originalHash := account.Password

	updated, err := svc.Update(ctx, account.ID, UpdateInput{
		DisplayName: "Alice Cooper",
		Email:       "alice@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.DisplayName)
	assert.Equal(t, "alice@example.org", updated.Email)
	assert.Equal(t, originalHash, updated.Password)
}

// TestService_Delete 删除后账户不可见
func TestService_Delete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "password-one"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, account.ID))

	_, err = svc.FindByID(ctx, account.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
