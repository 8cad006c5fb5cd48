package images

import (
	"context"
	"database/sql"
	"testing"

	"github.com/calyx/image-service/cache"
	"github.com/calyx/image-service/cache/memory"
	"github.com/calyx/image-service/database"
	"github.com/calyx/image-service/database/models"
	accountsRepo "github.com/calyx/image-service/database/repo/accounts"
	imagesRepo "github.com/calyx/image-service/database/repo/images"
	tagsRepo "github.com/calyx/image-service/database/repo/tags"
	"github.com/calyx/image-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testProvider 测试数据库提供者
type testProvider struct {
	db *gorm.DB
}

func (p *testProvider) DB() *gorm.DB {
	return p.db
}

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

func (p *testProvider) SQLDB() (*sql.DB, error) {
	return p.db.DB()
}

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

func (p *testProvider) Name() string {
	return "sqlite"
}

// setupService 创建完整的测试服务栈
func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Role{}, &models.Tag{}, &models.Image{}))

	provider := &testProvider{db: db}
	svc := NewService(
		provider,
		accountsRepo.NewRepository(db),
		imagesRepo.NewRepository(db),
		tagsRepo.NewRepository(db),
		nil,
	)
	return svc, db
}

// setupServiceWithCache 创建带内存缓存的测试服务栈
func setupServiceWithCache(t *testing.T) (*Service, *gorm.DB, *cache.Helper) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Role{}, &models.Tag{}, &models.Image{}))

	provider, err := memory.NewMemory(memory.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	helper := cache.NewHelper(provider, cache.DefaultImageMetaTTL)

	svc := NewService(
		&testProvider{db: db},
		accountsRepo.NewRepository(db),
		imagesRepo.NewRepository(db),
		tagsRepo.NewRepository(db),
		helper,
	)
	return svc, db, helper
}

func seedAccount(t *testing.T, db *gorm.DB, username string) models.Account {
	account := models.Account{Username: username, Password: "x"}
	require.NoError(t, db.Create(&account).Error)
	return account
}

func seedTag(t *testing.T, db *gorm.DB, name string) models.Tag {
	tag := models.Tag{Name: name}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

// --- 测试图片生命周期 ---

// TestService_CreateAndGet 创建后读取，字段和标签往返一致
func TestService_CreateAndGet(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")
	animals := seedTag(t, db, "animals")
	favorites := seedTag(t, db, "favorites")

	created, err := svc.Create(ctx, account.ID, ImageInput{
		OriginalName: "cat.png",
		ContentType:  "image/png",
		Size:         1024,
		TagIDs:       []uint{animals.ID, favorites.ID},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	// 新建记录的创建与更新时间一致
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", got.OriginalName)
	assert.Equal(t, "image/png", got.ContentType)
	assert.EqualValues(t, 1024, got.Size)
	assert.ElementsMatch(t, []uint{animals.ID, favorites.ID}, got.TagIDs())
}

// TestService_CreateUnknownAccount 账户不存在时创建失败
func TestService_CreateUnknownAccount(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), 42, ImageInput{OriginalName: "x", ContentType: "image/png"})
	require.Error(t, err)

	var accErr *apperrors.AccountNotFoundError
	require.ErrorAs(t, err, &accErr)
	assert.EqualValues(t, 42, accErr.AccountID)
}

// TestService_CreateUnknownTags_NoPartialWrite 标签校验失败时不产生部分写入
func TestService_CreateUnknownTags_NoPartialWrite(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")
	animals := seedTag(t, db, "animals")

	_, err := svc.Create(ctx, account.ID, ImageInput{
		OriginalName: "cat.png",
		ContentType:  "image/png",
		TagIDs:       []uint{animals.ID, 999},
	})
	require.Error(t, err)

	var tagErr *apperrors.TagNotFoundError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, []uint{999}, tagErr.MissingIDs)

	// 事务回滚后没有残留的图片行
	var count int64
	require.NoError(t, db.Model(&models.Image{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// TestService_Update_ReplacesTagSetWholesale 更新时标签集合整体替换
func TestService_Update_ReplacesTagSetWholesale(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")
	t1 := seedTag(t, db, "one")
	t2 := seedTag(t, db, "two")
	t3 := seedTag(t, db, "three")

	created, err := svc.Create(ctx, account.ID, ImageInput{
		OriginalName: "cat.png",
		ContentType:  "image/png",
		TagIDs:       []uint{t1.ID, t2.ID},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, account.ID, created.ID, ImageInput{
		OriginalName: "cat-renamed.png",
		ContentType:  "image/png",
		Size:         2048,
		TagIDs:       []uint{t3.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "cat-renamed.png", updated.OriginalName)
	assert.Equal(t, []uint{t3.ID}, updated.TagIDs())

	// 关联表里旧标签的行已被移除
	got, err := svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{t3.ID}, got.TagIDs())
}

// TestService_Update_UnknownTagsKeepsOriginal 更新校验失败时原记录保持不变
func TestService_Update_UnknownTagsKeepsOriginal(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")
	t1 := seedTag(t, db, "one")

	created, err := svc.Create(ctx, account.ID, ImageInput{
		OriginalName: "cat.png",
		ContentType:  "image/png",
		TagIDs:       []uint{t1.ID},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, account.ID, created.ID, ImageInput{
		OriginalName: "changed.png",
		ContentType:  "image/png",
		TagIDs:       []uint{777},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsTagNotFound(err))

	got, err := svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", got.OriginalName)
	assert.Equal(t, []uint{t1.ID}, got.TagIDs())
}

// TestService_Get_ScopedToOwner 其他账户的图片在本账户作用域内不可见
func TestService_Get_ScopedToOwner(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	created, err := svc.Create(ctx, alice.ID, ImageInput{OriginalName: "cat.png", ContentType: "image/png"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob.ID, created.ID)
	require.Error(t, err)

	var imgErr *apperrors.ImageNotFoundError
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, created.ID, imgErr.ImageID)
	assert.Equal(t, bob.ID, imgErr.AccountID)
}

// TestService_List_OnlyOwnImages 列表只包含本账户的图片
func TestService_List_OnlyOwnImages(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, db, "alice")
	bob := seedAccount(t, db, "bob")

	_, err := svc.Create(ctx, alice.ID, ImageInput{OriginalName: "a.png", ContentType: "image/png"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, ImageInput{OriginalName: "b.png", ContentType: "image/png"})
	require.NoError(t, err)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a.png", list[0].OriginalName)
}

// TestService_Delete_Idempotent 删除不存在的图片是空操作
func TestService_Delete_Idempotent(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")

	created, err := svc.Create(ctx, account.ID, ImageInput{OriginalName: "cat.png", ContentType: "image/png"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, account.ID, created.ID))

	// 重复删除同样成功
	require.NoError(t, svc.Delete(ctx, account.ID, created.ID))

	_, err = svc.Get(ctx, account.ID, created.ID)
	require.Error(t, err)
}

// --- 测试搜索 ---

// TestService_Search_Defaults 分页参数缺省时使用默认值
func TestService_Search_Defaults(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		_, err := svc.Create(ctx, account.ID, ImageInput{OriginalName: name, ContentType: "image/png"})
		require.NoError(t, err)
	}

	result, err := svc.Search(ctx, Filter{}, Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 10, result.Limit)
	assert.Equal(t, 1, result.TotalPages)
	assert.Len(t, result.Images, 3)
}

// TestService_Search_TotalPages 总页数按上取整计算
func TestService_Search_TotalPages(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		_, err := svc.Create(ctx, account.ID, ImageInput{OriginalName: name, ContentType: "image/png"})
		require.NoError(t, err)
	}

	result, err := svc.Search(ctx, Filter{}, Pagination{Page: 1, Limit: 2, Sort: "id"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.Len(t, result.Images, 2)
}

// --- 测试缓存 ---

// TestService_Get_FillsCache 读取后缓存中有该图片的元数据
func TestService_Get_FillsCache(t *testing.T) {
	svc, db, helper := setupServiceWithCache(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")

	created, err := svc.Create(ctx, account.ID, ImageInput{OriginalName: "cat.png", ContentType: "image/png"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", got.OriginalName)

	var cached models.Image
	require.NoError(t, helper.GetCachedImage(ctx, account.ID, created.ID, &cached))
	assert.Equal(t, "cat.png", cached.OriginalName)
}

// TestService_Update_ReadAfterWriteNotStale 更新返回后立即读取看到新值，缓存不残留旧条目
func TestService_Update_ReadAfterWriteNotStale(t *testing.T) {
	svc, db, helper := setupServiceWithCache(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")

	created, err := svc.Create(ctx, account.ID, ImageInput{OriginalName: "old.png", ContentType: "image/png"})
	require.NoError(t, err)

	// 先读一次，确保缓存里有更新前的记录
	_, err = svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, account.ID, created.ID, ImageInput{OriginalName: "new.png", ContentType: "image/png"})
	require.NoError(t, err)

	// 更新返回时旧缓存条目必须已被删除
	var cached models.Image
	assert.ErrorIs(t, helper.GetCachedImage(ctx, account.ID, created.ID, &cached), cache.ErrCacheMiss)

	got, err := svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new.png", got.OriginalName)
}

// TestService_Delete_ReadAfterDeleteMisses 删除返回后读取不再命中缓存中的旧记录
func TestService_Delete_ReadAfterDeleteMisses(t *testing.T) {
	svc, db, helper := setupServiceWithCache(t)
	ctx := context.Background()
	account := seedAccount(t, db, "alice")

	created, err := svc.Create(ctx, account.ID, ImageInput{OriginalName: "cat.png", ContentType: "image/png"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, account.ID, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, account.ID, created.ID))

	var cached models.Image
	assert.ErrorIs(t, helper.GetCachedImage(ctx, account.ID, created.ID, &cached), cache.ErrCacheMiss)

	_, err = svc.Get(ctx, account.ID, created.ID)
	var imgErr *apperrors.ImageNotFoundError
	require.ErrorAs(t, err, &imgErr)
}
