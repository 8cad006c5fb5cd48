package images

import (
	"testing"

	"github.com/calyx/image-service/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Account{}, &models.Role{}, &models.Tag{}, &models.Image{})
	require.NoError(t, err)

	return db
}

// seedQueryFixtures 写入两个账户、三个标签和四张图片
//
//	alice: cat.png (png, 100, tags: animals+favorites), dog.jpg (jpeg, 200, tags: animals)
//	bob:   cat.png (png, 100, 无标签), report.pdf (pdf, 300, tags: work)
func seedQueryFixtures(t *testing.T, db *gorm.DB) (alice, bob models.Account, animals, favorites, work models.Tag) {
	alice = models.Account{Username: "alice", Password: "x"}
	bob = models.Account{Username: "bob", Password: "x"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	animals = models.Tag{Name: "animals"}
	favorites = models.Tag{Name: "favorites"}
	work = models.Tag{Name: "work"}
	require.NoError(t, db.Create(&animals).Error)
	require.NoError(t, db.Create(&favorites).Error)
	require.NoError(t, db.Create(&work).Error)

	images := []*models.Image{
		{OriginalName: "cat.png", ContentType: "image/png", Size: 100, AccountID: alice.ID, Tags: []*models.Tag{&animals, &favorites}},
		{OriginalName: "dog.jpg", ContentType: "image/jpeg", Size: 200, AccountID: alice.ID, Tags: []*models.Tag{&animals}},
		{OriginalName: "cat.png", ContentType: "image/png", Size: 100, AccountID: bob.ID},
		{OriginalName: "report.pdf", ContentType: "application/pdf", Size: 300, AccountID: bob.ID, Tags: []*models.Tag{&work}},
	}
	for _, img := range images {
		require.NoError(t, db.Create(img).Error)
	}
	return
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
func int64Ptr(v int64) *int64 { return &v }

// --- 测试谓词组合 ---

// TestQueryImages_EmptyFilter 空过滤条件返回全部图片
func TestQueryImages_EmptyFilter(t *testing.T) {
	db := setupTestDB(t)
	seedQueryFixtures(t, db)
	repo := NewRepository(db)

	list, total, err := repo.QueryImages(Filter{}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, list, 4)
}

// TestQueryImages_SingleFieldFilters 单字段等值过滤
func TestQueryImages_SingleFieldFilters(t *testing.T) {
	db := setupTestDB(t)
	alice, _, _, _, _ := seedQueryFixtures(t, db)
	repo := NewRepository(db)

	// 按拥有者
	list, total, err := repo.QueryImages(Filter{OwnerID: uintPtr(alice.ID)}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, img := range list {
		assert.Equal(t, alice.ID, img.AccountID)
	}

	// 按原始文件名（精确匹配，两个账户各有一张 cat.png）
	_, total, err = repo.QueryImages(Filter{OriginalName: strPtr("cat.png")}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// 按内容类型
	_, total, err = repo.QueryImages(Filter{ContentType: strPtr("image/jpeg")}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// 按大小（严格等值，不是范围）
	_, total, err = repo.QueryImages(Filter{Size: int64Ptr(100)}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = repo.QueryImages(Filter{Size: int64Ptr(150)}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

// TestQueryImages_TagMembership 标签过滤是成员测试而非全包含
func TestQueryImages_TagMembership(t *testing.T) {
	db := setupTestDB(t)
	_, _, animals, favorites, work := seedQueryFixtures(t, db)
	repo := NewRepository(db)

	// 关联任一给定标签即命中
	list, total, err := repo.QueryImages(Filter{TagIDs: []uint{animals.ID, work.ID}}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)

	// 同一图片命中多个标签时只出现一次
	list, total, err = repo.QueryImages(Filter{TagIDs: []uint{animals.ID, favorites.ID}}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	seen := map[uint]int{}
	for _, img := range list {
		seen[img.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "image %d returned more than once", id)
	}
}

// TestQueryImages_CombinedFilters 多条件 AND 组合
func TestQueryImages_CombinedFilters(t *testing.T) {
	db := setupTestDB(t)
	alice, _, animals, _, work := seedQueryFixtures(t, db)
	repo := NewRepository(db)

	filter := Filter{
		OwnerID:     uintPtr(alice.ID),
		ContentType: strPtr("image/png"),
		TagIDs:      []uint{animals.ID, work.ID},
	}
	list, total, err := repo.QueryImages(filter, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "cat.png", list[0].OriginalName)
	assert.Equal(t, alice.ID, list[0].AccountID)
}

// TestQueryImages_PreloadsTags 查询结果带出标签关联
func TestQueryImages_PreloadsTags(t *testing.T) {
	db := setupTestDB(t)
	alice, _, _, _, _ := seedQueryFixtures(t, db)
	repo := NewRepository(db)

	list, _, err := repo.QueryImages(Filter{OwnerID: uintPtr(alice.ID), OriginalName: strPtr("cat.png")}, Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Tags, 2)
}

// --- 测试分页与排序 ---

// TestQueryImages_Pagination 分页切页与总数统计
func TestQueryImages_Pagination(t *testing.T) {
	db := setupTestDB(t)
	seedQueryFixtures(t, db)
	repo := NewRepository(db)

	p := Pagination{Page: 1, Limit: 3, Sort: "id", Order: "asc"}
	page1, total, err := repo.QueryImages(Filter{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page1, 3)

	p.Page = 2
	page2, total, err := repo.QueryImages(Filter{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page2, 1)

	// 两页之间无重复
	assert.NotContains(t, []uint{page1[0].ID, page1[1].ID, page1[2].ID}, page2[0].ID)
}

// TestQueryImages_SortWhitelist 非法排序字段被拒绝
func TestQueryImages_SortWhitelist(t *testing.T) {
	db := setupTestDB(t)
	seedQueryFixtures(t, db)
	repo := NewRepository(db)

	_, _, err := repo.QueryImages(Filter{}, Pagination{Page: 1, Limit: 10, Sort: "password; drop table images"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedSort)

	// 合法字段按降序排序
	list, _, err := repo.QueryImages(Filter{}, Pagination{Page: 1, Limit: 10, Sort: "size", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.EqualValues(t, 300, list[0].Size)
}
