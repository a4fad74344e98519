package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tcg-nakama/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Banner{},
		&model.ProductCost{},
		&model.ProductGrade{},
		&model.SearchLog{},
		&model.PriceSnapshot{},
		&model.SystemSetting{},
	))
	return db
}

func TestBannerCRUDAndOrdering(t *testing.T) {
	repo := NewBannerRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Banner{Title: "Second", DisplayOrder: 2, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Banner{Title: "First", DisplayOrder: 1, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Banner{Title: "Hidden", DisplayOrder: 0, IsActive: false}))

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "First", active[0].Title)
	assert.Equal(t, "Second", active[1].Title)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	banner := all[0]
	banner.Title = "Renamed"
	require.NoError(t, repo.Update(ctx, &banner))

	found, err := repo.FindByID(ctx, banner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)

	require.NoError(t, repo.Delete(ctx, banner.ID))
	_, err = repo.FindByID(ctx, banner.ID)
	assert.Error(t, err)
}

func TestCostSetIsUpsert(t *testing.T) {
	repo := NewCostRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "p1", 10000))
	require.NoError(t, repo.Set(ctx, "p1", 12000))
	require.NoError(t, repo.Set(ctx, "p2", 500))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12000.0, *got)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"p1": 12000, "p2": 500}, all)
}

func TestGradeSetIsUpsert(t *testing.T) {
	repo := NewGradeRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "p1", "B"))
	require.NoError(t, repo.Set(ctx, "p1", "S"))

	grade, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "S", grade)

	none, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p1": "S"}, all)
}

func TestSearchLogTrending(t *testing.T) {
	repo := NewSearchLogRepository(testDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Log(ctx, "Charizard", 5))
	}
	require.NoError(t, repo.Log(ctx, "  pikachu  ", 2))
	require.NoError(t, repo.Log(ctx, "pikachu", 2))
	require.NoError(t, repo.Log(ctx, "mewtwo", 0))

	rows, err := repo.Trending(ctx, time.Now().Add(-time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "charizard", rows[0].Query, "queries are normalized to lowercase")
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, "pikachu", rows[1].Query)
	assert.Equal(t, 2, rows[1].Count)
}

func TestSearchLogTrendingWindowExcludesOld(t *testing.T) {
	db := testDB(t)
	repo := NewSearchLogRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.SearchLog{
		Query:      "ancient",
		SearchedAt: time.Now().AddDate(0, -2, 0),
	}).Error)
	require.NoError(t, repo.Log(ctx, "recent", 1))

	rows, err := repo.Trending(ctx, time.Now().AddDate(0, 0, -30), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "recent", rows[0].Query)
}

func TestSnapshotLatestForProduct(t *testing.T) {
	repo := NewSnapshotRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.PriceSnapshot{
		ProductID: "p1", MarketUSD: 100, MarketJPY: 15000,
		RecordedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &model.PriceSnapshot{
		ProductID: "p1", MarketUSD: 120, MarketJPY: 18000,
		RecordedAt: time.Now(),
	}))
	require.NoError(t, repo.Create(ctx, &model.PriceSnapshot{
		ProductID: "p2", MarketUSD: 50, MarketJPY: 7500,
		RecordedAt: time.Now(),
	}))

	latest, err := repo.LatestForProduct(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 120.0, latest.MarketUSD)

	_, err = repo.LatestForProduct(ctx, "unknown")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	since, err := repo.RecordedSince(ctx, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestSettingGetSetAndFallback(t *testing.T) {
	repo := NewSettingRepository(testDB(t))
	ctx := context.Background()

	value, err := repo.Get(ctx, "missing", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", value)

	require.NoError(t, repo.Set(ctx, SettingUpdateFrequency, "daily"))
	require.NoError(t, repo.Set(ctx, SettingUpdateFrequency, "weekly"))

	value, err = repo.Get(ctx, SettingUpdateFrequency, "daily")
	require.NoError(t, err)
	assert.Equal(t, "weekly", value)
}

func TestSettingSetAll(t *testing.T) {
	repo := NewSettingRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SetAll(ctx, map[string]string{
		SettingTrackerLastTotal:   "120",
		SettingTrackerLastUpdated: "118",
	}))

	total, err := repo.Get(ctx, SettingTrackerLastTotal, "")
	require.NoError(t, err)
	assert.Equal(t, "120", total)

	updated, err := repo.Get(ctx, SettingTrackerLastUpdated, "")
	require.NoError(t, err)
	assert.Equal(t, "118", updated)
}
