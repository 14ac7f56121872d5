package mysql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cognikit/cognikit/internal/asset/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Asset{}))
	return gdb
}

func newTestRepo(t *testing.T, batchSize int) (*assetRepository, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	return &assetRepository{db: gdb, batchSize: batchSize}, gdb
}

func stockRecord(symbol, name string) domain.AssetRecord {
	return domain.AssetRecord{
		Symbol: symbol,
		Name:   name,
		Type:   domain.TypeStock,
		Market: domain.MarketCN,
	}
}

func TestUpsertManyInsertsNewRows(t *testing.T) {
	repo, gdb := newTestRepo(t, defaultBatchSize)

	err := repo.UpsertMany(context.Background(), []domain.AssetRecord{
		stockRecord("600519", "贵州茅台"),
		stockRecord("000001", "平安银行"),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, gdb.Model(&domain.Asset{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpsertManyIsIdempotent(t *testing.T) {
	repo, gdb := newTestRepo(t, defaultBatchSize)
	ctx := context.Background()

	require.NoError(t, repo.UpsertMany(ctx, []domain.AssetRecord{stockRecord("600519", "贵州茅台")}))

	var first domain.Asset
	require.NoError(t, gdb.Where("symbol = ?", "600519").First(&first).Error)

	// 同一自然键重复同步：更新可变字段，不新增行，代理键保持不变
	require.NoError(t, repo.UpsertMany(ctx, []domain.AssetRecord{stockRecord("600519", "贵州茅台A")}))

	var count int64
	require.NoError(t, gdb.Model(&domain.Asset{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var second domain.Asset
	require.NoError(t, gdb.Where("symbol = ?", "600519").First(&second).Error)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "贵州茅台A", second.Name)
}

func TestUpsertManyDuplicateKeyInOneRun(t *testing.T) {
	repo, gdb := newTestRepo(t, defaultBatchSize)

	// 同一次写入内同一自然键出现两次：恰好一行，后值生效
	err := repo.UpsertMany(context.Background(), []domain.AssetRecord{
		stockRecord("600519", "first"),
		stockRecord("600519", "second"),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, gdb.Model(&domain.Asset{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var asset domain.Asset
	require.NoError(t, gdb.Where("symbol = ?", "600519").First(&asset).Error)
	assert.Equal(t, "second", asset.Name)
}

func TestUpsertManySameSymbolDifferentMarkets(t *testing.T) {
	repo, gdb := newTestRepo(t, defaultBatchSize)

	hk := stockRecord("000001", "某港股")
	hk.Market = domain.MarketHK
	err := repo.UpsertMany(context.Background(), []domain.AssetRecord{
		stockRecord("000001", "平安银行"),
		hk,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, gdb.Model(&domain.Asset{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpsertManySplitsIntoBatches(t *testing.T) {
	repo, gdb := newTestRepo(t, 2)

	var batches int
	err := gdb.Callback().Create().Before("gorm:create").Register("test:count_batches", func(tx *gorm.DB) {
		batches++
	})
	require.NoError(t, err)

	records := make([]domain.AssetRecord, 5)
	for i := range records {
		records[i] = stockRecord(fmt.Sprintf("60%04d", i), "test")
	}
	require.NoError(t, repo.UpsertMany(context.Background(), records))

	assert.Equal(t, 3, batches)

	var count int64
	require.NoError(t, gdb.Model(&domain.Asset{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestUpsertManyKeepsCommittedBatchesOnFailure(t *testing.T) {
	repo, gdb := newTestRepo(t, 2)

	var batches int
	err := gdb.Callback().Create().Before("gorm:create").Register("test:fail_third_batch", func(tx *gorm.DB) {
		batches++
		if batches == 3 {
			_ = tx.AddError(errors.New("simulated batch failure"))
		}
	})
	require.NoError(t, err)

	records := make([]domain.AssetRecord, 6)
	for i := range records {
		records[i] = stockRecord(fmt.Sprintf("60%04d", i), "test")
	}
	err = repo.UpsertMany(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2")

	// 前两批已各自提交，失败批次回滚
	var count int64
	require.NoError(t, gdb.Model(&domain.Asset{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestUpsertManyEmptyInput(t *testing.T) {
	repo, _ := newTestRepo(t, defaultBatchSize)
	assert.NoError(t, repo.UpsertMany(context.Background(), nil))
}

func TestSearch(t *testing.T) {
	repo, _ := newTestRepo(t, defaultBatchSize)
	ctx := context.Background()

	pinyin := "gzmt"
	moutai := stockRecord("600519", "贵州茅台")
	moutai.PinyinInitial = &pinyin
	require.NoError(t, repo.UpsertMany(ctx, []domain.AssetRecord{
		moutai,
		stockRecord("000001", "平安银行"),
	}))

	t.Run("by symbol", func(t *testing.T) {
		assets, err := repo.Search(ctx, domain.SearchParams{Query: "600519"})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "贵州茅台", assets[0].Name)
	})

	t.Run("by name fragment", func(t *testing.T) {
		assets, err := repo.Search(ctx, domain.SearchParams{Query: "平安"})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "000001", assets[0].Symbol)
	})

	t.Run("by pinyin initial", func(t *testing.T) {
		assets, err := repo.Search(ctx, domain.SearchParams{Query: "gzmt"})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "600519", assets[0].Symbol)
	})

	t.Run("type filter excludes other types", func(t *testing.T) {
		assets, err := repo.Search(ctx, domain.SearchParams{Query: "600519", Type: domain.TypeETF})
		require.NoError(t, err)
		assert.Empty(t, assets)
	})

	t.Run("no match", func(t *testing.T) {
		assets, err := repo.Search(ctx, domain.SearchParams{Query: "nonexistent"})
		require.NoError(t, err)
		assert.Empty(t, assets)
	})
}

func TestCountAndLastSyncedAt(t *testing.T) {
	repo, _ := newTestRepo(t, defaultBatchSize)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	lastSync, err := repo.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, lastSync)

	require.NoError(t, repo.UpsertMany(ctx, []domain.AssetRecord{stockRecord("600519", "贵州茅台")}))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	lastSync, err = repo.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.NotNil(t, lastSync)
}

func TestDedupeRecords(t *testing.T) {
	hk := stockRecord("600519", "hk listing")
	hk.Market = domain.MarketHK

	deduped := dedupeRecords([]domain.AssetRecord{
		stockRecord("600519", "first"),
		stockRecord("000001", "other"),
		stockRecord("600519", "second"),
		hk,
	})

	require.Len(t, deduped, 3)
	assert.Equal(t, "second", deduped[0].Name)
	assert.Equal(t, "other", deduped[1].Name)
	assert.Equal(t, domain.MarketHK, deduped[2].Market)
}

func TestChunkRecords(t *testing.T) {
	records := make([]domain.AssetRecord, 5)

	chunks := chunkRecords(records, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 2)
	assert.Len(t, chunks[2], 1)

	assert.Len(t, chunkRecords(records, 10), 1)
	assert.Empty(t, chunkRecords(nil, 2))
}
