package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cognikit/cognikit/internal/asset/domain"
)

const (
	// 单批写入的记录数上限，控制单个事务的大小
	defaultBatchSize = 1000
	// 单批事务超时
	batchTxTimeout = 30 * time.Second
	// 搜索结果默认条数
	defaultSearchLimit = 20
)

type assetRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(db *gorm.DB) domain.Repository {
	return &assetRepository{db: db, batchSize: defaultBatchSize}
}

// UpsertMany 以 (market, symbol) 为键批量写入。分批顺序提交，
// 冲突时仅覆盖可变字段并刷新 last_synced_at，不产生重复行。
// 输入内同键重复先行去重（后值生效）：postgres 的 ON CONFLICT
// 不允许一条 INSERT 两次命中同一行。
func (r *assetRepository) UpsertMany(ctx context.Context, records []domain.AssetRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	for i, batch := range chunkRecords(dedupeRecords(records), r.batchSize) {
		rows := make([]domain.Asset, 0, len(batch))
		for _, rec := range batch {
			rows = append(rows, domain.Asset{
				ID:            uuid.New().String(),
				Symbol:        rec.Symbol,
				Name:          rec.Name,
				Type:          rec.Type,
				Market:        rec.Market,
				Exchange:      rec.Exchange,
				IndexType:     rec.IndexType,
				FundCompany:   rec.FundCompany,
				FundType:      rec.FundType,
				PinyinInitial: rec.PinyinInitial,
				PinyinFull:    rec.PinyinFull,
				LastSyncedAt:  &now,
			})
		}

		txCtx, cancel := context.WithTimeout(ctx, batchTxTimeout)
		err := r.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
			return tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "market"}, {Name: "symbol"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "exchange", "index_type", "fund_company",
					"fund_type", "pinyin_initial", "pinyin_full",
					"last_synced_at", "updated_at",
				}),
			}).Create(&rows).Error
		})
		cancel()
		if err != nil {
			return fmt.Errorf("upsert batch %d failed: %w", i, err)
		}
	}

	return nil
}

func (r *assetRepository) Search(ctx context.Context, params domain.SearchParams) ([]*domain.Asset, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	pattern := "%" + params.Query + "%"
	query := r.db.WithContext(ctx).
		Where(
			r.db.Where("symbol LIKE ?", pattern).
				Or("name LIKE ?", pattern).
				Or("pinyin_initial LIKE ?", pattern).
				Or("pinyin_full LIKE ?", pattern).
				Or("fund_company LIKE ?", pattern),
		)

	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Market != "" {
		query = query.Where("market = ?", params.Market)
	}

	var assets []*domain.Asset
	err := query.Order("symbol asc").Limit(limit).Find(&assets).Error
	return assets, err
}

func (r *assetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindByMarketSymbol(ctx context.Context, market domain.Market, symbol string) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.WithContext(ctx).Where("market = ? AND symbol = ?", market, symbol).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Asset{}).Count(&count).Error
	return count, err
}

func (r *assetRepository) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	var asset domain.Asset
	err := r.db.WithContext(ctx).
		Where("last_synced_at IS NOT NULL").
		Order("last_synced_at desc").
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return asset.LastSyncedAt, nil
}

// dedupeRecords 按 (market, symbol) 去重，保留首次出现的位置与最后一次出现的值
func dedupeRecords(records []domain.AssetRecord) []domain.AssetRecord {
	type key struct {
		market domain.Market
		symbol string
	}

	seen := make(map[key]int, len(records))
	deduped := make([]domain.AssetRecord, 0, len(records))
	for _, rec := range records {
		k := key{market: rec.Market, symbol: rec.Symbol}
		if idx, ok := seen[k]; ok {
			deduped[idx] = rec
			continue
		}
		seen[k] = len(deduped)
		deduped = append(deduped, rec)
	}
	return deduped
}

// chunkRecords 将记录切分为大小不超过 size 的批次
func chunkRecords(records []domain.AssetRecord, size int) [][]domain.AssetRecord {
	if size <= 0 {
		size = defaultBatchSize
	}
	chunks := make([][]domain.AssetRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
