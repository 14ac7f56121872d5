package domain

import (
	"context"
	"time"
)

// SearchParams 资产搜索参数
type SearchParams struct {
	// 搜索关键词，匹配代码、名称、拼音、基金公司
	Query string
	// 资产类型过滤
	Type AssetType
	// 市场过滤
	Market Market
	// 返回数量限制
	Limit int
}

// Repository 资产仓储接口
type Repository interface {
	// UpsertMany 以 (market, symbol) 为键批量写入资产。
	// 记录按固定大小分批，每批在独立事务中顺序提交；任一批失败时整体返回错误，
	// 已提交的批次不回滚。
	UpsertMany(ctx context.Context, records []AssetRecord) error

	// Search 按关键词搜索资产
	Search(ctx context.Context, params SearchParams) ([]*Asset, error)

	// FindByID 按代理键查询
	FindByID(ctx context.Context, id string) (*Asset, error)

	// FindByMarketSymbol 按自然键查询
	FindByMarketSymbol(ctx context.Context, market Market, symbol string) (*Asset, error)

	// Count 统计资产总数
	Count(ctx context.Context) (int64, error)

	// LastSyncedAt 返回最近一次同步触达的时间，无记录时返回 nil
	LastSyncedAt(ctx context.Context) (*time.Time, error)
}
