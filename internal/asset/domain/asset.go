package domain

import (
	"time"
)

// AssetType 资产类型
type AssetType string

const (
	TypeStock AssetType = "STOCK"
	TypeIndex AssetType = "INDEX"
	TypeETF   AssetType = "ETF"
	TypeLOF   AssetType = "LOF"
	TypeOFund AssetType = "OFUND"
)

// Market 市场
type Market string

const (
	MarketCN Market = "CN"
	MarketHK Market = "HK"
	MarketUS Market = "US"
)

// FundType 基金类型（仅 OFUND 有意义）
type FundType string

const (
	FundMoney FundType = "MONEY"
	FundBond  FundType = "BOND"
	FundMixed FundType = "MIXED"
	FundStock FundType = "STOCK"
	FundQDII  FundType = "QDII"
	FundREIT  FundType = "REIT"
)

// Asset 投资标的。(market, symbol) 为自然键，id 为首次插入时分配的代理键。
type Asset struct {
	ID            string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Symbol        string     `gorm:"column:symbol;type:varchar(20);uniqueIndex:idx_market_symbol;not null" json:"symbol"`
	Name          string     `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Type          AssetType  `gorm:"column:type;type:varchar(10);not null" json:"type"`
	Market        Market     `gorm:"column:market;type:varchar(5);uniqueIndex:idx_market_symbol;not null" json:"market"`
	Exchange      *string    `gorm:"column:exchange;type:varchar(20)" json:"exchange"`
	IndexType     *string    `gorm:"column:index_type;type:varchar(20)" json:"indexType"`
	FundCompany   *string    `gorm:"column:fund_company;type:varchar(100)" json:"fundCompany"`
	FundType      *FundType  `gorm:"column:fund_type;type:varchar(10)" json:"fundType"`
	PinyinInitial *string    `gorm:"column:pinyin_initial;type:varchar(50)" json:"pinyinInitial"`
	PinyinFull    *string    `gorm:"column:pinyin_full;type:varchar(200)" json:"pinyinFull"`
	LastSyncedAt  *time.Time `gorm:"column:last_synced_at" json:"lastSyncedAt"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (Asset) TableName() string {
	return "assets"
}

// AssetRecord 同步写入资产时的载荷，携带自然键与可变字段
type AssetRecord struct {
	Symbol        string
	Name          string
	Type          AssetType
	Market        Market
	Exchange      *string
	IndexType     *string
	FundCompany   *string
	FundType      *FundType
	PinyinInitial *string
	PinyinFull    *string
}
