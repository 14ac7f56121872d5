package domain

import (
	"strings"

	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
)

// parseMarket 解析市场字符串。大小写不敏感地匹配 HK/US，
// 其余值（含缺省）一律归为 CN。下游自然键依赖该默认行为。
func parseMarket(market string) assetdomain.Market {
	switch strings.ToUpper(market) {
	case "HK":
		return assetdomain.MarketHK
	case "US":
		return assetdomain.MarketUS
	default:
		return assetdomain.MarketCN
	}
}

// ParseBaseAsset 归一化 A股/指数/ETF/LOF 数据项
func ParseBaseAsset(item BaseItem, category Category) assetdomain.AssetRecord {
	return assetdomain.AssetRecord{
		Symbol: item.Symbol,
		Name:   item.Name,
		Type:   assetdomain.AssetType(category),
		Market: parseMarket(item.Market),
	}
}

// ParseFundAsset 归一化场外基金数据项。基金全部为境内标的，市场固定为 CN；
// fundType 为空白时置空
func ParseFundAsset(item FundItem) assetdomain.AssetRecord {
	var fundType *assetdomain.FundType
	if strings.TrimSpace(item.FundType) != "" {
		ft := assetdomain.FundType(item.FundType)
		fundType = &ft
	}

	var pinyinInitial, pinyinFull *string
	if item.PinyinInitial != "" {
		pinyinInitial = &item.PinyinInitial
	}
	if item.PinyinFull != "" {
		pinyinFull = &item.PinyinFull
	}

	return assetdomain.AssetRecord{
		Symbol:        item.Symbol,
		Name:          item.Name,
		Type:          assetdomain.TypeOFund,
		Market:        assetdomain.MarketCN,
		FundType:      fundType,
		PinyinInitial: pinyinInitial,
		PinyinFull:    pinyinFull,
	}
}
