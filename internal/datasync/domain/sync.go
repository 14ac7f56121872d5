package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
)

// DurationMillis 运行时长，JSON 序列化为墙钟毫秒整数
type DurationMillis time.Duration

func (d DurationMillis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).Milliseconds())
}

// Category 同步数据源类别
type Category string

const (
	CategoryStock Category = "STOCK"
	CategoryIndex Category = "INDEX"
	CategoryETF   Category = "ETF"
	CategoryLOF   Category = "LOF"
	CategoryOFund Category = "OFUND"
)

// Categories 全量同步的类别顺序
var Categories = []Category{CategoryStock, CategoryIndex, CategoryETF, CategoryLOF, CategoryOFund}

// ParseCategory 解析类别名
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sync category: %q", s)
}

// BaseItem A股/指数/ETF/LOF 原始数据项
type BaseItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`
}

// FundItem 场外基金原始数据项，fundType 上游已转换为枚举值字符串
type FundItem struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	FundType      string `json:"fundType"`
	PinyinInitial string `json:"pinyinInitial,omitempty"`
	PinyinFull    string `json:"pinyinFull,omitempty"`
}

// BaseResponse Financial Data API 基础类别响应
type BaseResponse struct {
	Data  []BaseItem `json:"data"`
	Count int        `json:"count"`
}

// FundResponse Financial Data API 基金类别响应
type FundResponse struct {
	Data  []FundItem `json:"data"`
	Count int        `json:"count"`
}

// FetchResult 单个类别抓取并归一化后的结果
type FetchResult struct {
	// 归一化后的资产记录
	Records []assetdomain.AssetRecord
	// 上游报告的记录数
	Count int
}

// SourceClient 数据源客户端
type SourceClient interface {
	FetchCategory(ctx context.Context, category Category) (*FetchResult, error)
}

// CategoryResult 单个类别在一次运行中的结果
type CategoryResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// RunResult 一次全量同步运行的结果。
// Success 为 true 当且仅当至少一个类别抓取成功且写入未失败；
// Count 为实际进入写入步骤的记录数。
type RunResult struct {
	Success  bool                        `json:"success"`
	Count    int                         `json:"count"`
	Duration DurationMillis              `json:"duration"`
	Results  map[Category]CategoryResult `json:"results"`
}

// CategoryRunResult 单类别同步运行的结果
type CategoryRunResult struct {
	Success  bool           `json:"success"`
	Count    int            `json:"count"`
	Duration DurationMillis `json:"duration"`
}

// Stats 同步诊断信息
type Stats struct {
	AssetCount   int64      `json:"assetCount"`
	LastSyncTime *time.Time `json:"lastSyncTime"`
}

// ErrAllSourcesFailed 所有类别抓取均失败
var ErrAllSourcesFailed = errors.New("all data sources failed to fetch")

// FetchFailedError 单个类别抓取失败：网络错误、非 2xx 状态或响应解析失败
type FetchFailedError struct {
	Category   Category
	StatusCode int
	Message    string
}

func (e *FetchFailedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("failed to fetch %s: status %d: %s", e.Category, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("failed to fetch %s: %s", e.Category, e.Message)
}
