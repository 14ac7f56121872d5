// Package source 实现 Financial Data 服务的只读客户端
package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
	"github.com/cognikit/cognikit/internal/datasync/domain"
)

// categorySpec 类别到端点路径与归一化方式的映射，
// 五个近似重复的抓取方法折叠为一个参数化操作
type categorySpec struct {
	path   string
	isFund bool
}

var categoryTable = map[domain.Category]categorySpec{
	domain.CategoryStock: {path: "/api/v1/akshare/stock/list"},
	domain.CategoryIndex: {path: "/api/v1/akshare/index/list"},
	domain.CategoryETF:   {path: "/api/v1/akshare/etf/list"},
	domain.CategoryLOF:   {path: "/api/v1/akshare/lof/list"},
	domain.CategoryOFund: {path: "/api/v1/akshare/fund/list", isFund: true},
}

// Client Financial Data HTTP 客户端
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient 创建客户端。baseURL 来自配置，不做鉴权（上游为内部只读服务）。
// 强制按 JSON 解析响应体：代理返回 200 + HTML 错误页时必须按抓取失败处理，
// 而不是解析出零条记录的"成功"。
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &Client{http: httpClient, logger: logger}
}

// FetchCategory 抓取一个类别的全量数据并归一化。
// 网络错误、非 2xx 状态与解析失败统一以 FetchFailedError 返回。
func (c *Client) FetchCategory(ctx context.Context, category domain.Category) (*domain.FetchResult, error) {
	spec, ok := categoryTable[category]
	if !ok {
		return nil, &domain.FetchFailedError{Category: category, Message: "unknown category"}
	}

	if spec.isFund {
		return c.fetchFunds(ctx, category, spec.path)
	}
	return c.fetchBase(ctx, category, spec.path)
}

func (c *Client) fetchBase(ctx context.Context, category domain.Category, path string) (*domain.FetchResult, error) {
	var body domain.BaseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		ForceContentType("application/json").
		Get(path)
	if err := c.checkResponse(category, resp, err); err != nil {
		return nil, err
	}

	records := make([]assetdomain.AssetRecord, 0, len(body.Data))
	for _, item := range body.Data {
		records = append(records, domain.ParseBaseAsset(item, category))
	}

	c.logger.DebugContext(ctx, "fetched category data", "category", category, "count", body.Count)
	return &domain.FetchResult{Records: records, Count: body.Count}, nil
}

func (c *Client) fetchFunds(ctx context.Context, category domain.Category, path string) (*domain.FetchResult, error) {
	var body domain.FundResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		ForceContentType("application/json").
		Get(path)
	if err := c.checkResponse(category, resp, err); err != nil {
		return nil, err
	}

	records := make([]assetdomain.AssetRecord, 0, len(body.Data))
	for _, item := range body.Data {
		records = append(records, domain.ParseFundAsset(item))
	}

	c.logger.DebugContext(ctx, "fetched category data", "category", category, "count", body.Count)
	return &domain.FetchResult{Records: records, Count: body.Count}, nil
}

func (c *Client) checkResponse(category domain.Category, resp *resty.Response, err error) error {
	if err != nil {
		return &domain.FetchFailedError{Category: category, Message: err.Error()}
	}
	if resp.IsError() {
		return &domain.FetchFailedError{
			Category:   category,
			StatusCode: resp.StatusCode(),
			Message:    resp.Status(),
		}
	}
	return nil
}
