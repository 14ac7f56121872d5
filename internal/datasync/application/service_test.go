package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
	"github.com/cognikit/cognikit/internal/datasync/domain"
)

type fakeSource struct {
	results map[domain.Category]*domain.FetchResult
	errs    map[domain.Category]error
}

func (f *fakeSource) FetchCategory(_ context.Context, category domain.Category) (*domain.FetchResult, error) {
	if err, ok := f.errs[category]; ok {
		return nil, err
	}
	if result, ok := f.results[category]; ok {
		return result, nil
	}
	return &domain.FetchResult{}, nil
}

type fakeAssetRepo struct {
	upserted   [][]assetdomain.AssetRecord
	upsertErr  error
	count      int64
	lastSynced *time.Time
}

func (f *fakeAssetRepo) UpsertMany(_ context.Context, records []assetdomain.AssetRecord) error {
	f.upserted = append(f.upserted, records)
	return f.upsertErr
}

func (f *fakeAssetRepo) Search(_ context.Context, _ assetdomain.SearchParams) ([]*assetdomain.Asset, error) {
	return nil, nil
}

func (f *fakeAssetRepo) FindByID(_ context.Context, _ string) (*assetdomain.Asset, error) {
	return nil, nil
}

func (f *fakeAssetRepo) FindByMarketSymbol(_ context.Context, _ assetdomain.Market, _ string) (*assetdomain.Asset, error) {
	return nil, nil
}

func (f *fakeAssetRepo) Count(_ context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeAssetRepo) LastSyncedAt(_ context.Context) (*time.Time, error) {
	return f.lastSynced, nil
}

type fakePublisher struct {
	events []any
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, event any) error {
	f.events = append(f.events, event)
	return f.err
}

func records(category domain.Category, n int) *domain.FetchResult {
	recs := make([]assetdomain.AssetRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, assetdomain.AssetRecord{
			Symbol: string(category),
			Name:   "test",
			Type:   assetdomain.AssetType(category),
			Market: assetdomain.MarketCN,
		})
	}
	return &domain.FetchResult{Records: recs, Count: n}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncAllSuccess(t *testing.T) {
	source := &fakeSource{results: map[domain.Category]*domain.FetchResult{
		domain.CategoryStock: records(domain.CategoryStock, 10),
		domain.CategoryIndex: records(domain.CategoryIndex, 5),
		domain.CategoryETF:   records(domain.CategoryETF, 3),
		domain.CategoryLOF:   records(domain.CategoryLOF, 2),
		domain.CategoryOFund: records(domain.CategoryOFund, 4),
	}}
	repo := &fakeAssetRepo{}

	service := NewService(source, repo, nil, testLogger())
	result := service.SyncAll(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 24, result.Count)
	require.Len(t, repo.upserted, 1)
	assert.Len(t, repo.upserted[0], 24)
	for _, category := range domain.Categories {
		assert.True(t, result.Results[category].Success)
	}
}

func TestSyncAllPartialFailure(t *testing.T) {
	source := &fakeSource{
		results: map[domain.Category]*domain.FetchResult{
			domain.CategoryStock: records(domain.CategoryStock, 10),
			domain.CategoryETF:   records(domain.CategoryETF, 5),
			domain.CategoryLOF:   records(domain.CategoryLOF, 3),
		},
		errs: map[domain.Category]error{
			domain.CategoryIndex: &domain.FetchFailedError{Category: domain.CategoryIndex, StatusCode: 502, Message: "bad gateway"},
			domain.CategoryOFund: errors.New("connection refused"),
		},
	}
	repo := &fakeAssetRepo{}

	service := NewService(source, repo, nil, testLogger())
	result := service.SyncAll(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 18, result.Count)

	assert.True(t, result.Results[domain.CategoryStock].Success)
	assert.False(t, result.Results[domain.CategoryIndex].Success)
	assert.Contains(t, result.Results[domain.CategoryIndex].Error, "502")
	assert.False(t, result.Results[domain.CategoryOFund].Success)
	assert.Equal(t, "connection refused", result.Results[domain.CategoryOFund].Error)

	require.Len(t, repo.upserted, 1)
	assert.Len(t, repo.upserted[0], 18)
}

func TestSyncAllTotalFailure(t *testing.T) {
	errs := make(map[domain.Category]error, len(domain.Categories))
	for _, category := range domain.Categories {
		errs[category] = errors.New("unreachable")
	}
	repo := &fakeAssetRepo{}

	service := NewService(&fakeSource{errs: errs}, repo, nil, testLogger())
	result := service.SyncAll(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, repo.upserted, "no write should happen when every category fails")
	assert.Len(t, result.Results, len(domain.Categories))
}

func TestSyncAllWriteFailure(t *testing.T) {
	source := &fakeSource{results: map[domain.Category]*domain.FetchResult{
		domain.CategoryStock: records(domain.CategoryStock, 7),
	}}
	repo := &fakeAssetRepo{upsertErr: errors.New("deadlock detected")}

	service := NewService(source, repo, nil, testLogger())
	result := service.SyncAll(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Count)
	// 抓取阶段的结果保留，便于定位是写入而非抓取失败
	assert.True(t, result.Results[domain.CategoryStock].Success)
	assert.Equal(t, 7, result.Results[domain.CategoryStock].Count)
}

func TestSyncAllTruncatesLongErrorsInLogsOnly(t *testing.T) {
	longMsg := strings.Repeat("x", 500)
	source := &fakeSource{
		results: map[domain.Category]*domain.FetchResult{
			domain.CategoryStock: records(domain.CategoryStock, 1),
		},
		errs: map[domain.Category]error{
			domain.CategoryIndex: errors.New(longMsg),
		},
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	service := NewService(source, &fakeAssetRepo{}, nil, logger)
	result := service.SyncAll(context.Background())

	// 结果保留完整错误信息，便于排障
	assert.Equal(t, longMsg, result.Results[domain.CategoryIndex].Error)

	// 日志行截断到上限
	assert.Contains(t, logBuf.String(), strings.Repeat("x", maxErrorLength))
	assert.NotContains(t, logBuf.String(), strings.Repeat("x", maxErrorLength+1))
}

func TestSyncAllPublishesEvent(t *testing.T) {
	source := &fakeSource{results: map[domain.Category]*domain.FetchResult{
		domain.CategoryStock: records(domain.CategoryStock, 2),
	}}
	publisher := &fakePublisher{}

	service := NewService(source, &fakeAssetRepo{}, publisher, testLogger())
	result := service.SyncAll(context.Background())

	assert.True(t, result.Success)
	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(SyncCompletedEvent)
	require.True(t, ok)
	assert.True(t, event.Success)
	assert.Equal(t, 2, event.Count)
}

func TestSyncAllPublishFailureDoesNotAffectResult(t *testing.T) {
	source := &fakeSource{results: map[domain.Category]*domain.FetchResult{
		domain.CategoryStock: records(domain.CategoryStock, 2),
	}}
	publisher := &fakePublisher{err: errors.New("broker down")}

	service := NewService(source, &fakeAssetRepo{}, publisher, testLogger())
	result := service.SyncAll(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Count)
}

func TestSyncByCategory(t *testing.T) {
	source := &fakeSource{results: map[domain.Category]*domain.FetchResult{
		domain.CategoryETF: records(domain.CategoryETF, 6),
	}}
	repo := &fakeAssetRepo{}

	service := NewService(source, repo, nil, testLogger())
	result, err := service.SyncByCategory(context.Background(), domain.CategoryETF)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 6, result.Count)
	require.Len(t, repo.upserted, 1)
}

func TestSyncByCategoryPropagatesErrors(t *testing.T) {
	source := &fakeSource{errs: map[domain.Category]error{
		domain.CategoryETF: &domain.FetchFailedError{Category: domain.CategoryETF, StatusCode: 500, Message: "boom"},
	}}

	service := NewService(source, &fakeAssetRepo{}, nil, testLogger())
	_, err := service.SyncByCategory(context.Background(), domain.CategoryETF)

	var fetchErr *domain.FetchFailedError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 500, fetchErr.StatusCode)
}

func TestStats(t *testing.T) {
	lastSync := time.Now().Add(-time.Hour)
	repo := &fakeAssetRepo{count: 12345, lastSynced: &lastSync}

	service := NewService(&fakeSource{}, repo, nil, testLogger())
	stats, err := service.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12345), stats.AssetCount)
	assert.Equal(t, &lastSync, stats.LastSyncTime)
}
