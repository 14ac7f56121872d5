// Package application 实现资产数据同步编排
package application

import (
	"context"
	"log/slog"
	"time"

	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
	"github.com/cognikit/cognikit/internal/datasync/domain"
)

// 单个类别错误信息写入日志行的最大长度
const maxErrorLength = 200

// EventPublisher 同步完成事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// SyncCompletedEvent 一次同步运行结束后发布的摘要事件
type SyncCompletedEvent struct {
	Success    bool           `json:"success"`
	Count      int            `json:"count"`
	DurationMS int64          `json:"durationMs"`
	Results    map[string]int `json:"results"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Service 同步编排服务。逐类别顺序抓取并容忍部分失败，
// 聚合成功类别的记录后一次性批量写入。
type Service struct {
	source domain.SourceClient
	assets assetdomain.Repository
	events EventPublisher
	logger *slog.Logger
}

// NewService 创建同步编排服务。events 可为 nil，表示不发布事件。
func NewService(source domain.SourceClient, assets assetdomain.Repository, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		assets: assets,
		events: events,
		logger: logger,
	}
}

// SyncAll 执行一次全量同步。
// 每个类别各抓取一次，单个类别失败不中断其余类别；
// 全部失败时不进入写入步骤；写入失败时已收集的各类别结果仍保留在返回值中。
// 错误不向上抛出，调用方始终拿到结构化的 RunResult。
func (s *Service) SyncAll(ctx context.Context) *domain.RunResult {
	start := time.Now()
	s.logger.InfoContext(ctx, "starting asset sync")

	results := make(map[domain.Category]domain.CategoryResult, len(domain.Categories))
	fetched := make(map[domain.Category][]assetdomain.AssetRecord, len(domain.Categories))

	for _, category := range domain.Categories {
		result, err := s.source.FetchCategory(ctx, category)
		if err != nil {
			// 日志行截断，结果中保留完整错误信息
			s.logger.ErrorContext(ctx, "failed to fetch category data",
				"category", category, "error", truncateError(err))
			results[category] = domain.CategoryResult{Success: false, Count: 0, Error: err.Error()}
			continue
		}
		results[category] = domain.CategoryResult{Success: true, Count: result.Count}
		fetched[category] = result.Records
	}

	s.logger.InfoContext(ctx, "fetched data from financial-data service",
		"stocks", results[domain.CategoryStock].Count,
		"indexes", results[domain.CategoryIndex].Count,
		"etfs", results[domain.CategoryETF].Count,
		"lofs", results[domain.CategoryLOF].Count,
		"funds", results[domain.CategoryOFund].Count,
	)

	if len(fetched) == 0 {
		duration := time.Since(start)
		s.logger.ErrorContext(ctx, "asset sync failed", "error", domain.ErrAllSourcesFailed, "duration", duration)
		return &domain.RunResult{Success: false, Count: 0, Duration: domain.DurationMillis(duration), Results: results}
	}

	var records []assetdomain.AssetRecord
	for _, category := range domain.Categories {
		records = append(records, fetched[category]...)
	}

	if err := s.assets.UpsertMany(ctx, records); err != nil {
		duration := time.Since(start)
		s.logger.ErrorContext(ctx, "asset sync failed",
			"error", err, "duration", duration, "results", results)
		return &domain.RunResult{Success: false, Count: 0, Duration: domain.DurationMillis(duration), Results: results}
	}

	duration := time.Since(start)
	run := &domain.RunResult{
		Success:  true,
		Count:    len(records),
		Duration: domain.DurationMillis(duration),
		Results:  results,
	}

	s.publishCompleted(ctx, run)

	s.logger.InfoContext(ctx, "asset sync completed", "written", run.Count, "duration", duration)
	return run
}

// SyncByCategory 仅同步指定类别，失败直接以错误返回
func (s *Service) SyncByCategory(ctx context.Context, category domain.Category) (*domain.CategoryRunResult, error) {
	start := time.Now()
	s.logger.InfoContext(ctx, "starting asset sync by category", "category", category)

	result, err := s.source.FetchCategory(ctx, category)
	if err != nil {
		s.logger.ErrorContext(ctx, "asset sync by category failed",
			"category", category, "error", err, "duration", time.Since(start))
		return nil, err
	}

	if err := s.assets.UpsertMany(ctx, result.Records); err != nil {
		s.logger.ErrorContext(ctx, "asset sync by category failed",
			"category", category, "error", err, "duration", time.Since(start))
		return nil, err
	}

	duration := time.Since(start)
	s.logger.InfoContext(ctx, "asset sync by category completed",
		"category", category, "count", len(result.Records), "duration", duration)

	return &domain.CategoryRunResult{
		Success:  true,
		Count:    len(result.Records),
		Duration: domain.DurationMillis(duration),
	}, nil
}

// Stats 返回同步诊断信息
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	count, err := s.assets.Count(ctx)
	if err != nil {
		return nil, err
	}

	lastSync, err := s.assets.LastSyncedAt(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{AssetCount: count, LastSyncTime: lastSync}, nil
}

func (s *Service) publishCompleted(ctx context.Context, run *domain.RunResult) {
	if s.events == nil {
		return
	}

	counts := make(map[string]int, len(run.Results))
	for category, result := range run.Results {
		counts[string(category)] = result.Count
	}

	event := SyncCompletedEvent{
		Success:    run.Success,
		Count:      run.Count,
		DurationMS: time.Duration(run.Duration).Milliseconds(),
		Results:    counts,
		FinishedAt: time.Now(),
	}

	// 事件发布失败不影响同步结果
	if err := s.events.Publish(ctx, "full-sync", event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish sync event", "error", err)
	}
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorLength {
		return msg[:maxErrorLength]
	}
	return msg
}
