// syncassets 命令行工具：从 Financial Data 服务全量同步资产元数据。
// 供 cron 或手动触发，退出码 0 表示同步成功。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	assetmysql "github.com/cognikit/cognikit/internal/asset/infrastructure/persistence/mysql"
	syncapp "github.com/cognikit/cognikit/internal/datasync/application"
	syncdomain "github.com/cognikit/cognikit/internal/datasync/domain"
	"github.com/cognikit/cognikit/internal/datasync/infrastructure/messaging"
	"github.com/cognikit/cognikit/internal/datasync/infrastructure/source"
	"github.com/cognikit/cognikit/pkg/config"
	"github.com/cognikit/cognikit/pkg/db"
	"github.com/cognikit/cognikit/pkg/logger"
	"github.com/cognikit/cognikit/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config file")
	category := flag.String("category", "", "sync a single category (STOCK, INDEX, ETF, LOF, OFUND); empty for all")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, slogger)
	if err != nil {
		slogger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	var events syncapp.EventPublisher
	if cfg.Kafka.Enabled {
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		}, slogger)
		defer producer.Close()
		events = messaging.NewKafkaPublisher(producer, cfg.Kafka.SyncTopic)
	}

	assetRepo := assetmysql.NewAssetRepository(database.DB)
	sourceClient := source.NewClient(cfg.FinancialData.BaseURL,
		time.Duration(cfg.FinancialData.Timeout)*time.Second, slogger)
	syncService := syncapp.NewService(sourceClient, assetRepo, events, slogger)

	ctx := context.Background()

	if *category != "" {
		cat, err := syncdomain.ParseCategory(*category)
		if err != nil {
			slogger.Error("invalid category", "category", *category, "error", err)
			os.Exit(1)
		}
		result, err := syncService.SyncByCategory(ctx, cat)
		if err != nil {
			slogger.Error("category sync failed", "category", cat, "error", err)
			os.Exit(1)
		}
		fmt.Printf("%-6s synced %d records in %s\n", cat, result.Count, time.Duration(result.Duration).Round(time.Millisecond))
		return
	}

	result := syncService.SyncAll(ctx)
	for _, cat := range syncdomain.Categories {
		cr := result.Results[cat]
		if cr.Success {
			fmt.Printf("%-6s ok     %d records\n", cat, cr.Count)
		} else {
			fmt.Printf("%-6s failed %s\n", cat, cr.Error)
		}
	}
	fmt.Printf("total  %d records in %s\n", result.Count, time.Duration(result.Duration).Round(time.Millisecond))

	if !result.Success {
		os.Exit(1)
	}
}
