package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	assetapp "github.com/cognikit/cognikit/internal/asset/application"
	assetdomain "github.com/cognikit/cognikit/internal/asset/domain"
	assetmysql "github.com/cognikit/cognikit/internal/asset/infrastructure/persistence/mysql"
	assethttp "github.com/cognikit/cognikit/internal/asset/interfaces/http"
	authapp "github.com/cognikit/cognikit/internal/auth/application"
	authdomain "github.com/cognikit/cognikit/internal/auth/domain"
	"github.com/cognikit/cognikit/internal/auth/infrastructure/email"
	authmysql "github.com/cognikit/cognikit/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/cognikit/cognikit/internal/auth/interfaces/http"
	syncapp "github.com/cognikit/cognikit/internal/datasync/application"
	"github.com/cognikit/cognikit/internal/datasync/infrastructure/messaging"
	"github.com/cognikit/cognikit/internal/datasync/infrastructure/source"
	synchttp "github.com/cognikit/cognikit/internal/datasync/interfaces/http"
	userhttp "github.com/cognikit/cognikit/internal/user/interfaces/http"
	watchlistapp "github.com/cognikit/cognikit/internal/watchlist/application"
	watchlistdomain "github.com/cognikit/cognikit/internal/watchlist/domain"
	watchlistmysql "github.com/cognikit/cognikit/internal/watchlist/infrastructure/persistence/mysql"
	watchlisthttp "github.com/cognikit/cognikit/internal/watchlist/interfaces/http"
	"github.com/cognikit/cognikit/pkg/cache"
	"github.com/cognikit/cognikit/pkg/config"
	"github.com/cognikit/cognikit/pkg/db"
	"github.com/cognikit/cognikit/pkg/logger"
	"github.com/cognikit/cognikit/pkg/middleware"
	"github.com/cognikit/cognikit/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config file")
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

	slogger.Info("starting server", "service", cfg.ServiceName, "environment", cfg.Environment)

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

	if cfg.Environment == "dev" {
		err := database.AutoMigrate(
			&assetdomain.Asset{},
			&authdomain.User{},
			&authdomain.Session{},
			&authdomain.VerificationCode{},
			&watchlistdomain.Group{},
			&watchlistdomain.Item{},
		)
		if err != nil {
			slogger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	redisCache, err := cache.New(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxPoolSize: cfg.Redis.MaxPoolSize,
	}, slogger)
	if err != nil {
		slogger.Error("failed to init redis", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// 仓储
	assetRepo := assetmysql.NewAssetRepository(database.DB)
	authRepo := authmysql.NewAuthRepository(database)
	watchlistRepo := watchlistmysql.NewWatchlistRepository(database)

	// 领域服务
	assetService := assetapp.NewService(assetRepo, slogger)

	codeSender := email.NewResendSender(cfg.Email.APIKey, cfg.Email.From, slogger)
	authService := authapp.NewService(authRepo, redisCache, codeSender, authapp.Config{
		JWTSecret:       cfg.Auth.JWTSecret,
		AccessTokenTTL:  time.Duration(cfg.Auth.AccessTokenTTL) * time.Minute,
		RefreshTokenTTL: time.Duration(cfg.Auth.RefreshTokenTTL) * time.Hour,
	}, slogger)

	watchlistService := watchlistapp.NewService(watchlistRepo, assetService, slogger)

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

	sourceClient := source.NewClient(cfg.FinancialData.BaseURL,
		time.Duration(cfg.FinancialData.Timeout)*time.Second, slogger)
	syncService := syncapp.NewService(sourceClient, assetRepo, events, slogger)

	// HTTP
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecovery(slogger),
		middleware.GinLogging(slogger),
		middleware.GinCORS(),
	)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	authRequired := middleware.GinAuth(authService)
	api := router.Group("/api")

	// 认证接口单独限流，防止验证码与登录接口被刷
	authLimiter := middleware.NewRateLimiter(5, 10)
	authGroup := api.Group("", middleware.GinRateLimit(authLimiter))
	authhttp.NewAuthHandler(authService).RegisterRoutes(authGroup)
	userhttp.NewUserHandler(authService).RegisterRoutes(api, authRequired)
	assethttp.NewAssetHandler(assetService).RegisterRoutes(api)
	watchlisthttp.NewWatchlistHandler(watchlistService).RegisterRoutes(api, authRequired)
	synchttp.NewSyncHandler(syncService).RegisterRoutes(api, authRequired)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slogger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slogger.Info("server stopped")
}
