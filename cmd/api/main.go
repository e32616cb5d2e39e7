package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/api/rest"
	"github.com/quizmint/qm-engine/internal/api/server"
	"github.com/quizmint/qm-engine/internal/config"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/forge"
	"github.com/quizmint/qm-engine/internal/leaderboard"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/providers/jetstream"
	temporal "github.com/quizmint/qm-engine/internal/providers/temporal"
	"github.com/quizmint/qm-engine/internal/questions"
	"github.com/quizmint/qm-engine/internal/ratelimit"
	"github.com/quizmint/qm-engine/internal/season"
	"github.com/quizmint/qm-engine/internal/session"
	"github.com/quizmint/qm-engine/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting QuizMint Engine API")

	// Connect to database. TranslateError is required so the store can
	// detect unique violations as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Run migrations
	if err := store.AutoMigrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to run migrations", zap.Error(err))
	}

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Connect to Redis
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = redisClient.Close() }()
	rateStore := ratelimit.NewStore(redisClient, jsonAdapter, clock, cfg.Redis.DayOffset)
	logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Connect to NATS JetStream for session-completed events
	publisher, err := jetstream.NewPublisher(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "qm-engine-api",
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))

	// Connect to Temporal with logger integration
	temporalLogger := temporal.NewZapLoggerAdapter(logger.Default())
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporalLogger,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("host_port", cfg.Temporal.HostPort))

	// Initialize domain services
	eligManager := eligibility.NewManager(dataStore, clock, eligibility.Config{
		ConnectedWindow: cfg.Eligibility.ConnectedWindow,
		GuestWindow:     cfg.Eligibility.GuestWindow,
	})
	seasonManager := season.NewManager(dataStore, clock, season.Config{
		Length:      cfg.Season.Length,
		GracePeriod: cfg.Season.GracePeriod,
		Categories:  cfg.Season.Categories,
		AutoOpen:    cfg.Season.AutoOpen,
	})
	questionSource := questions.NewSource(dataStore, clock)
	engine := session.NewEngine(dataStore, rateStore, questionSource, eligManager, seasonManager, publisher, clock, session.Config{
		QuestionsPerSession: cfg.Game.QuestionsPerSession,
		PerQuestionTime:     cfg.Game.PerQuestionTime,
		WinThreshold:        cfg.Game.WinThreshold,
		DailyCapConnected:   cfg.Game.DailyCapConnected,
		DailyCapGuest:       cfg.Game.DailyCapGuest,
		Cooldown:            cfg.Game.Cooldown,
		MaxDuration:         cfg.Game.MaxDuration,
		ThrottlePerMinute:   cfg.Game.ThrottlePerMinute,
	})
	forgeService := forge.NewService(dataStore, clock, forge.Config{
		Categories:                cfg.Forge.Categories,
		UltimateInputs:            cfg.Forge.UltimateInputs,
		SeasonalInputsPerCategory: cfg.Forge.SeasonalInputsPerCategory,
	})
	scorer := leaderboard.NewScorer(dataStore, leaderboard.Config{
		PointsPerCorrect: cfg.Scoring.PointsPerCorrect,
		PerfectBonus:     cfg.Scoring.PerfectBonus,
		PageSize:         cfg.Scoring.PageSize,
	})

	// Create REST handler
	restHandler := rest.NewHandler(rest.HandlerConfig{
		TaskQueue:        cfg.Temporal.RewardTaskQueue,
		CustodialAddress: cfg.Gateway.CustodialAddress,
	}, engine, eligManager, forgeService, scorer, seasonManager, dataStore, temporalClient)

	// Create and start server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		JWTSecret:    cfg.Auth.JWTSecret,
	}, restHandler)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
