package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/config"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/providers/jetstream"
	"github.com/quizmint/qm-engine/internal/questions"
	"github.com/quizmint/qm-engine/internal/ratelimit"
	"github.com/quizmint/qm-engine/internal/season"
	"github.com/quizmint/qm-engine/internal/session"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
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
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting QuizMint Sweeper")

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
	logger.InfoCtx(ctx, "Connected to database")

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

	// Connect to NATS so abandoned sessions still publish completion events
	publisher, err := jetstream.NewPublisher(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "qm-engine-sweeper",
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

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

	// Initialize sweepers
	sweepers := []sweeper.Sweeper{
		sweeper.NewEligibilityExpirySweeper(&sweeper.EligibilityExpiryConfig{
			BatchSize:      cfg.EligibilityExpiry.BatchSize,
			WorkerPoolSize: cfg.EligibilityExpiry.Worker.WorkerPoolSize,
			Interval:       cfg.EligibilityExpiry.Interval,
		}, eligManager, clock),
		sweeper.NewSessionAbandonSweeper(&sweeper.SessionAbandonConfig{
			BatchSize: cfg.SessionAbandon.BatchSize,
			Interval:  cfg.SessionAbandon.Interval,
		}, engine, clock),
		sweeper.NewSeasonRollSweeper(&sweeper.SeasonRollConfig{
			Interval: cfg.SeasonRoll.Interval,
		}, seasonManager),
	}

	// Start each sweeper in its own goroutine
	errChan := make(chan error, len(sweepers))
	for _, s := range sweepers {
		s := s
		logger.InfoCtx(ctx, "Starting sweeper", zap.String("name", s.Name()))
		go func() {
			if err := s.Start(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", s.Name(), err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweepers
	cancel()

	// Give the sweepers time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	for _, s := range sweepers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err, zap.String("name", s.Name()))
		}
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
