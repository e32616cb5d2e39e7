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
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/catalog"
	"github.com/quizmint/qm-engine/internal/config"
	"github.com/quizmint/qm-engine/internal/leaderboard"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/providers/gateway"
	"github.com/quizmint/qm-engine/internal/providers/jetstream"
	"github.com/quizmint/qm-engine/internal/providers/pinning"
	temporal "github.com/quizmint/qm-engine/internal/providers/temporal"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerConfig(*configFile, *envPath)
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
			"service": "reward-worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting QuizMint Reward Worker")

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

	// Initialize the chain gateway
	ethGateway, err := gateway.NewEthereumGateway(ctx, gateway.Config{
		RPCURL:          cfg.Gateway.RPCURL,
		ContractAddress: cfg.Gateway.ContractAddress,
		SignerKey:       cfg.Gateway.SignerKey,
		GasLimit:        cfg.Gateway.GasLimit,
	}, adapter.NewEthClientDialer())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize chain gateway", zap.Error(err))
	}
	defer ethGateway.Close()
	logger.InfoCtx(ctx, "Connected to chain gateway", zap.String("rpc_url", cfg.Gateway.RPCURL))

	// Initialize the metadata pinner
	pinner := pinning.NewHTTPPinner(pinning.Config{
		Endpoint:   cfg.Pinning.Endpoint,
		APIKey:     cfg.Pinning.APIKey,
		MaxRetries: cfg.Pinning.MaxRetries,
		Timeout:    cfg.Pinning.Timeout,
	}, jsonAdapter)

	// Initialize executor for activities
	selector := catalog.NewSelector(dataStore)
	executor := workflows.NewExecutor(dataStore, selector, ethGateway, pinner, clock, adapter.NewActivity())

	// Connect to Temporal with logger integration
	temporalLogger := temporal.NewZapLoggerAdapter(logger.Default())
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporalLogger,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// Create Temporal worker with sentry interceptor
	sentryInterceptor := temporal.NewSentryActivityInterceptor()
	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.RewardTaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			Interceptors: []interceptor.WorkerInterceptor{
				sentryInterceptor,
			},
		})
	logger.InfoCtx(ctx, "Created Temporal worker", zap.String("taskQueue", cfg.Temporal.RewardTaskQueue))

	// Create worker core instance
	workerCore := workflows.NewWorkerCore(executor, workflows.WorkerCoreConfig{
		ActivityTimeout:     cfg.Workflow.ActivityTimeout,
		ConfirmPollInterval: cfg.Workflow.ConfirmPollInterval,
		ConfirmMaxPolls:     cfg.Workflow.ConfirmMaxPolls,
	}, adapter.NewWorkflow())

	// Register workflows
	temporalWorker.RegisterWorkflow(workerCore.MintReward)
	temporalWorker.RegisterWorkflow(workerCore.ForgeReward)
	logger.InfoCtx(ctx, "Registered workflows")

	// Register activities
	// Activities will be called by workflows
	temporalWorker.RegisterActivity(executor.CheckEligibilityActive)
	temporalWorker.RegisterActivity(executor.SelectMintItem)
	temporalWorker.RegisterActivity(executor.SelectForgeOutput)
	temporalWorker.RegisterActivity(executor.PinItemMetadata)
	temporalWorker.RegisterActivity(executor.VerifyOwnership)
	temporalWorker.RegisterActivity(executor.SubmitMint)
	temporalWorker.RegisterActivity(executor.SubmitBurn)
	temporalWorker.RegisterActivity(executor.CheckTx)
	temporalWorker.RegisterActivity(executor.MarkBurnConfirmed)
	temporalWorker.RegisterActivity(executor.CommitMint)
	temporalWorker.RegisterActivity(executor.CommitForge)
	temporalWorker.RegisterActivity(executor.FailMint)
	temporalWorker.RegisterActivity(executor.FailForge)
	logger.InfoCtx(ctx, "Registered activities")

	// Start the leaderboard scorer on the session-completed stream
	subscriber, err := jetstream.NewSubscriber(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		ConsumerName:   cfg.NATS.ConsumerName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "qm-engine-worker",
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer subscriber.Close()

	scorer := leaderboard.NewScorer(dataStore, leaderboard.Config{
		PointsPerCorrect: cfg.Scoring.PointsPerCorrect,
		PerfectBonus:     cfg.Scoring.PerfectBonus,
		PageSize:         cfg.Scoring.PageSize,
	})

	errCh := make(chan error, 2)
	go func() {
		if err := scorer.Subscribe(ctx, subscriber); err != nil {
			errCh <- fmt.Errorf("scorer subscription failed: %w", err)
		}
	}()
	logger.InfoCtx(ctx, "Leaderboard scorer subscribed", zap.String("stream", cfg.NATS.StreamName))

	// Start worker
	if err := temporalWorker.Start(); err != nil {
		logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Worker started and listening for tasks")

	// Wait for interrupt signal or a component failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
	}

	// Stop accepting new tasks and drain
	cancel()
	temporalWorker.Stop()

	logger.Info("Worker stopped")
}
