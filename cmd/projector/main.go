package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/api/server"
	"github.com/feral-file/ff-projector/internal/block"
	"github.com/feral-file/ff-projector/internal/config"
	"github.com/feral-file/ff-projector/internal/emitter"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/messaging"
	"github.com/feral-file/ff-projector/internal/metadata"
	"github.com/feral-file/ff-projector/internal/projector"
	"github.com/feral-file/ff-projector/internal/providers/ethereum"
	"github.com/feral-file/ff-projector/internal/providers/jetstream"
	"github.com/feral-file/ff-projector/internal/ratelimit"
	"github.com/feral-file/ff-projector/internal/registry"
	"github.com/feral-file/ff-projector/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadProjectorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "projector",
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"chain": string(cfg.Ethereum.ChainID),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting projector", zap.String("chain", string(cfg.Ethereum.ChainID)))

	// Connect to database
	db, err := gorm.Open(cfg.Database.Dialector(), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database", zap.String("driver", cfg.Database.Driver))

	// Initialize store
	dataStore := store.NewGormStore(db)
	if err := dataStore.Migrate(ctx); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
	}

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.Metadata.HTTPTimeout, cfg.Metadata.MaxElapsedTime)

	// Initialize ethereum client
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}

	blockProvider := block.NewBlockProvider(
		ethereum.NewBlockFetcher(ethClient),
		block.Config{
			TTL:         cfg.Ethereum.BlockHeadTTL,
			StaleWindow: cfg.Ethereum.BlockHeadStaleWindow,
		},
		clockAdapter,
	)
	source := ethereum.NewSource(ethereum.SourceConfig{
		Chain:                cfg.Ethereum.ChainID,
		MaxAddressesPerQuery: cfg.Ethereum.MaxAddressesPerQuery,
		Workers:              cfg.Ethereum.Workers,
	}, ethClient, blockProvider)
	reader := ethereum.NewContractReader(ethClient, cfg.Ethereum.CallMaxElapsedTime)

	// Optional metadata cache
	var cache adapter.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
		cache = redisClient
		logger.InfoCtx(ctx, "Metadata cache enabled", zap.String("addr", cfg.Redis.Addr))
	}
	limiter := ratelimit.NewLimiter(ratelimit.Config{Providers: cfg.Metadata.RateLimits}, cache, clockAdapter)
	defer limiter.Close()
	fetcher := metadata.NewFetcher(httpClient, cache, limiter, metadata.Config{
		IPFSGateways:    cfg.Metadata.IPFSGateways,
		ArweaveGateways: cfg.Metadata.ArweaveGateways,
		CacheTTL:        cfg.Metadata.CacheTTL,
	})

	// Optional change feed
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
			MaxAge:         cfg.NATS.MaxAge,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	// Restore the watched set and seed the configured roots
	discoveries := emitter.NewDiscoveries()
	contractRegistry := registry.New(discoveries)
	if err := contractRegistry.Load(ctx, dataStore); err != nil {
		logger.FatalCtx(ctx, "Failed to load watched contracts", zap.Error(err))
	}
	if err := contractRegistry.Seed(ctx, dataStore, cfg.RegistryRoots(), cfg.Ethereum.StartBlock); err != nil {
		logger.FatalCtx(ctx, "Failed to seed root contracts", zap.Error(err))
	}

	proj := projector.New(projector.Deps{
		Store:     dataStore,
		Registry:  contractRegistry,
		Reader:    reader,
		Fetcher:   fetcher,
		Publisher: publisher,
	})

	eventEmitter := emitter.NewEmitter(
		emitter.Config{
			Chain:         cfg.Ethereum.ChainID,
			StartBlock:    cfg.Ethereum.StartBlock,
			Confirmations: cfg.Ethereum.Confirmations,
			BatchSize:     cfg.Ethereum.BatchSize,
			PollInterval:  cfg.Ethereum.PollInterval,
		},
		source,
		dataStore,
		contractRegistry,
		proj,
		discoveries,
		clockAdapter,
	)
	defer eventEmitter.Close()

	// API server keeps serving status after a halt
	apiServer := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}, dataStore, eventEmitter)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start the block loop
	emitterErrCh := make(chan error, 1)
	go func() {
		emitterErrCh <- eventEmitter.Run(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErrCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "api"))
	case err := <-emitterErrCh:
		if errors.Is(err, emitter.ErrHalted) {
			// Status stays available for operators until the process is stopped
			logger.ErrorCtx(ctx, err, zap.String("component", "emitter"), zap.String("reason", eventEmitter.Status().Reason))
			sig := <-sigCh
			logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		} else if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("component", "emitter"))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "api"))
	}

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Projector stopped")
}
