package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/audit"
	"github.com/feral-file/ff-projector/internal/config"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	repair     = flag.Bool("repair", false, "Rewrite drifted counters instead of only reporting them")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAuditorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx := context.Background()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		Service:   "auditor",
		SentryDSN: cfg.SentryDSN,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	db, err := gorm.Open(cfg.Database.Dialector(), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	auditor := audit.New(store.NewGormStore(db))

	var report *audit.Report
	if *repair || cfg.Repair {
		report, err = auditor.Repair(ctx)
	} else {
		report, err = auditor.Verify(ctx)
	}
	if err != nil {
		logger.FatalCtx(ctx, "Audit failed", zap.Error(err))
	}

	out, err := adapter.NewJSON().Marshal(report)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to encode report", zap.Error(err))
	}
	fmt.Println(string(out))

	if !report.OK() {
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}
