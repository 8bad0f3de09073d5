package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/metrics"
	"github.com/mamadbah2/pantry/internal/repository/mongodb"
	"github.com/mamadbah2/pantry/internal/repository/sheets"
	"github.com/mamadbah2/pantry/internal/repository/sqlite"
	"github.com/mamadbah2/pantry/internal/scheduler"
	"github.com/mamadbah2/pantry/internal/server/handlers"
	"github.com/mamadbah2/pantry/internal/server/router"
	barcodesvc "github.com/mamadbah2/pantry/internal/service/barcode"
	chefsvc "github.com/mamadbah2/pantry/internal/service/chef"
	itemsvc "github.com/mamadbah2/pantry/internal/service/items"
	"github.com/mamadbah2/pantry/pkg/clients/anthropic"
	"github.com/mamadbah2/pantry/pkg/clients/gemini"
	"github.com/mamadbah2/pantry/pkg/clients/openfoodfacts"
	"github.com/mamadbah2/pantry/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)

	location, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.Error(err))
	}

	repo, closeRepo, err := openRepository(context.Background(), cfg.Database)
	if err != nil {
		baseLogger.Fatal("failed to init item repository", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer func() {
		if err := closeRepo(); err != nil {
			baseLogger.Error("failed to close item repository", zap.Error(err))
		}
	}()
	baseLogger.Info("item repository ready", zap.String("driver", cfg.Database.Driver))

	generator, err := newGenerator(context.Background(), cfg.AI)
	if err != nil {
		baseLogger.Fatal("failed to init text generator", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	}
	baseLogger.Info("recipe generator enabled", zap.String("provider", cfg.AI.Provider))

	m := metrics.New()
	lookup := openfoodfacts.NewClient(cfg.Barcode.BaseURL, cfg.Barcode.Timeout)

	itemService := itemsvc.NewService(repo, logger.Named(baseLogger, "svc.items"), itemsvc.WithLocation(location))
	advisor := chefsvc.NewAdvisor(m.InstrumentGenerator(generator), logger.Named(baseLogger, "svc.chef"))
	resolver := barcodesvc.NewResolver(m.InstrumentLookup(lookup), location, logger.Named(baseLogger, "svc.barcode"))

	engine := router.New(router.Handlers{
		Items:   handlers.NewItemHandler(itemService, logger.Named(baseLogger, "handlers.items")),
		Chef:    handlers.NewChefHandler(advisor, logger.Named(baseLogger, "handlers.chef")),
		Barcode: handlers.NewBarcodeHandler(resolver, logger.Named(baseLogger, "handlers.barcode")),
		Web:     handlers.NewWebHandler(),
	}, m, logger.Named(baseLogger, "router"))

	sweepOpts := scheduler.Options{Schedule: cfg.Sweep.CronSchedule, Location: location}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sweepOpts.Sheet = sheetsRepo
		sweepOpts.SheetRange = cfg.Sheets.Range
	}

	sched := scheduler.NewScheduler(itemService, m, sweepOpts, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.WithCORS(engine, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openRepository selects the item store backend and returns its close func.
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (itemsvc.Repository, func() error, error) {
	switch cfg.Driver {
	case config.DriverMongoDB:
		repo, err := mongodb.NewItemRepository(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return repo.Close(closeCtx)
		}, nil
	case config.DriverSQLite:
		repo, err := sqlite.NewItemRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func newGenerator(ctx context.Context, cfg config.AIConfig) (chefsvc.TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg.AnthropicKey, cfg.AnthropicModel, cfg.Timeout), nil
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
