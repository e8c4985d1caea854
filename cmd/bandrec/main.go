package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Weird-ragazzo/bandrec/internal/api"
	"github.com/Weird-ragazzo/bandrec/internal/band"
	"github.com/Weird-ragazzo/bandrec/internal/catalog"
	"github.com/Weird-ragazzo/bandrec/internal/config"
	"github.com/Weird-ragazzo/bandrec/internal/database"
	"github.com/Weird-ragazzo/bandrec/internal/dataset"
	"github.com/Weird-ragazzo/bandrec/internal/event"
	"github.com/Weird-ragazzo/bandrec/internal/logging"
	"github.com/Weird-ragazzo/bandrec/internal/recommend"
	"github.com/Weird-ragazzo/bandrec/internal/version"
	"github.com/Weird-ragazzo/bandrec/internal/watcher"
)

func main() {
	// Handle subcommands before starting the server
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "import":
			if err := runImport(); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logManager, logger := logging.NewManager(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database ready", slog.String("path", cfg.Database.Path))

	// Initialize services
	bandService := band.NewService(db)
	importer := dataset.NewImporter(db, bandService, logger)

	eventBus := event.NewBus(logger, 64)
	go eventBus.Start()
	defer eventBus.Stop()

	for _, t := range []event.Type{
		event.DatasetImported, event.DatasetImportError, event.RecommenderRebuilt,
	} {
		eventBus.Subscribe(t, func(e event.Event) {
			logger.Debug("event", slog.String("type", string(e.Type)), slog.Any("data", e.Data))
		})
	}

	catalogService := catalog.NewService(
		bandService, importer, recommend.New(), eventBus, logger, cfg.Dataset.Path)

	logger.Info("starting bandrec",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial import. A missing or broken dataset file is not fatal: the
	// server starts degraded and serves 503s until a reload succeeds.
	if stats, err := catalogService.Reload(ctx); err != nil {
		logger.Error("initial dataset import failed", "error", err,
			slog.String("path", cfg.Dataset.Path))
	} else {
		logger.Info("catalog loaded",
			slog.Int("bands", stats.BandCount),
			slog.String("path", stats.SourcePath),
		)
	}

	// Watch the dataset file and reimport on change
	if cfg.Dataset.Watch {
		reloadFn := func(ctx context.Context) error {
			_, err := catalogService.Reload(ctx)
			return err
		}
		watcherService := watcher.NewService(cfg.Dataset.Path, reloadFn, logger)
		go watcherService.Start(ctx)
	}

	router := api.NewRouter(api.RouterDeps{
		BandService:    bandService,
		CatalogService: catalogService,
		Importer:       importer,
		Logger:         logger,
		BasePath:       cfg.Server.BasePath,
		StaticDir:      "web/static",
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// runImport performs a one-off dataset import and matrix rebuild, then
// exits. Useful for seeding the database before first start or from cron.
func runImport() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path := cfg.Dataset.Path
	if len(os.Args) > 2 {
		path = os.Args[2]
	}

	_, logger := logging.NewManager(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "text",
	})

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx := context.Background()
	bandService := band.NewService(db)
	importer := dataset.NewImporter(db, bandService, logger)

	stats, err := importer.Import(ctx, path)
	if err != nil {
		return fmt.Errorf("importing dataset: %w", err)
	}

	fmt.Printf("Imported %d bands from %s (%d origins, %d genres)\n",
		stats.BandCount, stats.SourcePath, stats.OriginCount, stats.GenreCount)
	return nil
}

func configPath() string {
	if p := os.Getenv("BR_CONFIG_PATH"); p != "" {
		return p
	}
	return "/data/config.yaml"
}
