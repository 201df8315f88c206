package main

import (
	"context"
	"fmt"
	"io"

	"procfeed/internal/config"
	"procfeed/internal/crawler"
	"procfeed/internal/formatter"
	"procfeed/internal/logger"
	"procfeed/internal/service"
	"procfeed/internal/store"
)

// app holds the wired collaborators shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	client  *crawler.Client
	service *service.IngestionService
	close   func() error
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	if flags.configPath == "" {
		cfg := config.Default()
		cfg.ApplyEnv()

		return cfg, cfg.Validate()
	}

	return config.LoadConfig(flags.configPath)
}

// newApp loads configuration and wires the client, the optional storage and the
// ingestion service.
func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}

	log := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	client := crawler.NewClient(cfg, log)

	a := &app{
		cfg:    cfg,
		log:    log,
		client: client,
		close:  func() error { return nil },
	}

	var saver service.Saver

	if cfg.Storage.Enabled() {
		db, err := store.InitDB(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get connection pool: %w", err)
		}

		a.close = sqlDB.Close

		repo := store.NewRepository(db)

		if cfg.Storage.AutoMigrate {
			if err := repo.AutoMigrate(ctx); err != nil {
				_ = sqlDB.Close()

				return nil, err
			}
		}

		saver = store.NewUploader(repo, cfg.Storage, log)

		log.Info("storage enabled", "tenant", cfg.Storage.TenantID)
	}

	a.service = service.NewIngestionService(cfg, client, saver, log)

	return a, nil
}

// printReport writes the markdown report of a run.
func printReport(w io.Writer, report *service.RunReport) {
	if report == nil || report.Result == nil {
		return
	}

	fmt.Fprint(w, formatter.FormatReport(report.Result))

	if rejections := formatter.FormatRejections(report.Result); rejections != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, rejections)
	}

	if report.Saved != nil {
		fmt.Fprintf(w, "\nPersisted %d entries in %d batches (%d duplicates collapsed, %d failed batches)\n",
			report.Saved.Saved, report.Saved.Batches, report.Saved.Duplicates, len(report.Saved.Errors))
	}
}
