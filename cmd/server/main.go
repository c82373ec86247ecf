package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Duzcc/Netflixfake-sub000/internal/config"
	httpserver "github.com/Duzcc/Netflixfake-sub000/internal/http"
	"github.com/Duzcc/Netflixfake-sub000/internal/importer"
	"github.com/Duzcc/Netflixfake-sub000/internal/repository"
	"github.com/Duzcc/Netflixfake-sub000/internal/store"
	"github.com/Duzcc/Netflixfake-sub000/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[catalog-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	metadataClient, err := tmdb.NewHTTPClient(cfg.TMDbURL, cfg.TMDbAPIKey,
		time.Duration(cfg.TMDbTimeoutSecs)*time.Second, cfg.TMDbRatePerSec, logger)
	if err != nil {
		log.Fatalf("init metadata client: %v", err)
	}

	repo := repository.New(st)
	mapper := tmdb.NewMapper(tmdb.DefaultGenreLabels, cfg.TMDbImageBaseURL)
	runner := importer.New(metadataClient, mapper, importer.NewUpserter(repo.Catalog, logger), importer.Options{
		Concurrency: cfg.ImportConcurrency,
		MaxBatch:    cfg.ImportMaxBatch,
		RunTimeout:  time.Duration(cfg.ImportTimeoutSecs) * time.Second,
	}, logger)

	scheduler := startRefreshSchedule(ctx, cfg, runner, logger)
	if scheduler != nil {
		defer scheduler.Stop()
	}

	server := httpserver.New(cfg, st, repo, runner, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}

// startRefreshSchedule runs a recurring popular-listing refresh when
// IMPORT_REFRESH_CRON is set. Refresh runs with overwrite so stale
// metadata gets replaced; the upsert never writes review or watch
// counters.
func startRefreshSchedule(ctx context.Context, cfg config.Config, runner *importer.Importer, logger *log.Logger) *cron.Cron {
	if cfg.RefreshCron == "" {
		return nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.RefreshCron, func() {
		summary, err := runner.Run(ctx, importer.Popular(cfg.RefreshLimit, 0, 0, true))
		if err != nil {
			logger.Printf("scheduled refresh failed: %v", err)
			return
		}
		logger.Printf("scheduled refresh %s: created=%d updated=%d skipped=%d failed=%d",
			summary.RunID, summary.Created, summary.Updated, summary.Skipped, summary.Failed)
	})
	if err != nil {
		log.Fatalf("invalid IMPORT_REFRESH_CRON %q: %v", cfg.RefreshCron, err)
	}
	scheduler.Start()
	logger.Printf("scheduled catalog refresh: %s (limit %d)", cfg.RefreshCron, cfg.RefreshLimit)
	return scheduler
}
