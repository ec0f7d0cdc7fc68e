package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"places-crawler/internal/config"
	"places-crawler/internal/crawler"
	"places-crawler/internal/storage"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	store := storage.NewFileStore(cfg.CheckpointFile)
	cp := store.Load()
	log.Infof("starting crawl, %d articles already processed", cp.Processed.Len())

	fetcher, cleanup, err := buildFetcher(cfg)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	defer cleanup()

	opts := crawler.Options{
		StartURL:    cfg.StartURL,
		MaxLoadMore: cfg.MaxLoadMore,
	}
	if cfg.NoDelay {
		opts.Delays = crawler.NoDelays
	}

	extras := []crawler.Option{
		crawler.WithGate(crawler.NewPoliteness(cfg.RateLimit, "places-crawler")),
		crawler.WithClassifier(crawler.NewClassifier(cfg.BlockedSegments)),
	}
	if cfg.DatabaseURL != "" {
		db := waitForDB(cfg.DatabaseURL)
		defer db.Close()
		sink, err := storage.NewDestinationSink(db)
		if err != nil {
			log.Fatalf("setup sink: %v", err)
		}
		extras = append(extras, crawler.WithSink(sink))
	}

	orch := crawler.NewOrchestrator(opts, fetcher, store, extras...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := orch.Run(ctx, cp)
	switch {
	case err == nil:
	case errors.Is(err, crawler.ErrSetup):
		log.Fatalf("unrecoverable: %v", err)
	default:
		// Interrupted mid-run; the checkpoint already holds every
		// completed article, so write what we have and exit cleanly.
		log.WithError(err).Warn("run interrupted")
	}

	if err := storage.WriteOutput(cfg.OutputFile, cp.Countries); err != nil {
		log.WithError(err).Error("failed to write final output")
	}
	log.Infof("done: %d scraped, %d failed, %d skipped across %d regions",
		stats.Scraped, stats.Failed, stats.Skipped, stats.Regions)
}

func buildFetcher(cfg *config.Config) (crawler.Fetcher, func(), error) {
	if strings.EqualFold(cfg.Backend, "static") {
		return crawler.NewStaticFetcher(cfg.UserAgent, cfg.NavTimeout), func() {}, nil
	}
	browser, err := crawler.NewBrowser(crawler.BrowserConfig{
		Headless:        cfg.Headless,
		UserAgent:       cfg.UserAgent,
		NavTimeout:      cfg.NavTimeout,
		SelectorTimeout: cfg.SelectorTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return browser, browser.Close, nil
}

func waitForDB(url string) *sql.DB {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("pgx", url)
		if err == nil {
			if err = db.Ping(); err == nil {
				log.Info("connected to database")
				return db
			}
		}
		log.Infof("waiting for database... (%v)", err)
		time.Sleep(2 * time.Second)
	}
	log.Fatalf("could not connect to database after retries: %v", err)
	return nil
}
