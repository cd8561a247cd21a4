package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitacora/internal/amqp"
	"bitacora/internal/backend"
	"bitacora/internal/cache"
	"bitacora/internal/cli"
	"bitacora/internal/evidence"
	apphttp "bitacora/internal/http"
	"bitacora/internal/ingest"
	igoogle "bitacora/internal/ingest/google"
	"bitacora/internal/log"
	"bitacora/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// Store backend
	be, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store backend", log.FieldError, err.Error(), log.FieldBackend, cfg.StoreBackend)
		os.Exit(1)
	}
	if be.Cleanup != nil {
		defer func() {
			if err := be.Cleanup(); err != nil {
				logger.Error("Store cleanup error", log.FieldError, err.Error())
			}
		}()
	}

	// AMQP eventing (optional)
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.New(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without eventing", log.FieldError, err.Error())
		} else {
			defer events.Close()
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ingestor := ingest.NewService(be.Store, events, logger, cfg.IngestTimeout)

	cacheManager := cache.NewManager()
	cacheManager.Register(ingestor.Cache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	// Remote source: the Sheets API wins over the published CSV export
	var remote ingest.Source
	switch {
	case cfg.GoogleSpreadsheetID != "":
		remote, err = igoogle.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets source", log.FieldError, err.Error())
			os.Exit(1)
		}
		logger.Info("Remote source configured", log.FieldSource, remote.Name())
	case cfg.SheetCSVURL != "":
		remote = ingest.NewRemoteCSV(cfg.SheetCSVURL)
		logger.Info("Remote source configured", log.FieldSource, remote.Name(), log.FieldURL, cfg.SheetCSVURL)
	default:
		logger.Info("No remote source configured")
	}

	evidenceStore, err := evidence.NewStore(cfg.EvidenceDir)
	if err != nil {
		logger.Error("Failed to initialize evidence store", log.FieldError, err.Error(), log.FieldPath, cfg.EvidenceDir)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Store:    be.Store,
		Sessions: session.NewManager(be.Store),
		Ingestor: ingestor,
		Remote:   remote,
		Evidence: evidenceStore,
		Events:   events,
		Logger:   logger,
		PageSize: cfg.PageSize,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Directory watcher (optional)
	if cfg.WatchDir != "" {
		watcher := ingest.NewWatcher(cfg.WatchDir, ingestor, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Watcher stopped", log.FieldError, err.Error(), log.FieldPath, cfg.WatchDir)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting bitacora server",
		"port", cfg.Port,
		log.FieldBackend, cfg.StoreBackend,
		"page_size", cfg.PageSize)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
