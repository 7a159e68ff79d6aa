package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gstledger/internal/config"
	"gstledger/internal/handler"
	"gstledger/internal/lock"
	"gstledger/internal/logging"
	"gstledger/internal/lookup"
	"gstledger/internal/port"
	"gstledger/internal/rawimport"
	"gstledger/internal/repository/postgres"
	"gstledger/internal/router"
	"gstledger/internal/service"
	s3storage "gstledger/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	importRepo := postgres.NewImportRepo(db)
	docRepo := postgres.NewProcessedDocumentRepo(db)
	partyRepo := postgres.NewPartyRepo(db)
	stateRepo := postgres.NewStateRepo(db)

	states, err := lookup.LoadStateTable(sigCtx, stateRepo)
	if err != nil {
		return err
	}
	logger.WithField("states", states.Len()).Info("loaded state codes")

	mapping, err := rawimport.LoadMapping(cfg.Ledger.MappingFile)
	if err != nil {
		return fmt.Errorf("failed to load header mapping: %w", err)
	}

	// Document locks are distributed only when Redis is configured.
	var (
		locker    port.DocumentLocker
		lockStore handler.Pinger
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		redisLocker := lock.NewRedisLocker(rdb, lock.RedisConfig{
			TTL:   cfg.Redis.LockTTL,
			Wait:  cfg.Redis.LockWait,
			Retry: cfg.Redis.LockRetry,
		}, logger)
		locker, lockStore = redisLocker, redisLocker
		logger.WithField("addr", cfg.Redis.Addr).Info("using redis document locks")
	} else {
		locker = lock.NewKeyedQueue()
	}

	// Initialize storage
	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize services
	ledgerSvc := service.NewLedgerService(importRepo, docRepo, partyRepo, states, locker, mapping,
		service.LedgerServiceConfig{DisallowMarker: cfg.Ledger.DisallowMarker}, logger)
	importSvc := service.NewImportService(importRepo, storage, locker, mapping, &cfg.S3, logger)

	// Initialize handlers
	importH := handler.NewImportHandler(importSvc, ledgerSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	healthH := handler.NewHealthHandler(db, lockStore)

	r := router.Setup(logger, cfg.CORS.AllowedOrigins, importH, ledgerH, healthH)

	var workers sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if cfg.Queue.Enabled {
		worker := service.NewProcessQueueWorker(importRepo, ledgerSvc, service.ProcessQueueConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
		}, logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			worker.Start(workerCtx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Server.Port).Info("server starting")
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"component": "http"}).WithError(err).Error("graceful shutdown failed")
	}
	stopWorkers()
	workers.Wait()
	logger.Info("server stopped")
	return nil
}
