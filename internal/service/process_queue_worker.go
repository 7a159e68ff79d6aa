package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gstledger/internal/domain"
	"gstledger/internal/logging"
	"gstledger/internal/port"
)

// ProcessQueueConfig holds settings for the process queue worker.
type ProcessQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
	// Timeout bounds a single processing run.
	Timeout time.Duration
}

// ProcessQueueWorker polls for queued imports and classifies them off the request path.
type ProcessQueueWorker struct {
	imports port.ImportRepository
	ledger  LedgerService
	cfg     ProcessQueueConfig
	log     *logrus.Entry
	wg      sync.WaitGroup
}

// NewProcessQueueWorker creates a new ProcessQueueWorker.
func NewProcessQueueWorker(imports port.ImportRepository, ledger LedgerService, cfg ProcessQueueConfig, logger logrus.FieldLogger) *ProcessQueueWorker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &ProcessQueueWorker{
		imports: imports,
		ledger:  ledger,
		cfg:     cfg,
		log:     logging.Module(logger, "processQueueWorker"),
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight runs have finished.
func (w *ProcessQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.log.WithFields(logrus.Fields{
		"poll":        w.cfg.PollInterval,
		"concurrency": w.cfg.Concurrency,
		"max_retries": w.cfg.MaxRetries,
	}).Info("started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("shutting down, waiting for in-flight runs")
			w.wg.Wait()
			w.log.Info("shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *ProcessQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	available := w.cfg.Concurrency - len(sem)
	if available <= 0 {
		return
	}

	claimed, err := w.imports.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() == nil {
			w.log.WithError(err).Error("claiming queued imports failed")
		}
		return
	}

	for i := range claimed {
		imp := claimed[i]

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// Detached from the poll context so shutdown lets runs finish.
			runCtx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
			defer cancel()
			w.run(runCtx, &imp)
		}()
	}
}

// run processes one claimed import and records the outcome on it. Input errors
// fail immediately; anything else is retried until MaxRetries attempts are used.
func (w *ProcessQueueWorker) run(ctx context.Context, imp *domain.Import) {
	entry := w.log.WithFields(logrus.Fields{"import_id": imp.ID, "attempt": imp.ProcessAttempts})
	entry.Info("dispatching import")

	_, err := w.ledger.Process(ctx, imp.ID)
	if err == nil {
		return
	}

	imp.ProcessError = err.Error()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		entry.WithError(err).Warn("import vanished before processing")
		return
	case errors.Is(err, domain.ErrInvalidInput), imp.ProcessAttempts >= w.cfg.MaxRetries:
		imp.Status = domain.ImportStatusFailed
		entry.WithError(err).Error("processing failed")
	default:
		imp.Status = domain.ImportStatusQueued
		entry.WithError(err).Warn("processing failed, will retry")
	}
	if uerr := w.imports.UpdateStatus(ctx, imp); uerr != nil {
		entry.WithError(uerr).Error("recording processing outcome failed")
	}
}
