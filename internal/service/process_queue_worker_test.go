package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gstledger/internal/domain"
	"gstledger/internal/logging"
	"gstledger/internal/service"
	"gstledger/mocks"
)

func queueConfig() service.ProcessQueueConfig {
	return service.ProcessQueueConfig{
		PollInterval: 20 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
		Timeout:      time.Second,
	}
}

// runWorker starts the worker, waits for cond and then shuts it down.
func runWorker(t *testing.T, w *service.ProcessQueueWorker, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	assert.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

// signal returns a Run hook that records a call without blocking.
func signal(ch chan struct{}) func(mock.Arguments) {
	return func(mock.Arguments) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func claimOnce(repo *mocks.MockImportRepo, imp domain.Import) {
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.Import{imp}, nil).Once()
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.Import{}, nil).Maybe()
}

func TestProcessQueueWorker_DispatchesClaimedImports(t *testing.T) {
	repo := new(mocks.MockImportRepo)
	ledger := new(mocks.MockLedgerService)
	imp := domain.Import{ID: uuid.New(), Status: domain.ImportStatusProcessing, ProcessAttempts: 1}
	claimOnce(repo, imp)
	processed := make(chan struct{}, 1)
	ledger.On("Process", mock.Anything, imp.ID).Run(signal(processed)).
		Return(&domain.ProcessedDocument{ID: imp.ID}, nil)

	w := service.NewProcessQueueWorker(repo, ledger, queueConfig(), logging.Discard())
	runWorker(t, w, func() bool { return len(processed) > 0 })

	ledger.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestProcessQueueWorker_Failures(t *testing.T) {
	tests := []struct {
		name       string
		attempts   int
		err        error
		wantStatus domain.ImportStatus
	}{
		{"transient error is requeued", 1, errors.New("connection reset"), domain.ImportStatusQueued},
		{"retries exhausted", 3, errors.New("connection reset"), domain.ImportStatusFailed},
		{"invalid input fails at once", 1, domain.ErrNoRows, domain.ImportStatusFailed},
		{"lock contention is retried", 1, domain.ErrLockNotObtained, domain.ImportStatusQueued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockImportRepo)
			ledger := new(mocks.MockLedgerService)
			imp := domain.Import{ID: uuid.New(), Status: domain.ImportStatusProcessing, ProcessAttempts: tt.attempts}
			claimOnce(repo, imp)
			ledger.On("Process", mock.Anything, imp.ID).Return(nil, tt.err)

			updated := make(chan *domain.Import, 1)
			repo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*domain.Import")).
				Run(func(args mock.Arguments) { updated <- args.Get(1).(*domain.Import) }).
				Return(nil).Once()

			w := service.NewProcessQueueWorker(repo, ledger, queueConfig(), logging.Discard())
			runWorker(t, w, func() bool { return len(updated) > 0 })

			got := <-updated
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.err.Error(), got.ProcessError)
		})
	}
}

func TestProcessQueueWorker_VanishedImportIsDropped(t *testing.T) {
	repo := new(mocks.MockImportRepo)
	ledger := new(mocks.MockLedgerService)
	imp := domain.Import{ID: uuid.New(), ProcessAttempts: 1}
	claimOnce(repo, imp)
	processed := make(chan struct{}, 1)
	ledger.On("Process", mock.Anything, imp.ID).Run(signal(processed)).Return(nil, domain.ErrImportNotFound)

	w := service.NewProcessQueueWorker(repo, ledger, queueConfig(), logging.Discard())
	runWorker(t, w, func() bool { return len(processed) > 0 })

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestProcessQueueWorker_ClaimsWithinConcurrency(t *testing.T) {
	repo := new(mocks.MockImportRepo)
	ledger := new(mocks.MockLedgerService)
	polled := make(chan struct{}, 1)
	repo.On("ClaimQueued", mock.Anything, 2).Run(signal(polled)).Return([]domain.Import{}, nil)

	w := service.NewProcessQueueWorker(repo, ledger, queueConfig(), logging.Discard())
	runWorker(t, w, func() bool { return len(polled) > 0 })

	repo.AssertCalled(t, "ClaimQueued", mock.Anything, 2)
}
