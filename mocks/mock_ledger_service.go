package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstledger/internal/domain"
	"gstledger/internal/service"
)

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Process(ctx context.Context, importID uuid.UUID) (*domain.ProcessedDocument, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedDocument), args.Error(1)
}

func (m *MockLedgerService) GetProcessed(ctx context.Context, id uuid.UUID) (*domain.ProcessedDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedDocument), args.Error(1)
}

func (m *MockLedgerService) UpdateLedgerFields(ctx context.Context, id uuid.UUID, view domain.ViewName, edits []domain.EditRequest) (*domain.ProcessedDocument, error) {
	args := m.Called(ctx, id, view, edits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedDocument), args.Error(1)
}

func (m *MockLedgerService) AppendRows(ctx context.Context, id uuid.UUID, rows []domain.RawRow) (*domain.ProcessedDocument, error) {
	args := m.Called(ctx, id, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedDocument), args.Error(1)
}

func (m *MockLedgerService) Reconcile(ctx context.Context, id, againstID uuid.UUID) (*service.ReconcileResult, error) {
	args := m.Called(ctx, id, againstID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileResult), args.Error(1)
}

func (m *MockLedgerService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
