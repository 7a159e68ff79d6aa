package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstledger/internal/domain"
)

// MockImportRepo is a mock implementation of port.ImportRepository.
type MockImportRepo struct {
	mock.Mock
}

func (m *MockImportRepo) Create(ctx context.Context, imp *domain.Import) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *MockImportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Import, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Import), args.Error(1)
}

func (m *MockImportRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Import, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Import), args.Int(1), args.Error(2)
}

func (m *MockImportRepo) UpdateStatus(ctx context.Context, imp *domain.Import) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *MockImportRepo) UpdateRows(ctx context.Context, imp *domain.Import) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *MockImportRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Import, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Import), args.Error(1)
}

func (m *MockImportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
