package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstledger/internal/domain"
)

// MockProcessedDocumentRepo is a mock implementation of port.ProcessedDocumentRepository.
type MockProcessedDocumentRepo struct {
	mock.Mock
}

func (m *MockProcessedDocumentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ProcessedDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedDocument), args.Error(1)
}

func (m *MockProcessedDocumentRepo) Put(ctx context.Context, doc *domain.ProcessedDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockProcessedDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
