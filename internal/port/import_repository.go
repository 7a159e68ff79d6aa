package port

import (
	"context"

	"github.com/google/uuid"

	"gstledger/internal/domain"
)

// ImportRepository defines the contract for uploaded export persistence.
type ImportRepository interface {
	Create(ctx context.Context, imp *domain.Import) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Import, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Import, int, error)
	UpdateStatus(ctx context.Context, imp *domain.Import) error
	// UpdateRows replaces the parsed raw rows and row count.
	UpdateRows(ctx context.Context, imp *domain.Import) error
	// ClaimQueued atomically moves up to limit queued imports to processing and returns them.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Import, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProcessedDocumentRepository is the document store for canonical record sets and their views.
type ProcessedDocumentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ProcessedDocument, error)
	// Put inserts or fully replaces the document with the same ID.
	Put(ctx context.Context, doc *domain.ProcessedDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
}
