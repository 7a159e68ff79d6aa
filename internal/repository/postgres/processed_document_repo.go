package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstledger/internal/domain"
	"gstledger/internal/port"
)

type processedDocumentRepo struct {
	db *sqlx.DB
}

// NewProcessedDocumentRepo creates a new PostgreSQL-backed ProcessedDocumentRepository.
// The canonical set and each view are stored as JSONB columns of one row.
func NewProcessedDocumentRepo(db *sqlx.DB) port.ProcessedDocumentRepository {
	return &processedDocumentRepo{db: db}
}

func (r *processedDocumentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ProcessedDocument, error) {
	var doc domain.ProcessedDocument
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM processed_documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("processedDocumentRepo.Get: %w", err)
	}
	return &doc, nil
}

func (r *processedDocumentRepo) Put(ctx context.Context, doc *domain.ProcessedDocument) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO processed_documents (
			id, company_id, source_type, canonical, reverse_charge, mismatched, disallow,
			reconciled_with, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			source_type = EXCLUDED.source_type,
			canonical = EXCLUDED.canonical,
			reverse_charge = EXCLUDED.reverse_charge,
			mismatched = EXCLUDED.mismatched,
			disallow = EXCLUDED.disallow,
			reconciled_with = EXCLUDED.reconciled_with,
			updated_at = EXCLUDED.updated_at`,
		doc.ID, doc.CompanyID, doc.SourceType, doc.Canonical, doc.ReverseCharge, doc.Mismatched, doc.Disallow,
		doc.ReconciledWith, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("processedDocumentRepo.Put: %w", err)
	}
	return nil
}

func (r *processedDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM processed_documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("processedDocumentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
