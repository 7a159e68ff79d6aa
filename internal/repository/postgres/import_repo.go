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

// importSummaryColumns is every column except the raw rows payload.
const importSummaryColumns = `id, company_id, source_type, file_name, s3_bucket, s3_key,
	row_count, status, process_attempts, process_error, created_at, updated_at`

type importRepo struct {
	db *sqlx.DB
}

// NewImportRepo creates a new PostgreSQL-backed ImportRepository.
func NewImportRepo(db *sqlx.DB) port.ImportRepository {
	return &importRepo{db: db}
}

func (r *importRepo) Create(ctx context.Context, imp *domain.Import) error {
	now := time.Now().UTC()
	imp.CreatedAt = now
	imp.UpdatedAt = now
	imp.RowCount = len(imp.Rows)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO imports (
			id, company_id, source_type, file_name, s3_bucket, s3_key,
			rows, row_count, status, process_attempts, process_error,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		imp.ID, imp.CompanyID, imp.SourceType, imp.FileName, imp.S3Bucket, imp.S3Key,
		imp.Rows, imp.RowCount, imp.Status, imp.ProcessAttempts, imp.ProcessError,
		imp.CreatedAt, imp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("importRepo.Create: %w", err)
	}
	return nil
}

func (r *importRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Import, error) {
	var imp domain.Import
	err := r.db.GetContext(ctx, &imp, "SELECT * FROM imports WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrImportNotFound
		}
		return nil, fmt.Errorf("importRepo.GetByID: %w", err)
	}
	return &imp, nil
}

func (r *importRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Import, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM imports WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("importRepo.ListByCompany count: %w", err)
	}

	var imports []domain.Import
	err = r.db.SelectContext(ctx, &imports,
		`SELECT `+importSummaryColumns+` FROM imports WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("importRepo.ListByCompany: %w", err)
	}
	return imports, total, nil
}

func (r *importRepo) UpdateStatus(ctx context.Context, imp *domain.Import) error {
	imp.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE imports SET
			status = $1, process_attempts = $2, process_error = $3, updated_at = $4
		 WHERE id = $5`,
		imp.Status, imp.ProcessAttempts, imp.ProcessError, imp.UpdatedAt, imp.ID)
	if err != nil {
		return fmt.Errorf("importRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrImportNotFound
	}
	return nil
}

func (r *importRepo) UpdateRows(ctx context.Context, imp *domain.Import) error {
	imp.UpdatedAt = time.Now().UTC()
	imp.RowCount = len(imp.Rows)
	result, err := r.db.ExecContext(ctx,
		`UPDATE imports SET rows = $1, row_count = $2, updated_at = $3 WHERE id = $4`,
		imp.Rows, imp.RowCount, imp.UpdatedAt, imp.ID)
	if err != nil {
		return fmt.Errorf("importRepo.UpdateRows: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrImportNotFound
	}
	return nil
}

// ClaimQueued uses SKIP LOCKED so concurrent workers never claim the same import.
func (r *importRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Import, error) {
	var imports []domain.Import
	err := r.db.SelectContext(ctx, &imports,
		`UPDATE imports SET status = $1, process_attempts = process_attempts + 1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM imports WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ImportStatusProcessing, domain.ImportStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("importRepo.ClaimQueued: %w", err)
	}
	return imports, nil
}

// Delete removes the import; its processed document goes with it through the foreign key.
func (r *importRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM imports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("importRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrImportNotFound
	}
	return nil
}
