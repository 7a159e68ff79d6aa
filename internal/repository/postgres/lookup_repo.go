package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstledger/internal/domain"
	"gstledger/internal/port"
)

type stateRepo struct {
	db *sqlx.DB
}

// NewStateRepo creates a new PostgreSQL-backed StateRepository.
func NewStateRepo(db *sqlx.DB) port.StateRepository {
	return &stateRepo{db: db}
}

func (r *stateRepo) LoadAll(ctx context.Context) ([]domain.StateCode, error) {
	var entries []domain.StateCode
	err := r.db.SelectContext(ctx, &entries,
		`SELECT code, name FROM gst_state_codes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("stateRepo.LoadAll: %w", err)
	}
	return entries, nil
}

type partyRepo struct {
	db *sqlx.DB
}

// NewPartyRepo creates a new PostgreSQL-backed PartyRepository.
func NewPartyRepo(db *sqlx.DB) port.PartyRepository {
	return &partyRepo{db: db}
}

func (r *partyRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Party, error) {
	var parties []domain.Party
	err := r.db.SelectContext(ctx, &parties,
		`SELECT id, company_id, gstin, name FROM parties WHERE company_id = $1 ORDER BY gstin`, companyID)
	if err != nil {
		return nil, fmt.Errorf("partyRepo.ListByCompany: %w", err)
	}
	return parties, nil
}

// Upsert keys parties by (company_id, gstin); an existing party keeps its ID and takes the new name.
func (r *partyRepo) Upsert(ctx context.Context, party *domain.Party) error {
	if party.ID == uuid.Nil {
		party.ID = uuid.New()
	}
	party.GSTIN = strings.ToUpper(strings.TrimSpace(party.GSTIN))

	err := r.db.GetContext(ctx, &party.ID,
		`INSERT INTO parties (id, company_id, gstin, name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (company_id, gstin) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		party.ID, party.CompanyID, party.GSTIN, party.Name)
	if err != nil {
		return fmt.Errorf("partyRepo.Upsert: %w", err)
	}
	return nil
}
