package port

import (
	"context"

	"github.com/google/uuid"

	"gstledger/internal/domain"
)

// StateRepository defines the contract for GST state code reference data.
type StateRepository interface {
	LoadAll(ctx context.Context) ([]domain.StateCode, error)
}

// PartyRepository defines the contract for a company's supplier directory.
type PartyRepository interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Party, error)
	Upsert(ctx context.Context, party *domain.Party) error
}
