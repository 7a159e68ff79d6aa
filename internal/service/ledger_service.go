package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
	"gstledger/internal/logging"
	"gstledger/internal/lookup"
	"gstledger/internal/port"
)

// ProfileSource resolves the column profile for a filing source.
type ProfileSource interface {
	Profile(t domain.SourceType) (ledger.SourceProfile, error)
}

// ReconcileResult is the outcome of removing another document's invoices from a document.
type ReconcileResult struct {
	Document *domain.ProcessedDocument `json:"document"`
	Removed  int                       `json:"removed"`
}

// LedgerService defines the processed document contract. Every mutation holds the
// document's lock across load, change and save.
type LedgerService interface {
	Process(ctx context.Context, importID uuid.UUID) (*domain.ProcessedDocument, error)
	GetProcessed(ctx context.Context, id uuid.UUID) (*domain.ProcessedDocument, error)
	UpdateLedgerFields(ctx context.Context, id uuid.UUID, view domain.ViewName, edits []domain.EditRequest) (*domain.ProcessedDocument, error)
	AppendRows(ctx context.Context, id uuid.UUID, rows []domain.RawRow) (*domain.ProcessedDocument, error)
	Reconcile(ctx context.Context, id, againstID uuid.UUID) (*ReconcileResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerServiceConfig holds classification settings.
type LedgerServiceConfig struct {
	DisallowMarker string
}

type ledgerService struct {
	imports  port.ImportRepository
	docs     port.ProcessedDocumentRepository
	parties  port.PartyRepository
	states   ledger.StateLookup
	locker   port.DocumentLocker
	profiles ProfileSource
	cfg      LedgerServiceConfig
	log      *logrus.Entry
}

// NewLedgerService creates a new LedgerService implementation.
func NewLedgerService(
	imports port.ImportRepository,
	docs port.ProcessedDocumentRepository,
	parties port.PartyRepository,
	states ledger.StateLookup,
	locker port.DocumentLocker,
	profiles ProfileSource,
	cfg LedgerServiceConfig,
	logger logrus.FieldLogger,
) LedgerService {
	return &ledgerService{
		imports:  imports,
		docs:     docs,
		parties:  parties,
		states:   states,
		locker:   locker,
		profiles: profiles,
		cfg:      cfg,
		log:      logging.Module(logger, "ledgerService"),
	}
}

// LockKey is the locker key guarding one processed document.
func LockKey(id uuid.UUID) string {
	return "ledger:" + id.String()
}

func (s *ledgerService) engine(ctx context.Context, companyID uuid.UUID, source domain.SourceType) (*ledger.Engine, error) {
	profile, err := s.profiles.Profile(source)
	if err != nil {
		return nil, err
	}
	parties, err := s.parties.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading parties: %w", err)
	}
	return ledger.NewEngine(profile, s.states,
		ledger.WithParties(lookup.NewPartyDirectory(parties)),
		ledger.WithDisallowMarker(s.cfg.DisallowMarker),
	), nil
}

func (s *ledgerService) Process(ctx context.Context, importID uuid.UUID) (*domain.ProcessedDocument, error) {
	release, err := s.locker.Acquire(ctx, LockKey(importID))
	if err != nil {
		return nil, err
	}
	defer release()

	imp, err := s.imports.GetByID(ctx, importID)
	if err != nil {
		return nil, err
	}
	if len(imp.Rows) == 0 {
		return nil, domain.ErrNoRows
	}

	e, err := s.engine(ctx, imp.CompanyID, imp.SourceType)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.Get(ctx, importID)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, err
		}
		doc = &domain.ProcessedDocument{ID: imp.ID, CompanyID: imp.CompanyID}
	}
	doc.SourceType = imp.SourceType

	res := e.Process(imp.Rows, 0)
	res.Apply(doc)
	if err := s.docs.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving processed document: %w", err)
	}

	imp.Status = domain.ImportStatusProcessed
	imp.ProcessError = ""
	if err := s.imports.UpdateStatus(ctx, imp); err != nil {
		s.log.WithField("document_id", importID).WithError(err).Warn("marking import processed failed")
	}

	s.log.WithFields(logrus.Fields{
		"document_id":    doc.ID,
		"rows":           len(imp.Rows),
		"duplicates":     res.Duplicates,
		"reverse_charge": len(doc.ReverseCharge),
		"mismatched":     len(doc.Mismatched),
		"disallow":       len(doc.Disallow),
	}).Info("processed import")
	return doc, nil
}

func (s *ledgerService) GetProcessed(ctx context.Context, id uuid.UUID) (*domain.ProcessedDocument, error) {
	return s.docs.Get(ctx, id)
}

func (s *ledgerService) UpdateLedgerFields(ctx context.Context, id uuid.UUID, view domain.ViewName, edits []domain.EditRequest) (*domain.ProcessedDocument, error) {
	if !domain.ValidViews[view] {
		return nil, domain.ErrInvalidView
	}

	release, err := s.locker.Acquire(ctx, LockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := s.engine(ctx, doc.CompanyID, doc.SourceType)
	if err != nil {
		return nil, err
	}

	changed, err := e.Synchronize(doc, view, edits)
	if err != nil {
		return nil, err
	}
	if !changed {
		return doc, nil
	}
	if err := s.docs.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving processed document: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"document_id": id,
		"view":        view,
		"edits":       len(edits),
	}).Info("synchronized ledger fields")
	return doc, nil
}

func (s *ledgerService) AppendRows(ctx context.Context, id uuid.UUID, rows []domain.RawRow) (*domain.ProcessedDocument, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoRows
	}

	release, err := s.locker.Acquire(ctx, LockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := s.engine(ctx, doc.CompanyID, doc.SourceType)
	if err != nil {
		return nil, err
	}

	added, err := e.Append(doc, rows)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving processed document: %w", err)
	}

	s.log.WithFields(logrus.Fields{"document_id": id, "added": added}).Info("appended rows")
	return doc, nil
}

// Reconcile locks only the document being changed; the other one is read as of now.
func (s *ledgerService) Reconcile(ctx context.Context, id, againstID uuid.UUID) (*ReconcileResult, error) {
	if id == againstID {
		return nil, domain.ErrReconcileSelf
	}

	release, err := s.locker.Acquire(ctx, LockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	other, err := s.docs.Get(ctx, againstID)
	if err != nil {
		return nil, err
	}
	if other.CompanyID != doc.CompanyID {
		return nil, domain.ErrReconcileCompany
	}
	if other.SourceType == doc.SourceType {
		return nil, domain.ErrReconcileSameSource
	}

	removed, err := ledger.Reconcile(doc, other)
	if err != nil {
		return nil, err
	}
	doc.ReconciledWith = &other.ID
	if err := s.docs.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving processed document: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"document_id": id,
		"against":     againstID,
		"removed":     removed,
	}).Info("reconciled documents")
	return &ReconcileResult{Document: doc, Removed: removed}, nil
}

func (s *ledgerService) Delete(ctx context.Context, id uuid.UUID) error {
	release, err := s.locker.Acquire(ctx, LockKey(id))
	if err != nil {
		return err
	}
	defer release()

	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("document_id", id).Info("deleted processed document")
	return nil
}
