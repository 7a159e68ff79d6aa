package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gstledger/internal/config"
	"gstledger/internal/domain"
	"gstledger/internal/logging"
	"gstledger/internal/port"
	"gstledger/internal/rawimport"
)

// UploadImportInput is the DTO for export upload requests.
type UploadImportInput struct {
	CompanyID  uuid.UUID
	SourceType domain.SourceType
	FileName   string
	Size       int64
	File       io.Reader
}

// ImportResult is an import together with the headers its parser did not recognize.
type ImportResult struct {
	Import   *domain.Import               `json:"import"`
	Unmapped []rawimport.HeaderSuggestion `json:"unmapped_headers"`
}

// ImportService defines the uploaded export contract.
type ImportService interface {
	Upload(ctx context.Context, input UploadImportInput) (*ImportResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Import, error)
	List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Import, int, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	// Enqueue marks an import for background processing by the queue worker.
	Enqueue(ctx context.Context, id uuid.UUID) (*domain.Import, error)
	// Reparse re-reads the stored original file with the current header aliases.
	Reparse(ctx context.Context, id uuid.UUID) (*ImportResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type importService struct {
	imports  port.ImportRepository
	storage  port.ObjectStorage
	locker   port.DocumentLocker
	profiles ProfileSource
	cfg      *config.S3Config
	log      *logrus.Entry
}

// NewImportService creates a new ImportService implementation.
func NewImportService(
	imports port.ImportRepository,
	storage port.ObjectStorage,
	locker port.DocumentLocker,
	profiles ProfileSource,
	cfg *config.S3Config,
	logger logrus.FieldLogger,
) ImportService {
	return &importService{
		imports:  imports,
		storage:  storage,
		locker:   locker,
		profiles: profiles,
		cfg:      cfg,
		log:      logging.Module(logger, "importService"),
	}
}

func fileTypeOf(name string) (domain.FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := domain.AllowedExtensions[ext]
	return ft, ok
}

func (s *importService) parse(data []byte, fileName string, source domain.SourceType) (*rawimport.Result, error) {
	fileType, ok := fileTypeOf(fileName)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	profile, err := s.profiles.Profile(source)
	if err != nil {
		return nil, err
	}
	return rawimport.Parse(bytes.NewReader(data), fileType, profile)
}

func (s *importService) Upload(ctx context.Context, input UploadImportInput) (*ImportResult, error) {
	if !domain.ValidSourceTypes[input.SourceType] {
		return nil, domain.ErrInvalidSourceType
	}
	fileType, ok := fileTypeOf(input.FileName)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	// Size comes from the client; read one byte past the limit to enforce it.
	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Parse before storing anything so a bad file leaves no trace.
	parsed, err := s.parse(data, input.FileName, input.SourceType)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := fmt.Sprintf("companies/%s/imports/%s/%s", input.CompanyID, id, filepath.Base(input.FileName))
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.AllowedFileTypes[fileType],
		Size:        int64(len(data)),
		Metadata: map[string]string{
			"company-id":  input.CompanyID.String(),
			"source-type": string(input.SourceType),
		},
	})
	if err != nil {
		s.log.WithField("import_id", id).WithError(err).Error("upload to storage failed")
		return nil, domain.ErrUploadFailed
	}

	imp := &domain.Import{
		ID:         id,
		CompanyID:  input.CompanyID,
		SourceType: input.SourceType,
		FileName:   filepath.Base(input.FileName),
		S3Bucket:   s.cfg.Bucket,
		S3Key:      key,
		Rows:       parsed.Rows,
		RowCount:   len(parsed.Rows),
		Status:     domain.ImportStatusPending,
	}
	if err := s.imports.Create(ctx, imp); err != nil {
		// Best effort: do not leave an orphaned object behind.
		_ = s.storage.Delete(ctx, s.cfg.Bucket, key)
		return nil, fmt.Errorf("creating import: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"import_id":   id,
		"company_id":  input.CompanyID,
		"source_type": input.SourceType,
		"rows":        len(parsed.Rows),
		"unmapped":    len(parsed.Unmapped),
	}).Info("stored import")
	return &ImportResult{Import: imp, Unmapped: parsed.Unmapped}, nil
}

func (s *importService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Import, error) {
	return s.imports.GetByID(ctx, id)
}

func (s *importService) List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Import, int, error) {
	return s.imports.ListByCompany(ctx, companyID, offset, limit)
}

func (s *importService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	imp, err := s.imports.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, imp.S3Bucket, imp.S3Key, imp.FileName, s.cfg.PresignExpiry)
}

func (s *importService) Enqueue(ctx context.Context, id uuid.UUID) (*domain.Import, error) {
	imp, err := s.imports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if imp.RowCount == 0 && len(imp.Rows) == 0 {
		return nil, domain.ErrNoRows
	}
	if imp.Status == domain.ImportStatusQueued || imp.Status == domain.ImportStatusProcessing {
		return imp, nil
	}
	imp.Status = domain.ImportStatusQueued
	imp.ProcessAttempts = 0
	imp.ProcessError = ""
	if err := s.imports.UpdateStatus(ctx, imp); err != nil {
		return nil, err
	}
	s.log.WithField("import_id", id).Info("queued import for processing")
	return imp, nil
}

func (s *importService) Reparse(ctx context.Context, id uuid.UUID) (*ImportResult, error) {
	imp, err := s.imports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, imp.S3Bucket, imp.S3Key)
	if err != nil {
		return nil, fmt.Errorf("downloading original: %w", err)
	}
	parsed, err := s.parse(data, imp.FileName, imp.SourceType)
	if err != nil {
		return nil, err
	}

	imp.Rows = parsed.Rows
	imp.RowCount = len(parsed.Rows)
	if err := s.imports.UpdateRows(ctx, imp); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"import_id": id, "rows": imp.RowCount}).Info("reparsed import")
	return &ImportResult{Import: imp, Unmapped: parsed.Unmapped}, nil
}

// Delete removes the import and, through the store, its processed document. The
// stored file is removed after the rows so a storage failure never leaves a
// dangling import.
func (s *importService) Delete(ctx context.Context, id uuid.UUID) error {
	release, err := s.locker.Acquire(ctx, LockKey(id))
	if err != nil {
		return err
	}
	defer release()

	imp, err := s.imports.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.imports.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, imp.S3Bucket, imp.S3Key); err != nil {
		s.log.WithField("import_id", id).WithError(err).Warn("deleting stored file failed")
	}
	s.log.WithField("import_id", id).Info("deleted import")
	return nil
}
