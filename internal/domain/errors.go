package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrLockNotObtained     = errors.New("document is locked by another mutation")
)

// NotFound-class errors. Each wraps ErrNotFound.
var (
	ErrImportNotFound   = fmt.Errorf("%w: import", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("%w: processed document", ErrNotFound)
	ErrViewEmpty        = fmt.Errorf("%w: view has no rows", ErrNotFound)
)

// InvalidInput-class errors. Each wraps ErrInvalidInput.
var (
	ErrNoMatchingRows      = fmt.Errorf("%w: no matching rows", ErrInvalidInput)
	ErrInvalidView         = fmt.Errorf("%w: unknown view", ErrInvalidInput)
	ErrInvalidAction       = fmt.Errorf("%w: action must be Accept, Reject or Pending", ErrInvalidInput)
	ErrInvalidSourceType   = fmt.Errorf("%w: source type must be gstr2a or gstr2b", ErrInvalidInput)
	ErrNoRows              = fmt.Errorf("%w: no rows", ErrInvalidInput)
	ErrNothingToReconcile  = fmt.Errorf("%w: other document contributes no invoice numbers", ErrInvalidInput)
	ErrReconcileSameSource = fmt.Errorf("%w: documents share a source type", ErrInvalidInput)
	ErrReconcileSelf       = fmt.Errorf("%w: cannot reconcile a document against itself", ErrInvalidInput)
	ErrReconcileCompany    = fmt.Errorf("%w: documents belong to different companies", ErrInvalidInput)
	ErrUnreadableFile      = fmt.Errorf("%w: file could not be read as a spreadsheet", ErrInvalidInput)
	ErrNoHeaderRow         = fmt.Errorf("%w: no recognizable header row", ErrInvalidInput)
)
