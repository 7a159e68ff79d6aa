package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstledger/internal/domain"
	"gstledger/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *PagMeta  `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response for work handed to the queue.
func RespondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data any, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Specific sentinels are matched before the NotFound and InvalidInput classes they wrap.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrImportNotFound):
		return http.StatusNotFound, "IMPORT_NOT_FOUND", "import not found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND", "processed document not found"
	case errors.Is(err, domain.ErrViewEmpty):
		return http.StatusNotFound, "VIEW_EMPTY", "view has no rows"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrLockNotObtained):
		return http.StatusConflict, "DOCUMENT_BUSY", "document is being changed by another request; retry"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: xlsx, xls, csv"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrNoMatchingRows):
		return http.StatusBadRequest, "NO_MATCHING_ROWS", "no edit addressed a row of the view"
	case errors.Is(err, domain.ErrInvalidView):
		return http.StatusBadRequest, "INVALID_VIEW", "view must be canonical, reverse_charge, mismatched or disallow"
	case errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, "INVALID_ACTION", "action must be Accept, Reject or Pending"
	case errors.Is(err, domain.ErrInvalidSourceType):
		return http.StatusBadRequest, "INVALID_SOURCE_TYPE", "source type must be gstr2a or gstr2b"
	case errors.Is(err, domain.ErrNoRows):
		return http.StatusBadRequest, "NO_ROWS", "no rows to process"
	case errors.Is(err, domain.ErrNothingToReconcile):
		return http.StatusBadRequest, "NOTHING_TO_RECONCILE", "other document has no invoice numbers"
	case errors.Is(err, domain.ErrReconcileSameSource):
		return http.StatusBadRequest, "RECONCILE_SAME_SOURCE", "documents must come from different filing sources"
	case errors.Is(err, domain.ErrReconcileSelf):
		return http.StatusBadRequest, "RECONCILE_SELF", "cannot reconcile a document against itself"
	case errors.Is(err, domain.ErrReconcileCompany):
		return http.StatusBadRequest, "RECONCILE_COMPANY", "documents belong to different companies"
	case errors.Is(err, domain.ErrUnreadableFile):
		return http.StatusBadRequest, "UNREADABLE_FILE", "file could not be read as a spreadsheet"
	case errors.Is(err, domain.ErrNoHeaderRow):
		return http.StatusBadRequest, "NO_HEADER_ROW", "no recognizable header row in the first rows of the file"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", "invalid input"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		middleware.GetLogger(c).WithError(err).Error("internal error")
	}
	RespondError(c, status, code, msg)
}

// parseID reads a UUID path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads offset and limit, clamping limit to 1..100.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
