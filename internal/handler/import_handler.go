package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstledger/internal/domain"
	"gstledger/internal/service"
)

// ImportHandler handles export upload and processing endpoints.
type ImportHandler struct {
	importService service.ImportService
	ledgerService service.LedgerService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService, ledgerService service.LedgerService) *ImportHandler {
	return &ImportHandler{importService: importService, ledgerService: ledgerService}
}

// Upload handles POST /api/v1/imports
// Form fields: file (xlsx, xls or csv), source_type (gstr2a|gstr2b), company_id.
func (h *ImportHandler) Upload(c *gin.Context) {
	companyID, err := uuid.Parse(c.PostForm("company_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_COMPANY_ID", "company_id must be a UUID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.importService.Upload(c.Request.Context(), service.UploadImportInput{
		CompanyID:  companyID,
		SourceType: domain.SourceType(c.PostForm("source_type")),
		FileName:   header.Filename,
		Size:       header.Size,
		File:       file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, res)
}

// List handles GET /api/v1/imports?company_id=
func (h *ImportHandler) List(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_COMPANY_ID", "company_id query parameter must be a UUID")
		return
	}
	offset, limit := pagination(c)

	imports, total, err := h.importService.List(c.Request.Context(), companyID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, imports, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/imports/:id
func (h *ImportHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	imp, err := h.importService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, imp)
}

// Download handles GET /api/v1/imports/:id/file
func (h *ImportHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	url, err := h.importService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Process handles POST /api/v1/imports/:id/process
// With ?async=true the import is queued for the background worker instead.
func (h *ImportHandler) Process(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if c.Query("async") == "true" {
		imp, err := h.importService.Enqueue(c.Request.Context(), id)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondAccepted(c, imp)
		return
	}

	doc, err := h.ledgerService.Process(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Reparse handles POST /api/v1/imports/:id/reparse
func (h *ImportHandler) Reparse(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.importService.Reparse(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// Delete handles DELETE /api/v1/imports/:id
func (h *ImportHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.importService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "import deleted"})
}
