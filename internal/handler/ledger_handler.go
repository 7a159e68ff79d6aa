package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gstledger/internal/domain"
	"gstledger/internal/service"
)

// LedgerHandler handles processed document endpoints.
type LedgerHandler struct {
	ledgerService service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// UpdateViewRequest carries the edits for one view.
type UpdateViewRequest struct {
	Edits []domain.EditRequest `json:"edits" binding:"required"`
}

// AppendRowsRequest carries manually entered raw rows.
type AppendRowsRequest struct {
	Rows []domain.RawRow `json:"rows" binding:"required"`
}

// ReconcileRequest names the document whose invoices are removed.
type ReconcileRequest struct {
	Against uuid.UUID `json:"against" binding:"required"`
}

// Get handles GET /api/v1/ledgers/:id
// With ?view= only that view's rows are returned.
func (h *LedgerHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.ledgerService.GetProcessed(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	if name := c.Query("view"); name != "" {
		rows := doc.View(domain.ViewName(name))
		if rows == nil {
			HandleError(c, domain.ErrInvalidView)
			return
		}
		RespondOK(c, gin.H{"id": doc.ID, "view": name, "rows": *rows})
		return
	}

	RespondOK(c, doc)
}

// UpdateView handles PATCH /api/v1/ledgers/:id/views/:view
func (h *LedgerHandler) UpdateView(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "edits is required")
		return
	}

	doc, err := h.ledgerService.UpdateLedgerFields(c.Request.Context(), id, domain.ViewName(c.Param("view")), req.Edits)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// AppendRows handles POST /api/v1/ledgers/:id/rows
func (h *LedgerHandler) AppendRows(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AppendRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "rows is required")
		return
	}

	doc, err := h.ledgerService.AppendRows(c.Request.Context(), id, req.Rows)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Reconcile handles POST /api/v1/ledgers/:id/reconcile
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "against must be a document id")
		return
	}

	res, err := h.ledgerService.Reconcile(c.Request.Context(), id, req.Against)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// Delete handles DELETE /api/v1/ledgers/:id
func (h *LedgerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.ledgerService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "processed document deleted"})
}
