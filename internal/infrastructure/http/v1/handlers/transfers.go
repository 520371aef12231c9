package handlers

import (
	"github.com/gin-gonic/gin"

	"quintastock/internal/domain/transfer"
	"quintastock/internal/infrastructure/http/v1/dto"
)

// TransferHandler handles transfer request endpoints.
type TransferHandler struct {
	*BaseHandler
	service *transfer.Service
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(base *BaseHandler, service *transfer.Service) *TransferHandler {
	return &TransferHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Submit handles POST /transfers. One request yields one transfer per line
// item, so the response is a list.
func (h *TransferHandler) Submit(c *gin.Context) {
	var req dto.SubmitTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Submit(c.Request.Context(), req.ToSubmitRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromTransfers(created)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Get handles GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransfer(t))
}

// History handles GET /transfers
func (h *TransferHandler) History(c *gin.Context) {
	var query dto.HistoryQuery
	if !h.BindQuery(c, &query) {
		return
	}

	transfers, err := h.service.History(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromTransfers(transfers)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Pending handles GET /transfers/pending
func (h *TransferHandler) Pending(c *gin.Context) {
	transfers, err := h.service.Pending(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromTransfers(transfers)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Approve handles POST /transfers/:id/approve
func (h *TransferHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject handles POST /transfers/:id/reject
func (h *TransferHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *TransferHandler) decide(c *gin.Context, approve bool) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.Decide(c.Request.Context(), transferID, approve)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransfer(t))
}

// RegisterRoutes registers transfer routes. Approval routes take an extra
// permission check from the caller.
func (h *TransferHandler) RegisterRoutes(rg, approvals *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.GET("", h.History)
	rg.GET("/pending", h.Pending)
	rg.GET("/:id", h.Get)

	approvals.POST("/:id/approve", h.Approve)
	approvals.POST("/:id/reject", h.Reject)
}
