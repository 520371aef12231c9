package handlers

import (
	"github.com/gin-gonic/gin"

	"quintastock/internal/domain/ledger"
	"quintastock/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock ledger endpoints.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /stock
func (h *StockHandler) Create(c *gin.Context) {
	var req dto.AddWineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry := req.ToEntity()
	if err := h.service.AddWine(c.Request.Context(), entry); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entry.ID.String())
}

// Get handles GET /stock/:id
func (h *StockHandler) Get(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockEntry(entry))
}

// List handles GET /stock
func (h *StockHandler) List(c *gin.Context) {
	var query dto.StockListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	entries, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromStockEntries(entries)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Adjust handles POST /stock/:id/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quantity, err := h.service.AdjustQuantity(c.Request.Context(), entryID, req.Delta)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.QuantityResponse{Quantity: quantity})
}

// SetLowStockAlert handles PUT /stock/:id/low-stock-alert
func (h *StockHandler) SetLowStockAlert(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.LowStockAlertRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.SetLowStockAlert(c.Request.Context(), entryID, req.Enabled)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockEntry(entry))
}

// Delete handles DELETE /stock/:id
func (h *StockHandler) Delete(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// LowStock handles GET /stock/low
func (h *StockHandler) LowStock(c *gin.Context) {
	entries, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromStockEntries(entries)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// RegisterRoutes registers stock ledger routes. Mutating routes take an extra
// permission check from the caller.
func (h *StockHandler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("", h.List)
	read.GET("/low", h.LowStock)
	read.GET("/:id", h.Get)

	write.POST("", h.Create)
	write.POST("/:id/adjust", h.Adjust)
	write.PUT("/:id/low-stock-alert", h.SetLowStockAlert)
	write.DELETE("/:id", h.Delete)
}
