package handlers

import (
	"github.com/gin-gonic/gin"

	"quintastock/internal/domain/ledger"
	"quintastock/internal/domain/transfer"
	"quintastock/internal/infrastructure/http/v1/dto"
)

// DashboardHandler serves the landing page numbers: pending approvals and
// wines running low.
type DashboardHandler struct {
	*BaseHandler
	transfers *transfer.Service
	stock     *ledger.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, transfers *transfer.Service, stock *ledger.Service) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: base,
		transfers:   transfers,
		stock:       stock,
	}
}

// Summary handles GET /dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	pending, err := h.transfers.CountPending(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	lowStock, err := h.stock.LowStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"pendingTransfers": pending,
		"lowStock":         dto.FromStockEntries(lowStock),
	})
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Summary)
}
