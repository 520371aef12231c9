package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"quintastock/internal/core/apperror"
	"quintastock/internal/domain/reports"
)

// ReportHandler handles report endpoints.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Movements handles GET /reports/movements
func (h *ReportHandler) Movements(c *gin.Context) {
	fromDate, ok := h.parseDateQuery(c, "fromDate")
	if !ok {
		return
	}
	toDate, ok := h.parseDateQuery(c, "toDate")
	if !ok {
		return
	}

	report, err := h.service.MovementReport(c.Request.Context(), reports.MovementReportFilter{
		FromDate: fromDate,
		ToDate:   toDate,
		Location: c.Query("location"),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// StockByLocation handles GET /reports/stock-by-location
func (h *ReportHandler) StockByLocation(c *gin.Context) {
	report, err := h.service.StockByLocation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// MostMoved handles GET /reports/most-moved
func (h *ReportHandler) MostMoved(c *gin.Context) {
	fromDate, ok := h.parseDateQuery(c, "fromDate")
	if !ok {
		return
	}
	toDate, ok := h.parseDateQuery(c, "toDate")
	if !ok {
		return
	}

	report, err := h.service.MostMoved(c.Request.Context(), reports.MostMovedFilter{
		FromDate: fromDate,
		ToDate:   toDate,
		Limit:    h.ParseIntQuery(c, "limit", 10),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

func (h *ReportHandler) parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date").
			WithDetail("param", key).
			WithDetail("expected", "YYYY-MM-DD"))
		return nil, false
	}
	return &parsed, true
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movements", h.Movements)
	rg.GET("/stock-by-location", h.StockByLocation)
	rg.GET("/most-moved", h.MostMoved)
}
