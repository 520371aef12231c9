package handlers

import (
	"github.com/gin-gonic/gin"

	"quintastock/internal/domain/quinta"
	"quintastock/internal/infrastructure/http/v1/dto"
)

// QuintaHandler handles quinta catalog endpoints.
type QuintaHandler struct {
	*BaseHandler
	service *quinta.Service
}

// NewQuintaHandler creates a new quinta handler.
func NewQuintaHandler(base *BaseHandler, service *quinta.Service) *QuintaHandler {
	return &QuintaHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /quintas
func (h *QuintaHandler) Create(c *gin.Context) {
	var req dto.CreateQuintaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, q.ID.String())
}

// Get handles GET /quintas/:id
func (h *QuintaHandler) Get(c *gin.Context) {
	quintaID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quintaID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromQuinta(q))
}

// List handles GET /quintas
func (h *QuintaHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	quintas, err := h.service.List(c.Request.Context(), includeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromQuintas(quintas)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Rename handles PUT /quintas/:id
func (h *QuintaHandler) Rename(c *gin.Context) {
	quintaID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RenameQuintaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.Rename(c.Request.Context(), quintaID, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromQuinta(q))
}

// Delete handles DELETE /quintas/:id
func (h *QuintaHandler) Delete(c *gin.Context) {
	quintaID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), quintaID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers quinta catalog routes. Mutating routes take an
// extra permission check from the caller.
func (h *QuintaHandler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("", h.List)
	read.GET("/:id", h.Get)

	write.POST("", h.Create)
	write.PUT("/:id", h.Rename)
	write.DELETE("/:id", h.Delete)
}
