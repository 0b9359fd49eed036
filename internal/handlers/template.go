package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/services"
)

// TemplateHandler handles variable extraction and dry-run rendering
type TemplateHandler struct {
	service *services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler instance
func NewTemplateHandler(service *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		service: service,
	}
}

// Variables returns the template's variable definitions with prefilled values
// GET /api/template/variables
func (h *TemplateHandler) Variables(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	resp, err := h.service.Variables(c.Request.Context(), userId, c.Query("repo"), c.Query("connection"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Render performs a dry-run render
// POST /api/template/render
func (h *TemplateHandler) Render(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	var req models.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	preview, err := h.service.Render(c.Request.Context(), userId, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}
