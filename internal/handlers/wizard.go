package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/services"
)

// WizardHandler handles the shared wizard state
type WizardHandler struct {
	service *services.WizardService
}

// NewWizardHandler creates a new WizardHandler instance
func NewWizardHandler(service *services.WizardService) *WizardHandler {
	return &WizardHandler{
		service: service,
	}
}

// GetConfig returns the caller's wizard state
// GET /api/wizard/config
func (h *WizardHandler) GetConfig(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	cfg, err := h.service.Get(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// SaveConfig merges the submitted fields into the caller's wizard state
// POST /api/wizard/config
func (h *WizardHandler) SaveConfig(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	var req models.WizardConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cfg, err := h.service.Save(c.Request.Context(), userId, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// Suggestions proposes repository name, image and namespace for an app name
// GET /api/wizard/suggestions
func (h *WizardHandler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Suggestions(c.Query("appName"), c.Query("owner")))
}

// ImportVariables merges JSON or .env content into the stored variables
// POST /api/wizard/variables/import
func (h *WizardHandler) ImportVariables(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	var req models.ImportVariablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cfg, imported, err := h.service.Import(c.Request.Context(), userId, req.Format, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ImportVariablesResponse{
		Variables: cfg.Variables,
		Imported:  imported,
	})
}
