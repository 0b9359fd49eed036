package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/services"
)

// ConnectionHandler handles PAT connection requests
type ConnectionHandler struct {
	service *services.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler instance
func NewConnectionHandler(service *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		service: service,
	}
}

// Test validates a token without saving it
// POST /api/connections/test
func (h *ConnectionHandler) Test(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req models.TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.Test(c.Request.Context(), req.PAT)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create saves a new connection
// POST /api/connections
func (h *ConnectionHandler) Create(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	var req models.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conn, err := h.service.Create(c.Request.Context(), userId, req.Alias, req.PAT)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conn.ToItem())
}

// List returns the caller's connections
// GET /api/connections
func (h *ConnectionHandler) List(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	conns, err := h.service.List(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.ConnectionItem, 0, len(conns))
	for _, conn := range conns {
		items = append(items, conn.ToItem())
	}

	c.JSON(http.StatusOK, models.ConnectionListResponse{
		Items: items,
		Count: len(items),
	})
}

// Update changes the default flag and/or alias
// PATCH /api/connections/:id
func (h *ConnectionHandler) Update(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	var req models.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Default == nil && req.Alias == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Nothing to update: provide default or alias",
		})
		return
	}

	conn, err := h.service.Update(c.Request.Context(), userId, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn.ToItem())
}

// Rotate replaces the stored token
// PATCH /api/connections/:id/rotate
func (h *ConnectionHandler) Rotate(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	var req models.RotateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conn, err := h.service.Rotate(c.Request.Context(), userId, c.Param("id"), req.PAT)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn.ToItem())
}

// Delete revokes a connection
// DELETE /api/connections/:id
func (h *ConnectionHandler) Delete(c *gin.Context) {
	userId, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), userId, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Connection revoked"})
}
