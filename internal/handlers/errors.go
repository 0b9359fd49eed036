package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/helmwizard/internal/chart"
	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/middleware"
	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/repository"
	"github.com/imyashkale/helmwizard/internal/services"
	"github.com/imyashkale/helmwizard/internal/wizard"
)

// errorStatus maps a sentinel error to an HTTP status and error code
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{repository.ErrConnectionNotFound, http.StatusNotFound, "connection_not_found"},
	{services.ErrAliasRequired, http.StatusBadRequest, "validation_error"},
	{services.ErrInvalidToken, http.StatusBadRequest, "invalid_token"},
	{services.ErrTokenUserMismatch, http.StatusConflict, "token_user_mismatch"},
	{services.ErrNoConnection, http.StatusBadRequest, "no_connection"},
	{services.ErrGitHubUnauthorized, http.StatusUnauthorized, "github_unauthorized"},
	{services.ErrGitHubNotFound, http.StatusNotFound, "github_not_found"},
	{services.ErrGitHubAPIError, http.StatusBadGateway, "github_api_error"},
	{services.ErrTokenDecryptionFailed, http.StatusInternalServerError, "decryption_failed"},
	{chart.ErrInvalidRepository, http.StatusBadRequest, "invalid_repository"},
	{services.ErrTemplateNotFound, http.StatusNotFound, "template_not_found"},
	{services.ErrDryRunOnly, http.StatusBadRequest, "dry_run_only"},
	{services.ErrInvalidVariables, http.StatusBadRequest, "invalid_variables"},
	{services.ErrInvalidPermission, http.StatusBadRequest, "invalid_permission"},
	{services.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"},
	{wizard.ErrInvalidJSON, http.StatusBadRequest, "invalid_json"},
}

// respondError writes err as an ErrorResponse with the status its kind maps to
func respondError(c *gin.Context, err error) {
	var missing *services.MissingVariablesError
	if errors.As(err, &missing) {
		c.JSON(http.StatusUnprocessableEntity, models.MissingVariablesResponse{
			Error:   "missing_required_variables",
			Message: err.Error(),
			Missing: missing.Missing,
		})
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, models.ErrorResponse{
				Error:   e.code,
				Message: err.Error(),
			})
			return
		}
	}

	logger.WithFields(map[string]interface{}{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error("Unhandled request error")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}

// badRequest reports a request body that failed to bind
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
	})
}

// getUserID returns the authenticated user id or writes a 401
func getUserID(c *gin.Context) (string, bool) {
	userId, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "User ID not found in context",
		})
		return "", false
	}

	userIdStr, ok := userId.(string)
	if !ok || userIdStr == "" {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "Invalid user ID format",
		})
		return "", false
	}

	return userIdStr, true
}
