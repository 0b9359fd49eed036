package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyashkale/helmwizard/internal/chart"
	"github.com/imyashkale/helmwizard/internal/middleware"
	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/repository"
	"github.com/imyashkale/helmwizard/internal/services"
	"github.com/imyashkale/helmwizard/internal/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		wantCode string
	}{
		{repository.ErrConnectionNotFound, http.StatusNotFound, "connection_not_found"},
		{fmt.Errorf("lookup: %w", services.ErrGitHubAPIError), http.StatusBadGateway, "github_api_error"},
		{services.ErrTokenUserMismatch, http.StatusConflict, "token_user_mismatch"},
		{fmt.Errorf("%w: bad", wizard.ErrInvalidJSON), http.StatusBadRequest, "invalid_json"},
		{chart.ErrInvalidRepository, http.StatusBadRequest, "invalid_repository"},
		{services.ErrDryRunOnly, http.StatusBadRequest, "dry_run_only"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestRespondErrorMissingVariables(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondError(c, &services.MissingVariablesError{Missing: []string{"APP_NAME"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body models.MissingVariablesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"APP_NAME"}, body.Missing)
}

func TestGetUserID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := getUserID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Set(middleware.UserIDKey, "u1")
	userId, ok := getUserID(c)
	assert.True(t, ok)
	assert.Equal(t, "u1", userId)
}
