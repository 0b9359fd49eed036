package models

import "time"

// ConnectionItem is a saved connection as returned to the client; it never carries the secret
type ConnectionItem struct {
	Id            string          `json:"id"`
	Alias         string          `json:"alias"`
	Default       bool            `json:"default"`
	User          *ConnectionUser `json:"user,omitempty"`
	TokenPrefix   string          `json:"tokenPrefix,omitempty"`
	Scopes        []string        `json:"scopes,omitempty"`
	TokenType     string          `json:"tokenType,omitempty"`
	Status        string          `json:"status,omitempty"`
	LastCheckedAt *time.Time      `json:"lastCheckedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

// ConnectionListResponse is the response for GET /api/connections
type ConnectionListResponse struct {
	Items []ConnectionItem `json:"items"`
	Count int              `json:"count"`
}

// TestConnectionRequest is the request body for POST /api/connections/test
type TestConnectionRequest struct {
	PAT string `json:"pat" binding:"required"`
}

// TestResult is the outcome of validating a token against GitHub
type TestResult struct {
	OK        bool            `json:"ok"`
	User      *ConnectionUser `json:"user,omitempty"`
	Scopes    []string        `json:"scopes,omitempty"`
	TokenType string          `json:"tokenType,omitempty"`
	Error     string          `json:"error,omitempty"`

	// GitHubUserId is kept server-side to match rotated tokens to the same account
	GitHubUserId int64 `json:"-"`
}

// CreateConnectionRequest is the request body for POST /api/connections
type CreateConnectionRequest struct {
	Alias string `json:"alias" binding:"required"`
	PAT   string `json:"pat" binding:"required"`
}

// UpdateConnectionRequest is the request body for PATCH /api/connections/:id
type UpdateConnectionRequest struct {
	Default *bool   `json:"default"`
	Alias   *string `json:"alias"`
}

// RotateConnectionRequest is the request body for PATCH /api/connections/:id/rotate
type RotateConnectionRequest struct {
	PAT string `json:"pat" binding:"required"`
}
