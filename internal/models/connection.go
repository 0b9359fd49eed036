package models

import "time"

// Token types reported for a personal access token
const (
	TokenTypeClassic = "classic"
	TokenTypeFine    = "fine"
)

// Connection statuses maintained by the token monitor
const (
	ConnectionStatusActive  = "active"
	ConnectionStatusExpired = "expired"
)

// ConnectionUser is the cached GitHub identity of a connection
type ConnectionUser struct {
	Login  string `json:"login" dynamodbav:"Login"`
	Name   string `json:"name,omitempty" dynamodbav:"Name,omitempty"`
	Avatar string `json:"avatar,omitempty" dynamodbav:"Avatar,omitempty"`
}

// Connection is a saved, server-vaulted PAT plus cached identity metadata
type Connection struct {
	Id             string         `dynamodbav:"Id"`
	UserId         string         `dynamodbav:"UserId"` // owner of the connection (auth subject)
	Alias          string         `dynamodbav:"Alias"`
	Default        bool           `dynamodbav:"Default"`
	GitHubUserId   int64          `dynamodbav:"GitHubUserId"`
	User           ConnectionUser `dynamodbav:"User"`
	Scopes         []string       `dynamodbav:"Scopes"`
	TokenType      string         `dynamodbav:"TokenType"`
	TokenPrefix    string         `dynamodbav:"TokenPrefix"`             // masked, e.g. ghp_****abcd
	EncryptedToken string         `json:"-" dynamodbav:"EncryptedToken"` // AES-256-GCM, base64
	Status         string         `dynamodbav:"Status"`
	LastCheckedAt  *time.Time     `dynamodbav:"LastCheckedAt,omitempty"`
	CreatedAt      time.Time      `dynamodbav:"CreatedAt"` // RFC3339Nano
	UpdatedAt      time.Time      `dynamodbav:"UpdatedAt"`
}

// ConnectionCheck is the outcome of re-validating a stored token.
// User and Scopes are only set when GitHub accepted the token.
type ConnectionCheck struct {
	Status    string
	User      *ConnectionUser
	Scopes    []string
	CheckedAt time.Time
}

// NewerThan orders connections newest first, breaking ties on Id
func (c *Connection) NewerThan(other *Connection) bool {
	if !c.CreatedAt.Equal(other.CreatedAt) {
		return c.CreatedAt.After(other.CreatedAt)
	}
	return c.Id > other.Id
}

// ToItem converts a stored connection into its wire representation
func (c *Connection) ToItem() ConnectionItem {
	item := ConnectionItem{
		Id:            c.Id,
		Alias:         c.Alias,
		Default:       c.Default,
		TokenPrefix:   c.TokenPrefix,
		Scopes:        c.Scopes,
		TokenType:     c.TokenType,
		Status:        c.Status,
		LastCheckedAt: c.LastCheckedAt,
		CreatedAt:     c.CreatedAt,
	}
	if c.User.Login != "" {
		user := c.User
		item.User = &user
	}
	if !c.UpdatedAt.IsZero() && !c.UpdatedAt.Equal(c.CreatedAt) {
		updated := c.UpdatedAt
		item.UpdatedAt = &updated
	}
	return item
}
