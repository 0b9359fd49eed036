package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/repository"
)

var (
	ErrAliasRequired     = errors.New("alias is required")
	ErrInvalidToken      = errors.New("token was rejected by github")
	ErrTokenUserMismatch = errors.New("token belongs to a different github user")
	ErrNoConnection      = errors.New("no github connection available")
)

// ConnectionService manages saved PAT connections
type ConnectionService struct {
	repo   repository.ConnectionRepository
	github *GitHubService
	vault  *TokenVault
	now    func() time.Time
}

// NewConnectionService creates a new ConnectionService instance
func NewConnectionService(repo repository.ConnectionRepository, github *GitHubService, vault *TokenVault) *ConnectionService {
	return &ConnectionService{
		repo:   repo,
		github: github,
		vault:  vault,
		now:    time.Now,
	}
}

// Test validates a token against GitHub. A rejected token is reported in the
// result; only transport and unexpected API failures are returned as errors.
func (s *ConnectionService) Test(ctx context.Context, pat string) (*models.TestResult, error) {
	pat = strings.TrimSpace(pat)

	user, scopes, err := s.github.GetUser(ctx, pat)
	if err != nil {
		if errors.Is(err, ErrGitHubUnauthorized) {
			return &models.TestResult{OK: false, Error: "Invalid or expired token"}, nil
		}
		return nil, err
	}

	cu := user.ToConnectionUser()
	return &models.TestResult{
		OK:           true,
		User:         &cu,
		Scopes:       scopes,
		TokenType:    TokenType(pat),
		GitHubUserId: user.Id,
	}, nil
}

// Create tests and vaults a new token. The first connection of a user becomes the default.
func (s *ConnectionService) Create(ctx context.Context, userId, alias, pat string) (*models.Connection, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, ErrAliasRequired
	}
	pat = strings.TrimSpace(pat)

	result, err := s.Test(ctx, pat)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, ErrInvalidToken
	}

	encrypted, err := s.vault.Encrypt(pat)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListConnectionsByUser(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	now := s.now()
	conn := &models.Connection{
		Id:             uuid.New().String(),
		UserId:         userId,
		Alias:          alias,
		Default:        len(existing) == 0,
		GitHubUserId:   result.GitHubUserId,
		User:           *result.User,
		Scopes:         result.Scopes,
		TokenType:      result.TokenType,
		TokenPrefix:    MaskToken(pat),
		EncryptedToken: encrypted,
		Status:         models.ConnectionStatusActive,
		LastCheckedAt:  &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"connection_id": conn.Id,
		"user_id":       userId,
		"github_login":  conn.User.Login,
		"default":       conn.Default,
	}).Info("Connection saved")
	return conn, nil
}

// List returns a user's connections, newest first
func (s *ConnectionService) List(ctx context.Context, userId string) ([]*models.Connection, error) {
	return s.repo.ListConnectionsByUser(ctx, userId)
}

// Get returns a connection owned by userId
func (s *ConnectionService) Get(ctx context.Context, userId, id string) (*models.Connection, error) {
	conn, err := s.repo.GetConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn.UserId != userId {
		return nil, repository.ErrConnectionNotFound
	}
	return conn, nil
}

// Update renames a connection and/or changes its default flag.
// Setting default clears the flag on every other connection of the user.
func (s *ConnectionService) Update(ctx context.Context, userId, id string, req models.UpdateConnectionRequest) (*models.Connection, error) {
	conn, err := s.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	if req.Alias != nil {
		alias := strings.TrimSpace(*req.Alias)
		if alias == "" {
			return nil, ErrAliasRequired
		}
		conn.Alias = alias
	}

	if req.Default != nil && *req.Default {
		return s.setDefault(ctx, userId, conn)
	}
	if req.Default != nil {
		conn.Default = false
	}

	conn.UpdatedAt = s.now()
	if err := s.repo.UpdateConnection(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// setDefault writes the new default and clears the others. Flags already written
// are restored if a later write fails.
func (s *ConnectionService) setDefault(ctx context.Context, userId string, target *models.Connection) (*models.Connection, error) {
	conns, err := s.repo.ListConnectionsByUser(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	now := s.now()
	var written []*models.Connection

	for _, c := range conns {
		isTarget := c.Id == target.Id
		if !isTarget && !c.Default {
			continue
		}

		next := *c
		if isTarget {
			next = *target
		}
		next.Default = isTarget
		next.UpdatedAt = now

		if err := s.repo.UpdateConnection(ctx, &next); err != nil {
			s.rollback(ctx, written)
			return nil, fmt.Errorf("failed to set default connection: %w", err)
		}
		written = append(written, c)
	}

	target.Default = true
	target.UpdatedAt = now

	logger.WithFields(map[string]interface{}{
		"connection_id": target.Id,
		"user_id":       userId,
	}).Info("Default connection changed")
	return target, nil
}

// rollback restores the stored state of connections captured before a failed update
func (s *ConnectionService) rollback(ctx context.Context, previous []*models.Connection) {
	for _, c := range previous {
		if err := s.repo.UpdateConnection(ctx, c); err != nil {
			logger.WithFields(map[string]interface{}{
				"connection_id": c.Id,
				"error":         err.Error(),
			}).Error("Failed to roll back connection")
		}
	}
}

// Rotate replaces the stored token with a new one for the same GitHub account
func (s *ConnectionService) Rotate(ctx context.Context, userId, id, pat string) (*models.Connection, error) {
	conn, err := s.Get(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	pat = strings.TrimSpace(pat)

	result, err := s.Test(ctx, pat)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, ErrInvalidToken
	}
	if result.GitHubUserId != conn.GitHubUserId {
		return nil, ErrTokenUserMismatch
	}

	encrypted, err := s.vault.Encrypt(pat)
	if err != nil {
		return nil, err
	}

	now := s.now()
	conn.EncryptedToken = encrypted
	conn.TokenPrefix = MaskToken(pat)
	conn.TokenType = result.TokenType
	conn.Scopes = result.Scopes
	conn.User = *result.User
	conn.Status = models.ConnectionStatusActive
	conn.LastCheckedAt = &now
	conn.UpdatedAt = now

	if err := s.repo.UpdateConnection(ctx, conn); err != nil {
		return nil, err
	}

	logger.WithField("connection_id", conn.Id).Info("Connection token rotated")
	return conn, nil
}

// Revoke deletes a connection. When the default is removed the newest remaining
// connection is promoted.
func (s *ConnectionService) Revoke(ctx context.Context, userId, id string) error {
	conn, err := s.Get(ctx, userId, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteConnection(ctx, id); err != nil {
		return err
	}
	logger.WithField("connection_id", id).Info("Connection revoked")

	if !conn.Default {
		return nil
	}

	remaining, err := s.repo.ListConnectionsByUser(ctx, userId)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}
	if len(remaining) == 0 {
		return nil
	}

	next := remaining[0]
	next.Default = true
	next.UpdatedAt = s.now()
	if err := s.repo.UpdateConnection(ctx, next); err != nil {
		return fmt.Errorf("failed to promote default connection: %w", err)
	}

	logger.WithField("connection_id", next.Id).Info("Connection promoted to default")
	return nil
}

// Revalidate re-tests a stored token and records whether it is still accepted.
// Only the check fields are written, and only while the stored token is unchanged.
func (s *ConnectionService) Revalidate(ctx context.Context, id string) error {
	conn, err := s.repo.GetConnection(ctx, id)
	if err != nil {
		return err
	}

	token, err := s.vault.Decrypt(conn.EncryptedToken)
	if err != nil {
		return err
	}

	var check models.ConnectionCheck
	user, scopes, err := s.github.GetUser(ctx, token)
	switch {
	case errors.Is(err, ErrGitHubUnauthorized):
		check.Status = models.ConnectionStatusExpired
	case err != nil:
		return err
	default:
		cu := user.ToConnectionUser()
		check.Status = models.ConnectionStatusActive
		check.User = &cu
		check.Scopes = scopes
	}
	check.CheckedAt = s.now()

	err = s.repo.UpdateConnectionStatus(ctx, conn.Id, conn.EncryptedToken, check)
	if errors.Is(err, repository.ErrConnectionChanged) {
		logger.WithField("connection_id", conn.Id).Info("Connection changed during revalidation, result discarded")
		return nil
	}
	if err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"connection_id": conn.Id,
		"status":        check.Status,
	}).Info("Connection revalidated")
	return nil
}

// ResolveToken returns the decrypted token of connectionId, or of the user's
// default connection when connectionId is empty.
func (s *ConnectionService) ResolveToken(ctx context.Context, userId, connectionId string) (string, error) {
	var conn *models.Connection

	if connectionId != "" {
		c, err := s.Get(ctx, userId, connectionId)
		if err != nil {
			return "", err
		}
		conn = c
	} else {
		conns, err := s.repo.ListConnectionsByUser(ctx, userId)
		if err != nil {
			return "", fmt.Errorf("failed to list connections: %w", err)
		}
		for _, c := range conns {
			if c.Default {
				conn = c
				break
			}
		}
		if conn == nil {
			return "", ErrNoConnection
		}
	}

	return s.vault.Decrypt(conn.EncryptedToken)
}
