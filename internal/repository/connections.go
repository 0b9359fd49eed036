package repository

import (
	"context"

	"github.com/imyashkale/helmwizard/internal/database"
	"github.com/imyashkale/helmwizard/internal/models"
)

// ConnectionRepository defines the interface for saved PAT connection operations
type ConnectionRepository interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnection(ctx context.Context, id string) (*models.Connection, error)
	UpdateConnection(ctx context.Context, conn *models.Connection) error
	UpdateConnectionStatus(ctx context.Context, id, checkedToken string, check models.ConnectionCheck) error
	DeleteConnection(ctx context.Context, id string) error
	ListConnectionsByUser(ctx context.Context, userId string) ([]*models.Connection, error)
	ListAllConnections(ctx context.Context) ([]*models.Connection, error)
}

// connectionRepository is the concrete implementation of ConnectionRepository
type connectionRepository struct {
	db *database.ConnectionsDB
}

// NewConnectionRepository creates a new instance of ConnectionRepository
func NewConnectionRepository(db *database.ConnectionsDB) ConnectionRepository {
	return &connectionRepository{
		db: db,
	}
}

// CreateConnection stores a new connection
func (r *connectionRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	return r.db.CreateConnection(ctx, conn)
}

// GetConnection retrieves a connection by ID
func (r *connectionRepository) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	return r.db.GetConnection(ctx, id)
}

// UpdateConnection overwrites an existing connection
func (r *connectionRepository) UpdateConnection(ctx context.Context, conn *models.Connection) error {
	return r.db.UpdateConnection(ctx, conn)
}

// UpdateConnectionStatus records a token check if the stored token is still checkedToken
func (r *connectionRepository) UpdateConnectionStatus(ctx context.Context, id, checkedToken string, check models.ConnectionCheck) error {
	return r.db.UpdateConnectionStatus(ctx, id, checkedToken, check)
}

// DeleteConnection removes a connection
func (r *connectionRepository) DeleteConnection(ctx context.Context, id string) error {
	return r.db.DeleteConnection(ctx, id)
}

// ListConnectionsByUser lists a user's connections, newest first
func (r *connectionRepository) ListConnectionsByUser(ctx context.Context, userId string) ([]*models.Connection, error) {
	return r.db.ListConnectionsByUser(ctx, userId)
}

// ListAllConnections lists every stored connection
func (r *connectionRepository) ListAllConnections(ctx context.Context) ([]*models.Connection, error) {
	return r.db.ListAllConnections(ctx)
}

// Re-export database errors for use in services and handlers
var (
	ErrConnectionNotFound      = database.ErrConnectionNotFound
	ErrConnectionAlreadyExists = database.ErrConnectionAlreadyExists
	ErrConnectionChanged       = database.ErrConnectionChanged
)
