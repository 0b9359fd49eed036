package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/imyashkale/helmwizard/internal/models"
)

// memoryConnectionRepository keeps connections in process memory
type memoryConnectionRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Connection
}

// NewMemoryConnectionRepository creates a ConnectionRepository that is lost on restart
func NewMemoryConnectionRepository() ConnectionRepository {
	return &memoryConnectionRepository{items: make(map[string]*models.Connection)}
}

func (r *memoryConnectionRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[conn.Id]; ok {
		return ErrConnectionAlreadyExists
	}
	r.items[conn.Id] = cloneConnection(conn)
	return nil
}

func (r *memoryConnectionRepository) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.items[id]
	if !ok {
		return nil, ErrConnectionNotFound
	}
	return cloneConnection(conn), nil
}

func (r *memoryConnectionRepository) UpdateConnection(ctx context.Context, conn *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[conn.Id]; !ok {
		return ErrConnectionNotFound
	}
	r.items[conn.Id] = cloneConnection(conn)
	return nil
}

func (r *memoryConnectionRepository) UpdateConnectionStatus(ctx context.Context, id, checkedToken string, check models.ConnectionCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.items[id]
	if !ok || conn.EncryptedToken != checkedToken {
		return ErrConnectionChanged
	}

	checkedAt := check.CheckedAt
	conn.Status = check.Status
	conn.LastCheckedAt = &checkedAt
	if check.User != nil {
		conn.User = *check.User
		conn.Scopes = slices.Clone(check.Scopes)
	}
	return nil
}

func (r *memoryConnectionRepository) DeleteConnection(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrConnectionNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryConnectionRepository) ListConnectionsByUser(ctx context.Context, userId string) ([]*models.Connection, error) {
	return r.list(func(c *models.Connection) bool { return c.UserId == userId }), nil
}

func (r *memoryConnectionRepository) ListAllConnections(ctx context.Context) ([]*models.Connection, error) {
	return r.list(func(*models.Connection) bool { return true }), nil
}

// list returns copies of matching connections, newest first
func (r *memoryConnectionRepository) list(match func(*models.Connection) bool) []*models.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Connection, 0, len(r.items))
	for _, c := range r.items {
		if match(c) {
			out = append(out, cloneConnection(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NewerThan(out[j])
	})
	return out
}

func cloneConnection(c *models.Connection) *models.Connection {
	out := *c
	out.Scopes = slices.Clone(c.Scopes)
	if c.LastCheckedAt != nil {
		checked := *c.LastCheckedAt
		out.LastCheckedAt = &checked
	}
	return &out
}

// memoryWizardRepository keeps wizard state in process memory
type memoryWizardRepository struct {
	mu    sync.RWMutex
	items map[string]*models.WizardConfig
}

// NewMemoryWizardRepository creates a WizardRepository that is lost on restart
func NewMemoryWizardRepository() WizardRepository {
	return &memoryWizardRepository{items: make(map[string]*models.WizardConfig)}
}

func (r *memoryWizardRepository) GetWizardConfig(ctx context.Context, userId string) (*models.WizardConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.items[userId]
	if !ok {
		return nil, ErrWizardConfigNotFound
	}
	return cloneWizardConfig(cfg), nil
}

func (r *memoryWizardRepository) PutWizardConfig(ctx context.Context, cfg *models.WizardConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cfg.UserId] = cloneWizardConfig(cfg)
	return nil
}

func cloneWizardConfig(cfg *models.WizardConfig) *models.WizardConfig {
	out := *cfg
	out.Teams = slices.Clone(cfg.Teams)
	if cfg.Variables != nil {
		out.Variables = cloneValue(cfg.Variables).(map[string]interface{})
	}
	if cfg.VarDefs != nil {
		out.VarDefs = make([]models.VarDef, len(cfg.VarDefs))
		for i, d := range cfg.VarDefs {
			d.Files = slices.Clone(d.Files)
			out.VarDefs[i] = d
		}
	}
	return &out
}

// cloneValue copies the maps and slices a decoded JSON value can hold
func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}
