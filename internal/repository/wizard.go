package repository

import (
	"context"

	"github.com/imyashkale/helmwizard/internal/database"
	"github.com/imyashkale/helmwizard/internal/models"
)

// WizardRepository defines the interface for per-user wizard state
type WizardRepository interface {
	GetWizardConfig(ctx context.Context, userId string) (*models.WizardConfig, error)
	PutWizardConfig(ctx context.Context, cfg *models.WizardConfig) error
}

type wizardRepository struct {
	db *database.WizardDB
}

// NewWizardRepository creates a new instance of WizardRepository
func NewWizardRepository(db *database.WizardDB) WizardRepository {
	return &wizardRepository{
		db: db,
	}
}

func (r *wizardRepository) GetWizardConfig(ctx context.Context, userId string) (*models.WizardConfig, error) {
	return r.db.GetWizardConfig(ctx, userId)
}

func (r *wizardRepository) PutWizardConfig(ctx context.Context, cfg *models.WizardConfig) error {
	return r.db.PutWizardConfig(ctx, cfg)
}

// ErrWizardConfigNotFound is returned when a user has no stored wizard state
var ErrWizardConfigNotFound = database.ErrWizardConfigNotFound
