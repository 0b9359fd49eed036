package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/repository"
	"github.com/imyashkale/helmwizard/internal/wizard"
)

var (
	ErrInvalidPermission = errors.New("invalid team permission")
	ErrInvalidVariables  = errors.New("invalid variable values")
	ErrUnsupportedFormat = errors.New("unsupported import format")
)

// Import formats accepted by WizardService.Import
const (
	ImportFormatJSON = "json"
	ImportFormatEnv  = "env"
)

// MissingVariablesError lists required variables left empty
type MissingVariablesError struct {
	Missing []string
}

func (e *MissingVariablesError) Error() string {
	return "missing required variables: " + strings.Join(e.Missing, ", ")
}

// WizardService reads and merge-writes the per-user wizard state
type WizardService struct {
	repo            repository.WizardRepository
	defaultTemplate string
	now             func() time.Time
}

// NewWizardService creates a new WizardService instance
func NewWizardService(repo repository.WizardRepository, defaultTemplate string) *WizardService {
	return &WizardService{
		repo:            repo,
		defaultTemplate: defaultTemplate,
		now:             time.Now,
	}
}

// Get returns the stored state, or a fresh one pointing at the default template
func (s *WizardService) Get(ctx context.Context, userId string) (*models.WizardConfig, error) {
	cfg, err := s.repo.GetWizardConfig(ctx, userId)
	if errors.Is(err, repository.ErrWizardConfigNotFound) {
		return &models.WizardConfig{
			UserId:    userId,
			Template:  s.defaultTemplate,
			Teams:     []models.SelectedTeam{},
			Variables: map[string]interface{}{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if cfg.Template == "" {
		cfg.Template = s.defaultTemplate
	}
	if cfg.Teams == nil {
		cfg.Teams = []models.SelectedTeam{}
	}
	if cfg.Variables == nil {
		cfg.Variables = map[string]interface{}{}
	}
	return cfg, nil
}

// Save merges the fields present in req into the stored state. Variables are
// cast to their declared types and, when the request carries variables, every
// required variable must end up filled.
func (s *WizardService) Save(ctx context.Context, userId string, req models.WizardConfigRequest) (*models.WizardConfig, error) {
	cfg, err := s.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	if req.ConnectionId != nil {
		cfg.ConnectionId = *req.ConnectionId
	}
	if req.Owner != nil {
		cfg.Owner = strings.TrimSpace(*req.Owner)
	}
	if req.OwnerType != nil {
		cfg.OwnerType = *req.OwnerType
	}
	if req.RepoName != nil {
		cfg.RepoName = strings.TrimSpace(*req.RepoName)
	}
	if req.AppName != nil {
		cfg.AppName = strings.TrimSpace(*req.AppName)
	}
	if req.Template != nil {
		cfg.Template = strings.TrimSpace(*req.Template)
	}
	if req.Teams != nil {
		for _, t := range *req.Teams {
			if !t.Permission.Valid() {
				return nil, fmt.Errorf("%w: %q for team %s", ErrInvalidPermission, t.Permission, t.Slug)
			}
		}
		cfg.Teams = *req.Teams
	}
	if req.VarDefs != nil {
		cfg.VarDefs = *req.VarDefs
	}

	if req.Variables != nil {
		values := wizard.MergeValues(cfg.Variables, req.Variables)
		casted, err := wizard.CastValues(values, cfg.VarDefs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidVariables, err)
		}
		if missing := wizard.MissingRequired(cfg.VarDefs, casted); len(missing) > 0 {
			return nil, &MissingVariablesError{Missing: missing}
		}
		cfg.Variables = casted
	}

	return s.put(ctx, cfg)
}

// Import parses JSON or .env content and merges it into the stored variables.
// Nothing is stored when JSON content is malformed.
func (s *WizardService) Import(ctx context.Context, userId, format, content string) (*models.WizardConfig, int, error) {
	var incoming map[string]interface{}

	switch format {
	case ImportFormatJSON:
		values, err := wizard.ParseJSONValues(content)
		if err != nil {
			return nil, 0, err
		}
		incoming = values
	case ImportFormatEnv:
		incoming = wizard.EnvValues(wizard.ParseEnv(content))
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	cfg, err := s.Get(ctx, userId)
	if err != nil {
		return nil, 0, err
	}

	cfg.Variables = wizard.MergeValues(cfg.Variables, incoming)
	saved, err := s.put(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}

	logger.WithFields(map[string]interface{}{
		"user_id":  userId,
		"format":   format,
		"imported": len(incoming),
	}).Info("Variables imported")
	return saved, len(incoming), nil
}

// Suggestions proposes the repository name, image and namespace for an app
func (s *WizardService) Suggestions(appName, owner string) models.SuggestionsResponse {
	return models.SuggestionsResponse{
		RepoName:  wizard.SuggestRepoName(appName),
		Image:     wizard.SuggestImage(owner, appName),
		Namespace: wizard.SuggestNamespace(appName),
	}
}

// put stamps and stores cfg
func (s *WizardService) put(ctx context.Context, cfg *models.WizardConfig) (*models.WizardConfig, error) {
	cfg.UpdatedAt = s.now()
	if err := s.repo.PutWizardConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
