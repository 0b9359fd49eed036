package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/imyashkale/helmwizard/internal/chart"
	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/wizard"
)

var (
	ErrTemplateNotFound = errors.New("template repository has none of the expected files")
	ErrDryRunOnly       = errors.New("only dry-run rendering is supported")
)

// TemplateService extracts variables from a chart template repository and renders previews
type TemplateService struct {
	github      *GitHubService
	connections *ConnectionService
	wizard      *WizardService
	files       []string
}

// NewTemplateService creates a new TemplateService instance
func NewTemplateService(github *GitHubService, connections *ConnectionService, wizard *WizardService, files []string) *TemplateService {
	return &TemplateService{
		github:      github,
		connections: connections,
		wizard:      wizard,
		files:       files,
	}
}

// Variables scans the template for placeholders, normalizes them into variable
// definitions and prefills values from the wizard state. The definitions are
// stored with the wizard state so later saves can be checked against them.
func (s *TemplateService) Variables(ctx context.Context, userId, repoRef, connectionId string) (*models.TemplateVariablesResponse, error) {
	cfg, err := s.wizard.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	if repoRef == "" {
		repoRef = cfg.Template
	}
	if connectionId == "" {
		connectionId = cfg.ConnectionId
	}

	files, err := s.fetch(ctx, userId, repoRef, connectionId)
	if err != nil {
		return nil, err
	}

	suggestCtx := wizard.ContextFromConfig(cfg)
	defs := wizard.ApplyPlaceholders(wizard.NormalizeDefs(chart.Scan(files)), suggestCtx)
	values := wizard.MergeValues(wizard.BuildSuggestions(defs, suggestCtx), cfg.Variables)

	cfg.Template = repoRef
	cfg.VarDefs = defs
	if _, err := s.wizard.put(ctx, cfg); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"user_id":   userId,
		"template":  repoRef,
		"var_count": len(defs),
	}).Info("Template variables extracted")

	return &models.TemplateVariablesResponse{
		Template: repoRef,
		Vars:     defs,
		Values:   values,
	}, nil
}

// Render performs a dry-run render of the template with the request values, or
// the stored ones when the request has none. Missing required values are
// reported as warnings and clear the ok flag.
func (s *TemplateService) Render(ctx context.Context, userId string, req models.RenderRequest) (*models.RenderPreview, error) {
	if req.DryRun != nil && !*req.DryRun {
		return nil, ErrDryRunOnly
	}

	cfg, err := s.wizard.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	repoRef := req.Repo
	if repoRef == "" {
		repoRef = cfg.Template
	}
	connectionId := req.Connection
	if connectionId == "" {
		connectionId = cfg.ConnectionId
	}

	files, err := s.fetch(ctx, userId, repoRef, connectionId)
	if err != nil {
		return nil, err
	}

	defs := cfg.VarDefs
	if len(defs) == 0 || repoRef != cfg.Template {
		defs = wizard.NormalizeDefs(chart.Scan(files))
	}

	values := req.Variables
	if values == nil {
		values = cfg.Variables
	}
	values, err = wizard.CastValues(values, defs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVariables, err)
	}

	result := chart.Render(files, values)

	// missing required values are reported but do not fail the preview
	var warnings []string
	for _, key := range wizard.MissingRequired(defs, values) {
		warnings = append(warnings, fmt.Sprintf("required variable %s has no value", key))
	}
	warnings = append(warnings, result.Warnings...)

	return &models.RenderPreview{
		OK: true,
		Previews: &models.RenderPreviews{
			ChartYaml:  result.Files[chart.ChartFile],
			ValuesYaml: result.Files[chart.ValuesFile],
		},
		Files:    result.Files,
		Warnings: warnings,
	}, nil
}

// fetch downloads the configured template files concurrently. Files the
// repository does not have are skipped; at least one must exist.
func (s *TemplateService) fetch(ctx context.Context, userId, repoRef, connectionId string) ([]chart.File, error) {
	repo, err := chart.ParseRepository(repoRef)
	if err != nil {
		return nil, err
	}

	token, err := s.connections.ResolveToken(ctx, userId, connectionId)
	if err != nil && !errors.Is(err, ErrNoConnection) {
		return nil, err
	}

	contents := make([]*string, len(s.files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range s.files {
		i, path := i, path
		g.Go(func() error {
			content, err := s.github.GetFileContent(gctx, token, repo.Owner, repo.Name, path)
			if errors.Is(err, ErrGitHubNotFound) {
				logger.WithFields(map[string]interface{}{
					"repository": repo.String(),
					"path":       path,
				}).Debug("Template file not present")
				return nil
			}
			if err != nil {
				return err
			}
			contents[i] = &content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]chart.File, 0, len(s.files))
	for i, path := range s.files {
		if contents[i] != nil {
			files = append(files, chart.File{Path: path, Content: *contents[i]})
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, repo.String())
	}
	return files, nil
}
