package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/imyashkale/helmwizard/internal/models"
)

// RepoNamePrefix is prepended to every suggested repository name
const RepoNamePrefix = "Helm-"

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	repoNameIllegal = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Context is what the earlier wizard steps know when suggestions are made
type Context struct {
	Owner    string
	RepoName string
	AppName  string
}

// ContextFromConfig builds a suggestion context from stored wizard state
func ContextFromConfig(cfg *models.WizardConfig) Context {
	if cfg == nil {
		return Context{}
	}
	return Context{
		Owner:    cfg.Owner,
		RepoName: cfg.RepoName,
		AppName:  cfg.AppName,
	}
}

// SuggestRepoName proposes Helm-<app> with whitespace turned into hyphens and
// everything outside [A-Za-z0-9_-] dropped
func SuggestRepoName(app string) string {
	if app == "" {
		return RepoNamePrefix
	}
	cleaned := whitespaceRun.ReplaceAllString(strings.TrimSpace(app), "-")
	cleaned = repoNameIllegal.ReplaceAllString(cleaned, "")
	return RepoNamePrefix + cleaned
}

// SuggestImage proposes a ghcr.io image reference, or "" when owner or app is unknown
func SuggestImage(owner, app string) string {
	app = strings.ToLower(app)
	if owner == "" || app == "" {
		return ""
	}
	return fmt.Sprintf("ghcr.io/%s/%s:latest", owner, app)
}

// SuggestNamespace proposes the lowercased app name, or "default"
func SuggestNamespace(app string) string {
	if app == "" {
		return "default"
	}
	return strings.ToLower(app)
}

// BuildSuggestions prefills values for the well-known keys present in defs
func BuildSuggestions(defs []models.VarDef, ctx Context) map[string]interface{} {
	values := make(map[string]interface{})

	for _, d := range defs {
		switch k := strings.ToUpper(d.Key); k {
		case "APP_NAME":
			values[k] = ctx.AppName
		case "IMAGE":
			values[k] = SuggestImage(ctx.Owner, ctx.AppName)
		case "NAMESPACE":
			values[k] = SuggestNamespace(ctx.AppName)
		case "REPLICAS":
			values[k] = 1
		}
	}

	return values
}

// SuggestPlaceholder returns an input hint for key, or "" when there is none
func SuggestPlaceholder(key string, ctx Context) string {
	switch strings.ToUpper(key) {
	case "IMAGE":
		return fmt.Sprintf("ghcr.io/%s/%s:tag", orDefault(ctx.Owner, "owner"), strings.ToLower(orDefault(ctx.AppName, "app")))
	case "NAMESPACE":
		return strings.ToLower(orDefault(ctx.AppName, "app"))
	case "APP_NAME":
		return orDefault(ctx.AppName, "my-app")
	case "REPLICAS":
		return "1"
	}
	return ""
}

// ApplyPlaceholders fills empty placeholders with suggestions
func ApplyPlaceholders(defs []models.VarDef, ctx Context) []models.VarDef {
	out := make([]models.VarDef, len(defs))
	for i, d := range defs {
		if d.Placeholder == "" && d.Example == "" {
			d.Placeholder = SuggestPlaceholder(d.Key, ctx)
		}
		out[i] = d
	}
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
