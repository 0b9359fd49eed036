// Package chart finds ${VAR} placeholders in Helm chart files and renders
// dry-run previews with values substituted.
package chart

import (
	"errors"
	"strings"
)

// ErrInvalidRepository is returned when a template reference is not owner/repo or a GitHub URL
var ErrInvalidRepository = errors.New("repository must be 'owner/repo' or a github.com URL")

// Repository identifies a template repository on GitHub
type Repository struct {
	Owner string
	Name  string
}

// String returns owner/name
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository accepts "owner/repo", https://github.com/owner/repo(.git)
// and git@github.com:owner/repo.git
func ParseRepository(ref string) (Repository, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Repository{}, ErrInvalidRepository
	}

	remainder := ref
	if strings.HasPrefix(ref, "http") || strings.HasPrefix(ref, "git") {
		idx := strings.Index(ref, "github.com")
		if idx == -1 {
			return Repository{}, ErrInvalidRepository
		}
		remainder = ref[idx+len("github.com"):]
		remainder = strings.TrimPrefix(remainder, ":")
		remainder = strings.TrimPrefix(remainder, "/")
	}

	remainder = strings.TrimSuffix(strings.TrimSuffix(remainder, "/"), ".git")
	parts := strings.Split(remainder, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, ErrInvalidRepository
	}

	return Repository{Owner: parts[0], Name: parts[1]}, nil
}
