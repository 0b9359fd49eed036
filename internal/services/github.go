package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/imyashkale/helmwizard/internal/logger"
	"github.com/imyashkale/helmwizard/internal/models"
)

var (
	ErrGitHubAPIError     = errors.New("github api error")
	ErrGitHubUnauthorized = errors.New("github rejected the token")
	ErrGitHubNotFound     = errors.New("github resource not found")
)

const (
	acceptJSON = "application/vnd.github.v3+json"
	acceptRaw  = "application/vnd.github.raw"
	perPage    = 100
	maxPages   = 50

	repoCheckTimeout = 10 * time.Second
)

// repoCheck is a cached answer to a repository existence check
type repoCheck struct {
	exists    bool
	checkedAt time.Time
}

// GitHubService proxies the GitHub REST calls the wizard needs
type GitHubService struct {
	baseURL      string
	client       *http.Client
	repoCheckTTL time.Duration

	checks singleflight.Group
	mu     sync.Mutex
	cache  map[string]repoCheck
	now    func() time.Time
}

// NewGitHubService creates a new GitHubService instance
func NewGitHubService(baseURL string, repoCheckTTL time.Duration) *GitHubService {
	return &GitHubService{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		client:       &http.Client{Timeout: 10 * time.Second},
		repoCheckTTL: repoCheckTTL,
		cache:        make(map[string]repoCheck),
		now:          time.Now,
	}
}

// GetUser fetches the token owner and the OAuth scopes GitHub reports for the token.
// Fine-grained tokens carry no scopes header and yield an empty list.
func (s *GitHubService) GetUser(ctx context.Context, token string) (*models.GitHubUser, []string, error) {
	logger.Debug("Fetching GitHub user information")

	resp, err := s.get(ctx, token, "/user", acceptJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, nil, err
	}

	var user models.GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		logger.WithField("error", err.Error()).Error("Failed to decode GitHub user response")
		return nil, nil, fmt.Errorf("failed to decode user: %w", err)
	}

	logger.WithField("username", user.Login).Info("GitHub user information fetched successfully")
	return &user, parseScopes(resp.Header.Get("X-OAuth-Scopes")), nil
}

// ListOwners returns the token owner followed by the organizations it belongs to
func (s *GitHubService) ListOwners(ctx context.Context, token string) ([]models.Owner, error) {
	var (
		user *models.GitHubUser
		orgs []models.GitHubOrg
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, _, err := s.GetUser(gctx, token)
		user = u
		return err
	})
	g.Go(func() error {
		var err error
		orgs, err = getAllPages[models.GitHubOrg](gctx, s, token, fmt.Sprintf("/user/orgs?per_page=%d", perPage))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owners := make([]models.Owner, 0, len(orgs)+1)
	owners = append(owners, models.Owner{
		Type:   models.OwnerTypeUser,
		Login:  user.Login,
		Name:   user.Name,
		Avatar: user.AvatarUrl,
	})
	for _, org := range orgs {
		owners = append(owners, models.Owner{
			Type:   models.OwnerTypeOrg,
			Login:  org.Login,
			Avatar: org.AvatarUrl,
		})
	}

	logger.WithFields(map[string]interface{}{
		"username":  user.Login,
		"org_count": len(orgs),
	}).Info("GitHub owners fetched successfully")
	return owners, nil
}

// ListTeams returns the teams of an organization visible to the token
func (s *GitHubService) ListTeams(ctx context.Context, token, org string) ([]models.Team, error) {
	path := fmt.Sprintf("/orgs/%s/teams?per_page=%d", url.PathEscape(org), perPage)
	ghTeams, err := getAllPages[models.GitHubTeam](ctx, s, token, path)
	if err != nil {
		return nil, err
	}

	teams := make([]models.Team, 0, len(ghTeams))
	for _, t := range ghTeams {
		teams = append(teams, models.Team{Slug: t.Slug, Name: t.Name})
	}
	return teams, nil
}

// RepoExists reports whether owner/name is taken. Concurrent identical checks share
// one request and answers are reused for the configured TTL. The shared request
// outlives a cancelled caller; each caller stops waiting when its own ctx ends.
func (s *GitHubService) RepoExists(ctx context.Context, token, owner, name string) (bool, error) {
	key := repoCheckKey(token, owner, name)

	if exists, ok := s.cached(key); ok {
		return exists, nil
	}

	ch := s.checks.DoChan(key, func() (interface{}, error) {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), repoCheckTimeout)
		defer cancel()

		exists, err := s.repoExists(checkCtx, token, owner, name)
		if err != nil {
			return false, err
		}
		s.store(key, exists)
		return exists, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		logger.WithFields(map[string]interface{}{
			"owner":  owner,
			"name":   name,
			"shared": res.Shared,
		}).Debug("Repository existence checked")
		return res.Val.(bool), nil
	}
}

func (s *GitHubService) repoExists(ctx context.Context, token, owner, name string) (bool, error) {
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	resp, err := s.get(ctx, token, path, acceptJSON)
	if err != nil {
		return false, fmt.Errorf("failed to check repository: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, checkStatus(resp)
	}
}

// GetFileContent fetches the raw content of a file at the default branch
func (s *GitHubService) GetFileContent(ctx context.Context, token, owner, repo, path string) (string, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(owner),
		url.PathEscape(repo),
		strings.TrimPrefix(path, "/"),
	)

	resp, err := s.get(ctx, token, endpoint, acceptRaw)
	if err != nil {
		return "", fmt.Errorf("failed to get file %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(body), nil
}

// getAllPages GETs a list endpoint and follows rel="next" links on the same API host
func getAllPages[T any](ctx context.Context, s *GitHubService, token, path string) ([]T, error) {
	all := make([]T, 0)

	for page := 0; path != "" && page < maxPages; page++ {
		items, next, err := getPage[T](ctx, s, token, path)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		path = next
	}

	return all, nil
}

// getPage decodes one page and returns the path of the next page, if any
func getPage[T any](ctx context.Context, s *GitHubService, token, path string) ([]T, string, error) {
	resp, err := s.get(ctx, token, path, acceptJSON)
	if err != nil {
		return nil, "", fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, "", err
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	next := nextLink(resp.Header.Get("Link"))
	if next != "" && !strings.HasPrefix(next, s.baseURL+"/") {
		logger.WithField("link", next).Warn("Ignoring pagination link to another host")
		next = ""
	}
	return items, strings.TrimPrefix(next, s.baseURL), nil
}

// nextLink extracts the rel="next" URL of a Link header
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		for _, param := range segments[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// get issues an authenticated GET; an empty token makes an anonymous request
func (s *GitHubService) get(ctx context.Context, token, path, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		logger.WithField("error", err.Error()).Error("Failed to create GitHub API request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", accept)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.WithField("error", err.Error()).Error("GitHub API request failed")
		return nil, err
	}
	return resp, nil
}

func (s *GitHubService) cached(key string) (bool, bool) {
	if s.repoCheckTTL <= 0 {
		return false, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return false, false
	}
	if s.now().Sub(entry.checkedAt) > s.repoCheckTTL {
		delete(s.cache, key)
		return false, false
	}
	return entry.exists, true
}

func (s *GitHubService) store(key string, exists bool) {
	if s.repoCheckTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = repoCheck{exists: exists, checkedAt: s.now()}
}

// checkStatus maps a non-OK GitHub response to a sentinel error
func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrGitHubUnauthorized
	case http.StatusNotFound:
		return ErrGitHubNotFound
	default:
		logger.WithField("status_code", resp.StatusCode).Warn("GitHub API returned non-OK status")
		return fmt.Errorf("%w: status code %d", ErrGitHubAPIError, resp.StatusCode)
	}
}

func parseScopes(header string) []string {
	scopes := make([]string, 0)
	for _, s := range strings.Split(header, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// repoCheckKey never holds the token itself
func repoCheckKey(token, owner, name string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8]) + ":" + strings.ToLower(owner) + "/" + strings.ToLower(name)
}
