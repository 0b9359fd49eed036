package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/repository"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

// connRepo is the memory store with write failures injectable per connection
type connRepo struct {
	repository.ConnectionRepository
	failUpdate map[string]error
}

func newConnRepo() *connRepo {
	return &connRepo{
		ConnectionRepository: repository.NewMemoryConnectionRepository(),
		failUpdate:           make(map[string]error),
	}
}

func (r *connRepo) UpdateConnection(ctx context.Context, conn *models.Connection) error {
	if err := r.failUpdate[conn.Id]; err != nil {
		return err
	}
	return r.ConnectionRepository.UpdateConnection(ctx, conn)
}

func (r *connRepo) get(id string) models.Connection {
	conn, err := r.GetConnection(context.Background(), id)
	if err != nil {
		return models.Connection{}
	}
	return *conn
}

// wizardRepo is the memory store counting writes
type wizardRepo struct {
	repository.WizardRepository
	puts int
}

func newWizardRepo() *wizardRepo {
	return &wizardRepo{WizardRepository: repository.NewMemoryWizardRepository()}
}

func (r *wizardRepo) PutWizardConfig(ctx context.Context, cfg *models.WizardConfig) error {
	r.puts++
	return r.WizardRepository.PutWizardConfig(ctx, cfg)
}

// fakeGitHub serves the subset of the GitHub REST API the services call
type fakeGitHub struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]models.GitHubUser // token -> user
	files     map[string]string            // owner/repo/path -> content
	repos     map[string]bool              // owner/repo
	repoCalls atomic.Int32
	repoDelay time.Duration
	onUser    func(token string)
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	gh := &fakeGitHub{
		users: map[string]models.GitHubUser{
			"ghp_validtoken1234":         {Login: "octocat", Id: 1, Name: "The Octocat", AvatarUrl: "https://avatars/octocat"},
			"ghp_othertoken5678":         {Login: "octocat", Id: 1, Name: "The Octocat"},
			"ghp_strangertoken9999":      {Login: "stranger", Id: 2},
			"github_pat_11AAAA_finezzzz": {Login: "octocat", Id: 1},
		},
		files: make(map[string]string),
		repos: map[string]bool{"acme/taken": true},
	}
	gh.Server = httptest.NewServer(http.HandlerFunc(gh.serve))
	t.Cleanup(gh.Close)
	return gh
}

func (gh *fakeGitHub) setUser(token string, user models.GitHubUser) {
	gh.mu.Lock()
	defer gh.mu.Unlock()
	gh.users[token] = user
}

func (gh *fakeGitHub) removeUser(token string) {
	gh.mu.Lock()
	defer gh.mu.Unlock()
	delete(gh.users, token)
}

func (gh *fakeGitHub) setUserHook(hook func(token string)) {
	gh.mu.Lock()
	defer gh.mu.Unlock()
	gh.onUser = hook
}

func (gh *fakeGitHub) setFile(repo, path, content string) {
	gh.mu.Lock()
	defer gh.mu.Unlock()
	gh.files[repo+"/"+path] = content
}

func (gh *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	path := r.URL.Path
	if path == "/user" {
		gh.mu.Lock()
		hook := gh.onUser
		gh.mu.Unlock()
		if hook != nil {
			hook(token)
		}
	}

	gh.mu.Lock()
	user, known := gh.users[token]
	gh.mu.Unlock()

	switch {
	case path == "/user":
		if !known {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if strings.HasPrefix(token, "ghp_") {
			w.Header().Set("X-OAuth-Scopes", "repo, read:org")
		}
		writeJSON(w, user)
	case path == "/user/orgs":
		if !known {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []models.GitHubOrg{{Login: "acme", Id: 10, AvatarUrl: "https://avatars/acme"}})
	case path == "/orgs/acme/teams":
		writeJSON(w, []models.GitHubTeam{{Id: 1, Slug: "platform", Name: "Platform"}, {Id: 2, Slug: "web", Name: "Web"}})
	case strings.HasPrefix(path, "/orgs/"):
		w.WriteHeader(http.StatusNotFound)
	case strings.Contains(path, "/contents/"):
		parts := strings.SplitN(strings.TrimPrefix(path, "/repos/"), "/contents/", 2)
		gh.mu.Lock()
		content, ok := gh.files[parts[0]+"/"+parts[1]]
		gh.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, content)
	case strings.HasPrefix(path, "/repos/"):
		gh.repoCalls.Add(1)
		if gh.repoDelay > 0 {
			time.Sleep(gh.repoDelay)
		}
		name := strings.TrimPrefix(path, "/repos/")
		if name == "acme/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if gh.repos[name] {
			writeJSON(w, map[string]string{"full_name": name})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type testEnv struct {
	github      *fakeGitHub
	connRepo    *connRepo
	wizardRepo  *wizardRepo
	gitHub      *GitHubService
	connections *ConnectionService
	wizard      *WizardService
	templates   *TemplateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gh := newFakeGitHub(t)
	env := &testEnv{
		github:     gh,
		connRepo:   newConnRepo(),
		wizardRepo: newWizardRepo(),
		gitHub:     NewGitHubService(gh.URL, time.Minute),
	}

	var clockMu sync.Mutex
	clock := time.Unix(1700000000, 0)
	env.connections = NewConnectionService(env.connRepo, env.gitHub, NewTokenVault(testEncryptionKey))
	env.connections.now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	env.wizard = NewWizardService(env.wizardRepo, "acme/helm-template")
	env.templates = NewTemplateService(env.gitHub, env.connections, env.wizard, []string{"Chart.yaml", "values.yaml"})
	return env
}
