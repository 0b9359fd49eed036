package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubService_GetUser(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := NewGitHubService(gh.URL+"/", time.Minute)
	ctx := context.Background()

	user, scopes, err := svc.GetUser(ctx, "ghp_validtoken1234")
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, []string{"repo", "read:org"}, scopes)

	_, scopes, err = svc.GetUser(ctx, "github_pat_11AAAA_finezzzz")
	require.NoError(t, err)
	assert.Empty(t, scopes)

	_, _, err = svc.GetUser(ctx, "ghp_unknown")
	assert.ErrorIs(t, err, ErrGitHubUnauthorized)
}

func TestGitHubService_ListOwners(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := NewGitHubService(gh.URL, time.Minute)

	owners, err := svc.ListOwners(context.Background(), "ghp_validtoken1234")
	require.NoError(t, err)
	assert.Equal(t, []models.Owner{
		{Type: models.OwnerTypeUser, Login: "octocat", Name: "The Octocat", Avatar: "https://avatars/octocat"},
		{Type: models.OwnerTypeOrg, Login: "acme", Avatar: "https://avatars/acme"},
	}, owners)

	_, err = svc.ListOwners(context.Background(), "ghp_unknown")
	assert.ErrorIs(t, err, ErrGitHubUnauthorized)
}

func TestGitHubService_ListTeams(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := NewGitHubService(gh.URL, time.Minute)

	teams, err := svc.ListTeams(context.Background(), "ghp_validtoken1234", "acme")
	require.NoError(t, err)
	assert.Equal(t, []models.Team{{Slug: "platform", Name: "Platform"}, {Slug: "web", Name: "Web"}}, teams)

	_, err = svc.ListTeams(context.Background(), "ghp_validtoken1234", "nobody")
	assert.ErrorIs(t, err, ErrGitHubNotFound)
}

func TestGitHubService_RepoExists(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := NewGitHubService(gh.URL, time.Minute)
	ctx := context.Background()

	exists, err := svc.RepoExists(ctx, "ghp_validtoken1234", "acme", "taken")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.RepoExists(ctx, "ghp_validtoken1234", "acme", "free")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.RepoExists(ctx, "ghp_validtoken1234", "acme", "broken")
	assert.ErrorIs(t, err, ErrGitHubAPIError)
}

func TestGitHubService_RepoExistsCachesAnswers(t *testing.T) {
	gh := newFakeGitHub(t)
	svc := NewGitHubService(gh.URL, time.Minute)
	now := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RepoExists(ctx, "ghp_validtoken1234", "acme", "Taken")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), gh.repoCalls.Load())

	// another token is a separate cache entry
	_, err := svc.RepoExists(ctx, "ghp_othertoken5678", "acme", "taken")
	require.NoError(t, err)
	assert.Equal(t, int32(2), gh.repoCalls.Load())

	now = now.Add(2 * time.Minute)
	_, err = svc.RepoExists(ctx, "ghp_validtoken1234", "acme", "taken")
	require.NoError(t, err)
	assert.Equal(t, int32(3), gh.repoCalls.Load())
}

func TestGitHubService_RepoExistsCoalescesConcurrentChecks(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repoDelay = 100 * time.Millisecond
	svc := NewGitHubService(gh.URL, 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exists, err := svc.RepoExists(context.Background(), "ghp_validtoken1234", "acme", "taken")
			assert.NoError(t, err)
			assert.True(t, exists)
		}()
	}
	wg.Wait()

	assert.Less(t, gh.repoCalls.Load(), int32(5))
}

func TestGitHubService_RepoExistsSurvivesCancelledCaller(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repoDelay = 200 * time.Millisecond
	svc := NewGitHubService(gh.URL, 0)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.RepoExists(firstCtx, "ghp_validtoken1234", "acme", "taken")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return gh.repoCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type answer struct {
		exists bool
		err    error
	}
	second := make(chan answer, 1)
	go func() {
		exists, err := svc.RepoExists(context.Background(), "ghp_validtoken1234", "acme", "taken")
		second <- answer{exists, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	assert.ErrorIs(t, <-firstErr, context.Canceled)
	got := <-second
	require.NoError(t, got.err)
	assert.True(t, got.exists)
	assert.Equal(t, int32(1), gh.repoCalls.Load())
}

// newPagedGitHub serves /user/orgs and /orgs/big/teams split into pages of two
func newPagedGitHub(t *testing.T, orgCount, teamCount int) *httptest.Server {
	t.Helper()
	page := func(w http.ResponseWriter, r *http.Request, total int, item func(i int) interface{}) {
		n, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if n == 0 {
			n = 1
		}
		start, end := (n-1)*2, n*2
		if end > total {
			end = total
		}
		if end < total {
			next := fmt.Sprintf("http://%s%s?per_page=2&page=%d", r.Host, r.URL.Path, n+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <http://%s%s?page=99>; rel="last"`, next, r.Host, r.URL.Path))
		}
		items := make([]interface{}, 0)
		for i := start; i < end; i++ {
			items = append(items, item(i))
		}
		writeJSON(w, items)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			writeJSON(w, models.GitHubUser{Login: "octocat", Id: 1})
		case "/user/orgs":
			page(w, r, orgCount, func(i int) interface{} { return models.GitHubOrg{Login: fmt.Sprintf("org-%d", i), Id: int64(i)} })
		case "/orgs/big/teams":
			page(w, r, teamCount, func(i int) interface{} {
				return models.GitHubTeam{Id: int64(i), Slug: fmt.Sprintf("team-%d", i), Name: fmt.Sprintf("Team %d", i)}
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubService_ListsFollowPagination(t *testing.T) {
	srv := newPagedGitHub(t, 5, 3)
	svc := NewGitHubService(srv.URL, time.Minute)
	ctx := context.Background()

	owners, err := svc.ListOwners(ctx, "ghp_validtoken1234")
	require.NoError(t, err)
	require.Len(t, owners, 6)
	assert.Equal(t, "octocat", owners[0].Login)
	assert.Equal(t, "org-0", owners[1].Login)
	assert.Equal(t, "org-4", owners[5].Login)

	teams, err := svc.ListTeams(ctx, "ghp_validtoken1234", "big")
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, "team-2", teams[2].Slug)
}

func TestNextLink(t *testing.T) {
	header := `<https://api.github.com/user/orgs?page=3>; rel="next", <https://api.github.com/user/orgs?page=9>; rel="last"`
	assert.Equal(t, "https://api.github.com/user/orgs?page=3", nextLink(header))
	assert.Equal(t, "", nextLink(`<https://api.github.com/user/orgs?page=1>; rel="prev"`))
	assert.Equal(t, "", nextLink(""))
}

func TestGitHubService_IgnoresForeignPaginationLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<https://evil.example.com/orgs/acme/teams?page=2>; rel="next"`)
		writeJSON(w, []models.GitHubTeam{{Id: 1, Slug: "platform", Name: "Platform"}})
	}))
	t.Cleanup(srv.Close)

	teams, err := NewGitHubService(srv.URL, time.Minute).ListTeams(context.Background(), "ghp_validtoken1234", "acme")
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestGitHubService_GetFileContent(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.setFile("acme/chart", "values.yaml", "image: ${IMAGE}\n")
	svc := NewGitHubService(gh.URL, time.Minute)

	content, err := svc.GetFileContent(context.Background(), "", "acme", "chart", "values.yaml")
	require.NoError(t, err)
	assert.Equal(t, "image: ${IMAGE}\n", content)

	_, err = svc.GetFileContent(context.Background(), "", "acme", "chart", "Chart.yaml")
	assert.ErrorIs(t, err, ErrGitHubNotFound)
}
