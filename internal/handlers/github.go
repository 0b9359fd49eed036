package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/helmwizard/internal/models"
	"github.com/imyashkale/helmwizard/internal/services"
)

// GitHubHandler proxies the owner, team and repository lookups of the repo step
type GitHubHandler struct {
	connections   *services.ConnectionService
	githubService *services.GitHubService
}

// NewGitHubHandler creates a new GitHubHandler instance
func NewGitHubHandler(connections *services.ConnectionService, githubService *services.GitHubService) *GitHubHandler {
	return &GitHubHandler{
		connections:   connections,
		githubService: githubService,
	}
}

// token resolves the ?connection= query parameter, or the caller's default connection
func (h *GitHubHandler) token(c *gin.Context) (string, bool) {
	userId, ok := getUserID(c)
	if !ok {
		return "", false
	}

	token, err := h.connections.ResolveToken(c.Request.Context(), userId, c.Query("connection"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return token, true
}

// ListOwners lists the user and organizations a connection can create repositories under
// GET /api/github/orgs
func (h *GitHubHandler) ListOwners(c *gin.Context) {
	token, ok := h.token(c)
	if !ok {
		return
	}

	owners, err := h.githubService.ListOwners(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OwnerListResponse{Owners: owners})
}

// ListTeams lists the teams of an organization
// GET /api/github/orgs/:org/teams
func (h *GitHubHandler) ListTeams(c *gin.Context) {
	token, ok := h.token(c)
	if !ok {
		return
	}

	teams, err := h.githubService.ListTeams(c.Request.Context(), token, c.Param("org"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TeamListResponse{Teams: teams})
}

// CheckRepo reports whether a repository name is already taken
// GET /api/github/repos/check
func (h *GitHubHandler) CheckRepo(c *gin.Context) {
	owner := strings.TrimSpace(c.Query("owner"))
	name := strings.TrimSpace(c.Query("name"))
	if owner == "" || name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "owner and name query parameters are required",
		})
		return
	}

	token, ok := h.token(c)
	if !ok {
		return
	}

	exists, err := h.githubService.RepoExists(c.Request.Context(), token, owner, name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RepoCheckResponse{
		Owner:  owner,
		Name:   name,
		Exists: exists,
	})
}
