package models

// OwnerListResponse is the response for GET /api/github/orgs
type OwnerListResponse struct {
	Owners []Owner `json:"owners"`
}

// TeamListResponse is the response for GET /api/github/orgs/:org/teams
type TeamListResponse struct {
	Teams []Team `json:"teams"`
}

// RepoCheckResponse is the response for GET /api/github/repos/check
type RepoCheckResponse struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}
