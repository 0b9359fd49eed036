package models

// Owner types as reported to the wizard
const (
	OwnerTypeUser = "User"
	OwnerTypeOrg  = "Org"
)

// GitHubUser represents the GitHub user profile data
type GitHubUser struct {
	Login     string `json:"login"`
	Id        int64  `json:"id"`
	AvatarUrl string `json:"avatar_url"`
	Name      string `json:"name"`
}

// GitHubOrg is an organization membership as listed by GET /user/orgs
type GitHubOrg struct {
	Login     string `json:"login"`
	Id        int64  `json:"id"`
	AvatarUrl string `json:"avatar_url"`
}

// GitHubTeam is a team as listed by GET /orgs/{org}/teams
type GitHubTeam struct {
	Id   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Owner is a user or organization a connection can create repositories under
type Owner struct {
	Type   string `json:"type"`
	Login  string `json:"login"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Team is an organization team offered for repository permissions
type Team struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ToConnectionUser converts the GitHub profile into the cached connection identity
func (u *GitHubUser) ToConnectionUser() ConnectionUser {
	return ConnectionUser{
		Login:  u.Login,
		Name:   u.Name,
		Avatar: u.AvatarUrl,
	}
}
