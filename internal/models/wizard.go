package models

import "time"

// Permission is a repository permission granted to a team
type Permission string

const (
	PermissionAdmin    Permission = "admin"
	PermissionMaintain Permission = "maintain"
	PermissionPush     Permission = "push"
	PermissionTriage   Permission = "triage"
	PermissionRead     Permission = "read"
)

// Valid reports whether p is a permission GitHub accepts for teams
func (p Permission) Valid() bool {
	switch p {
	case PermissionAdmin, PermissionMaintain, PermissionPush, PermissionTriage, PermissionRead:
		return true
	}
	return false
}

// SelectedTeam is a team chosen for the new repository
type SelectedTeam struct {
	Slug       string     `json:"slug" dynamodbav:"Slug"`
	Name       string     `json:"name" dynamodbav:"Name"`
	Permission Permission `json:"permission" dynamodbav:"Permission"`
}

// WizardConfig is the in-progress wizard state shared by all steps, one per user
type WizardConfig struct {
	UserId       string                 `json:"-" dynamodbav:"UserId"`
	ConnectionId string                 `json:"connectionId" dynamodbav:"ConnectionId"`
	Owner        string                 `json:"owner" dynamodbav:"Owner"`
	OwnerType    string                 `json:"ownerType,omitempty" dynamodbav:"OwnerType"`
	RepoName     string                 `json:"repoName" dynamodbav:"RepoName"`
	AppName      string                 `json:"appName" dynamodbav:"AppName"`
	Template     string                 `json:"template" dynamodbav:"Template"`
	Teams        []SelectedTeam         `json:"teams" dynamodbav:"Teams"`
	Variables    map[string]interface{} `json:"variables" dynamodbav:"Variables"`
	VarDefs      []VarDef               `json:"varDefs,omitempty" dynamodbav:"VarDefs"`
	UpdatedAt    time.Time              `json:"updatedAt" dynamodbav:"UpdatedAt,unixtime"`
}

// WizardConfigRequest is the request body for POST /api/wizard/config.
// Only the fields present in the body are written; the rest of the stored state is kept.
type WizardConfigRequest struct {
	ConnectionId *string                `json:"connectionId"`
	Owner        *string                `json:"owner"`
	OwnerType    *string                `json:"ownerType"`
	RepoName     *string                `json:"repoName"`
	AppName      *string                `json:"appName"`
	Template     *string                `json:"template"`
	Teams        *[]SelectedTeam        `json:"teams"`
	Variables    map[string]interface{} `json:"variables"`
	VarDefs      *[]VarDef              `json:"varDefs"`
}

// ImportVariablesRequest is the request body for POST /api/wizard/variables/import
type ImportVariablesRequest struct {
	Format  string `json:"format" binding:"required,oneof=json env"`
	Content string `json:"content" binding:"required"`
}

// ImportVariablesResponse returns the merged variable values after an import
type ImportVariablesResponse struct {
	Variables map[string]interface{} `json:"variables"`
	Imported  int                    `json:"imported"`
}

// SuggestionsResponse is the response for GET /api/wizard/suggestions
type SuggestionsResponse struct {
	RepoName  string `json:"repoName"`
	Image     string `json:"image"`
	Namespace string `json:"namespace"`
}

// MissingVariablesResponse is returned when required variables are not filled
type MissingVariablesResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Missing []string `json:"missing"`
}
