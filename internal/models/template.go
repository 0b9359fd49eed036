package models

// VarType is the declared shape of a template variable value
type VarType string

const (
	VarTypeString  VarType = "string"
	VarTypeNumber  VarType = "number"
	VarTypeBoolean VarType = "boolean"
)

// Valid reports whether t is one of the supported variable types
func (t VarType) Valid() bool {
	switch t {
	case VarTypeString, VarTypeNumber, VarTypeBoolean:
		return true
	}
	return false
}

// RawVar is a placeholder as found by scanning template files, before normalization
type RawVar struct {
	Key         string   `json:"key"`
	Files       []string `json:"files,omitempty"`
	Type        VarType  `json:"type,omitempty"`
	Required    *bool    `json:"required,omitempty"`
	Description string   `json:"description,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Example     string   `json:"example,omitempty"`
}

// VarDef is a template variable's declared shape after normalization
type VarDef struct {
	Key         string   `json:"key" dynamodbav:"Key" yaml:"key"`
	Files       []string `json:"files" dynamodbav:"Files" yaml:"files"`
	Type        VarType  `json:"type" dynamodbav:"Type" yaml:"type"`
	Required    bool     `json:"required,omitempty" dynamodbav:"Required" yaml:"required,omitempty"`
	Description string   `json:"description,omitempty" dynamodbav:"Description,omitempty" yaml:"description,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" dynamodbav:"Placeholder,omitempty" yaml:"placeholder,omitempty"`
	Example     string   `json:"example,omitempty" dynamodbav:"Example,omitempty" yaml:"example,omitempty"`
}

// TemplateVariablesResponse is the response for GET /api/template/variables
type TemplateVariablesResponse struct {
	Template string                 `json:"template"`
	Vars     []VarDef               `json:"vars"`
	Values   map[string]interface{} `json:"values"`
}

// RenderRequest is the request body for POST /api/template/render
type RenderRequest struct {
	Repo       string                 `json:"repo"`
	Connection string                 `json:"connection"`
	Variables  map[string]interface{} `json:"variables"`
	DryRun     *bool                  `json:"dryRun"`
}

// RenderPreviews holds the rendered file contents of a dry run
type RenderPreviews struct {
	ChartYaml  string `json:"chartYaml,omitempty"`
	ValuesYaml string `json:"valuesYaml,omitempty"`
}

// RenderPreview is a dry-run rendering result
type RenderPreview struct {
	OK       bool              `json:"ok"`
	Previews *RenderPreviews   `json:"previews,omitempty"`
	Files    map[string]string `json:"files,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}
