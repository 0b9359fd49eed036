package chart

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/imyashkale/helmwizard/internal/wizard"
)

// Result is the outcome of a dry-run render
type Result struct {
	Files    map[string]string
	Warnings []string
}

// Render substitutes values into every placeholder of files. Placeholders
// without a value are left in place and reported, as are supplied values no
// file uses and files whose rendered output is not valid YAML.
func Render(files []File, values map[string]interface{}) Result {
	result := Result{Files: make(map[string]string, len(files))}
	used := make(map[string]bool)

	for _, f := range files {
		var unresolved []string
		seen := make(map[string]bool)

		rendered := placeholder.ReplaceAllStringFunc(f.Content, func(match string) string {
			key := placeholder.FindStringSubmatch(match)[1]
			valueKey, v, ok := lookupValue(values, key)
			if !ok {
				if !seen[key] {
					seen[key] = true
					unresolved = append(unresolved, key)
				}
				return match
			}
			used[valueKey] = true
			return wizard.FormatValue(v)
		})
		result.Files[f.Path] = rendered

		for _, key := range unresolved {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no value for ${%s}", f.Path, key))
		}

		if isYAML(f.Path) {
			var doc interface{}
			if err := yaml.Unmarshal([]byte(rendered), &doc); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: rendered output is not valid YAML: %v", f.Path, err))
			}
		}
	}

	var unused []string
	for key := range values {
		if !used[key] {
			unused = append(unused, key)
		}
	}
	sort.Strings(unused)
	for _, key := range unused {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s is not used by the template", key))
	}

	return result
}

// lookupValue matches the key as written first, then its uppercase form
func lookupValue(values map[string]interface{}, key string) (string, interface{}, bool) {
	if v, ok := values[key]; ok {
		return key, v, true
	}
	upper := strings.ToUpper(key)
	v, ok := values[upper]
	return upper, v, ok
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
