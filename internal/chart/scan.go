package chart

import (
	"regexp"

	"github.com/imyashkale/helmwizard/internal/models"
)

// Well-known chart files
const (
	ChartFile  = "Chart.yaml"
	ValuesFile = "values.yaml"
)

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// File is a template file and its raw contents
type File struct {
	Path    string
	Content string
}

// Scan lists the placeholders found in files. Keys keep their first-appearance
// order; each key lists the files it appears in, in file order.
func Scan(files []File) []models.RawVar {
	var vars []models.RawVar
	index := make(map[string]int)

	for _, f := range files {
		for _, m := range placeholder.FindAllStringSubmatch(f.Content, -1) {
			key := m[1]
			i, ok := index[key]
			if !ok {
				index[key] = len(vars)
				vars = append(vars, models.RawVar{Key: key, Files: []string{f.Path}})
				continue
			}
			if last := vars[i].Files[len(vars[i].Files)-1]; last != f.Path {
				vars[i].Files = append(vars[i].Files, f.Path)
			}
		}
	}

	return vars
}
