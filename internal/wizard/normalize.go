// Package wizard holds the variable heuristics of the Helm repo wizard: type and
// requiredness inference, value suggestions, and parsing of imported values.
package wizard

import (
	"strings"

	"github.com/imyashkale/helmwizard/internal/models"
)

// NormalizeDef turns a scanned placeholder into a variable definition.
// A supplied type or required flag wins over the naming heuristics.
func NormalizeDef(raw models.RawVar) models.VarDef {
	key := strings.ToUpper(raw.Key)

	varType := raw.Type
	if !varType.Valid() {
		varType = GuessType(key)
	}

	required := GuessRequired(key)
	if raw.Required != nil {
		required = *raw.Required
	}

	files := raw.Files
	if files == nil {
		files = []string{}
	}

	return models.VarDef{
		Key:         key,
		Files:       files,
		Type:        varType,
		Required:    required,
		Description: raw.Description,
		Placeholder: raw.Placeholder,
		Example:     raw.Example,
	}
}

// NormalizeDefs normalizes a list of scanned placeholders, keeping the first
// definition when two raw keys collapse to the same uppercase key
func NormalizeDefs(raws []models.RawVar) []models.VarDef {
	defs := make([]models.VarDef, 0, len(raws))
	seen := make(map[string]int, len(raws))

	for _, raw := range raws {
		def := NormalizeDef(raw)
		if idx, ok := seen[def.Key]; ok {
			defs[idx].Files = mergeFiles(defs[idx].Files, def.Files)
			continue
		}
		seen[def.Key] = len(defs)
		defs = append(defs, def)
	}

	return defs
}

func mergeFiles(a, b []string) []string {
	out := append([]string{}, a...)
	for _, f := range b {
		found := false
		for _, existing := range out {
			if existing == f {
				found = true
				break
			}
		}
		if !found {
			out = append(out, f)
		}
	}
	return out
}

// FindDef returns the definition for key, if any
func FindDef(defs []models.VarDef, key string) (models.VarDef, bool) {
	for _, d := range defs {
		if d.Key == key {
			return d, true
		}
	}
	return models.VarDef{}, false
}
