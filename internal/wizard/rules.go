package wizard

import (
	"strings"

	"github.com/imyashkale/helmwizard/internal/models"
)

// matchKind selects how a rule compares a variable key
type matchKind int

const (
	matchExact matchKind = iota
	matchPrefix
)

// rule maps a set of key patterns to an inferred type and requiredness
type rule struct {
	kind     matchKind
	patterns []string
	varType  models.VarType
	required bool
}

// rules is evaluated top to bottom, the first matching rule wins
var rules = []rule{
	{kind: matchExact, patterns: []string{"APP_NAME", "IMAGE", "NAMESPACE"}, varType: models.VarTypeString, required: true},
	{kind: matchExact, patterns: []string{"ENABLED", "DEBUG", "TLS"}, varType: models.VarTypeBoolean},
	{kind: matchPrefix, patterns: []string{"USE_"}, varType: models.VarTypeBoolean},
	{kind: matchExact, patterns: []string{"PORT", "REPLICAS", "CPU_LIMIT", "MEM_LIMIT", "TIMEOUT", "INTERVAL"}, varType: models.VarTypeNumber},
}

func (r rule) matches(key string) bool {
	for _, p := range r.patterns {
		switch r.kind {
		case matchExact:
			if key == p {
				return true
			}
		case matchPrefix:
			if strings.HasPrefix(key, p) {
				return true
			}
		}
	}
	return false
}

// lookup returns the first rule matching key, or false when none does
func lookup(key string) (rule, bool) {
	for _, r := range rules {
		if r.matches(key) {
			return r, true
		}
	}
	return rule{}, false
}

// GuessType infers a variable type from its (uppercase) key
func GuessType(key string) models.VarType {
	if r, ok := lookup(key); ok {
		return r.varType
	}
	return models.VarTypeString
}

// GuessRequired reports whether a well-known key must be filled
func GuessRequired(key string) bool {
	if r, ok := lookup(key); ok {
		return r.required
	}
	return false
}
