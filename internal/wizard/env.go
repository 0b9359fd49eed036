package wizard

import (
	"regexp"
	"strings"
)

var (
	lineBreak = regexp.MustCompile(`\r?\n`)
	envLine   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)
)

// ParseEnv reads KEY=VALUE lines. Blank lines, comments and lines that are not
// an assignment are skipped; one pair of matching surrounding quotes is removed.
func ParseEnv(raw string) map[string]string {
	values := make(map[string]string)

	for _, line := range lineBreak.Split(raw, -1) {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}

		m := envLine.FindStringSubmatch(t)
		if m == nil {
			continue
		}

		values[m[1]] = unquote(m[2])
	}

	return values
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	first, last := val[0], val[len(val)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return val[1 : len(val)-1]
	}
	return val
}
