package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "comments and quotes",
			raw:  "FOO=bar\n# comment\nBAZ=\"qux\"",
			want: map[string]string{"FOO": "bar", "BAZ": "qux"},
		},
		{
			name: "crlf and single quotes",
			raw:  "A='1'\r\nB=two\r\n",
			want: map[string]string{"A": "1", "B": "two"},
		},
		{
			name: "lines without assignment skipped",
			raw:  "JUSTTEXT\n1BAD=x\n=novalue\nGOOD=yes",
			want: map[string]string{"GOOD": "yes"},
		},
		{
			name: "empty value and equals in value",
			raw:  "EMPTY=\nURL=http://x?a=b",
			want: map[string]string{"EMPTY": "", "URL": "http://x?a=b"},
		},
		{
			name: "mismatched quotes kept",
			raw:  "Q=\"abc'",
			want: map[string]string{"Q": "\"abc'"},
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "   KEY=value   ",
			want: map[string]string{"KEY": "value"},
		},
		{
			name: "later duplicate wins",
			raw:  "K=1\nK=2",
			want: map[string]string{"K": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEnv(tt.raw))
		})
	}
}
