package bookmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "only separators", input: " , ,\t", want: nil},
		{name: "commas", input: "go,web,tools", want: []string{"go", "web", "tools"}},
		{name: "mixed separators", input: "Go, web  go,,tools", want: []string{"go", "web", "tools"}},
		{name: "newlines", input: "a\nb\tc", want: []string{"a", "b", "c"}},
		{name: "case-insensitive repeats", input: "News NEWS news", want: []string{"news"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseTags(tt.input))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "example.com", want: "https://example.com"},
		{input: "  example.com/a  ", want: "https://example.com/a"},
		{input: "http://example.com", want: "http://example.com"},
		{input: "HTTPS://example.com", want: "HTTPS://example.com"},
		{input: "ftp://files.example.com", want: "ftp://files.example.com"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}
