package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "punctuation and double spaces collapse",
			input:    "Hello, World!!  2025",
			expected: "hello-world-2025",
		},
		{
			name:     "simple title",
			input:    "My First Post",
			expected: "my-first-post",
		},
		{
			name:     "slashes become hyphens",
			input:    "foo/bar",
			expected: "foo-bar",
		},
		{
			name:     "leading and trailing punctuation trimmed",
			input:    "!!Breaking News!!",
			expected: "breaking-news",
		},
		{
			name:     "already lowercase",
			input:    "already-a-slug",
			expected: "already-a-slug",
		},
		{
			name:     "mixed unicode punctuation stripped",
			input:    "Go 1.24 — What's New?",
			expected: "go-1-24-what-s-new",
		},
		{
			name:     "only punctuation yields empty",
			input:    "!!!",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "surrounding whitespace",
			input:    "  padded title  ",
			expected: "padded-title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateSlug(tt.input))
		})
	}
}
