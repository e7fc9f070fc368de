package utils

import (
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug derives a URL-safe identifier from a title. Runs of
// non-alphanumeric characters collapse into a single hyphen.
// "Hello, World!!  2025" -> "hello-world-2025"
func GenerateSlug(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))

	hyphenated := nonAlnumRun.ReplaceAllString(lower, "-")

	return strings.Trim(hyphenated, "-")
}
