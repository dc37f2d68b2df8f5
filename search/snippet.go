package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SnippetLength is the maximum snippet size in characters, before the
// ellipsis marker.
const SnippetLength = 200

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Snippet collapses whitespace runs to single spaces, trims, and truncates
// to max characters, appending "..." only when text was actually cut. The
// cut never splits a multi-byte rune.
func Snippet(text string, max int) string {
	collapsed := strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
	if len(collapsed) <= max {
		return collapsed
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(collapsed[cut]) {
		cut--
	}
	return collapsed[:cut] + "..."
}
