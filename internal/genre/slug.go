// Package genre normalizes genre names for stats breakdowns.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a genre name to a URL-safe slug.
// "Science Fiction" -> "science-fiction".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}
