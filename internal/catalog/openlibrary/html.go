package openlibrary

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// NormalizeDescription converts an HTML description to Markdown.
// Plain text descriptions pass through unchanged, as does anything the
// converter chokes on.
func NormalizeDescription(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(markdown)
}
