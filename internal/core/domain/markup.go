package domain

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisRe     = regexp.MustCompile("[*_`~]+")
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// CleanMarkup strips HTML tags and markdown decoration from scraped forum
// text so retrieved evidence reads as plain prose inside a prompt.
func CleanMarkup(text string) string {
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = markdownLinkRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = emphasisRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate shortens text to at most max runes, appending an ellipsis when
// it cuts. Counting runes keeps multi-byte characters intact.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
