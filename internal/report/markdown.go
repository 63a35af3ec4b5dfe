package report

import (
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern  = regexp.MustCompile(`\*([^*]+)\*`)
	headingPattern = regexp.MustCompile(`^#{1,6}\s*`)
	bulletPattern  = regexp.MustCompile(`^[-*•]\s+`)
)

// cleanText strips the markdown decoration models sprinkle into their
// answers so exported documents read as plain prose. Bullet markers are
// normalized to a single bullet character.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	bullet := bulletPattern.MatchString(s)
	s = bulletPattern.ReplaceAllString(s, "")
	s = headingPattern.ReplaceAllString(s, "")
	s = boldPattern.ReplaceAllString(s, "$1")
	s = italicPattern.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.TrimSpace(s)

	if bullet && s != "" {
		return "• " + s
	}
	return s
}

// collapseSpace folds runs of whitespace, including newlines, into
// single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
