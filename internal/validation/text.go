// Package validation contains text normalization helpers shared by the
// moderation pipeline and its handlers.
package validation

import (
	"regexp"
	"strings"
)

// ExcerptMaxLen caps reply-to excerpts in characters.
const ExcerptMaxLen = 150

const (
	// BlacklistWordMinLen and BlacklistWordMaxLen bound normalized
	// blacklist entries.
	BlacklistWordMinLen = 2
	BlacklistWordMaxLen = 100
)

var (
	codeFenceRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	quoteRe      = regexp.MustCompile(`(?m)^>\s?`)
	emphasisRe   = regexp.MustCompile(`[*_~]{1,3}`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// StripMarkdown reduces markdown to plain text: code blocks and link targets
// are dropped, visible text is kept, and whitespace is collapsed.
func StripMarkdown(s string) string {
	s = codeFenceRe.ReplaceAllString(s, " ")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Excerpt returns the markdown-stripped text truncated to ExcerptMaxLen
// characters.
func Excerpt(s string) string {
	plain := StripMarkdown(s)
	runes := []rune(plain)
	if len(runes) <= ExcerptMaxLen {
		return plain
	}
	return string(runes[:ExcerptMaxLen])
}

// NormalizeBlacklistWord lowercases and trims a candidate blacklist word and
// reports whether the result is a valid entry.
func NormalizeBlacklistWord(word string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	n := len([]rune(w))
	if n < BlacklistWordMinLen || n > BlacklistWordMaxLen {
		return "", false
	}
	return w, true
}

// ContainsBlacklisted reports whether content contains any of the given
// normalized words, matching case-insensitively by substring, and returns the
// first match.
func ContainsBlacklisted(content string, words []string) (string, bool) {
	if content == "" {
		return "", false
	}
	lowered := strings.ToLower(content)
	for _, w := range words {
		if w != "" && strings.Contains(lowered, w) {
			return w, true
		}
	}
	return "", false
}
