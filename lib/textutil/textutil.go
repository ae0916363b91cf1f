package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nonWordRegex    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	tagRegex        = regexp.MustCompile(`<.*?>`)
)

const maxSlugLen = 254

// Normalize replaces curly quotes with their ASCII equivalents and trims
// surrounding whitespace. Idempotent.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "“", `"`)
	s = strings.ReplaceAll(s, "”", `"`)
	s = strings.ReplaceAll(s, "’", "'")
	return strings.TrimSpace(s)
}

// Slugify derives a URL-safe identifier from a title. The result only
// contains word characters and hyphens and is at most 254 characters.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonWordRegex.ReplaceAllString(slug, "")
	slug = whitespaceRegex.ReplaceAllString(slug, "-")

	runes := []rune(slug)
	if len(runes) > maxSlugLen {
		runes = runes[:maxSlugLen]
	}
	return string(runes)
}

// StripTags removes `<...>` markup without interpreting it.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// ComposeTeaser fits review text into `budget` user-perceived characters.
// Markup is stripped first. Text over budget is cut at the preceding word
// boundary and suffixed with " ...". If no word boundary exists before the
// budget offset the stripped text is returned whole rather than sliced
// through a word.
func ComposeTeaser(text string, budget int) string {
	stripped := StripTags(text)
	runes := []rune(stripped)

	if len(runes) <= budget {
		return stripped
	}

	i := budget
	for i > 0 && runes[i] != ' ' {
		i--
	}
	if i <= 0 {
		return stripped
	}

	if strings.HasSuffix(stripped, " ") {
		i--
	}
	if i > 0 && unicode.IsPunct(runes[i-1]) {
		i--
	}

	return string(runes[:i]) + " ..."
}
