package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
	movieURL     = regexp.MustCompile(`/phim/([^/?]+)`)

	vietnameseD = strings.NewReplacer("đ", "d", "Đ", "D")
)

// Slugify derives a URL slug from a display name. Vietnamese đ is mapped to d
// before combining marks are stripped, so "Đặng Nhật Minh" becomes
// "dang-nhat-minh". Leading and trailing hyphens are dropped.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = vietnameseD.Replace(s)

	// transform.Chain is stateful, build one per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ExtractSlug returns the <slug> of a .../phim/<slug> URL. The slug ends at
// the next '/' or '?'.
func ExtractSlug(rawURL string) (string, error) {
	match := movieURL.FindStringSubmatch(strings.TrimSpace(rawURL))
	if match == nil {
		return "", ErrInvalidURL
	}
	return match[1], nil
}
