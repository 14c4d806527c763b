package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

const headingFallback = "section"

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\x{4e00}-\x{9fa5}\-\s_]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	dashRun        = regexp.MustCompile(`-+`)
	slugEdges      = regexp.MustCompile(`^[-_]+|[-_]+$`)
	hanChars       = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]`)
	headingPunct   = regexp.MustCompile("[!\"#$%&'()*+,./:;<=>?@\\[\\]^`{|}~]")
	dashEdges      = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a file safe slug: lower case ASCII letters, digits, dashes
// and underscores. Han characters are dropped, so a title written only in
// Han yields "".
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = slugEdges.ReplaceAllString(s, "")
	s = hanChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SlugifyHeading derives a heading id. Unlike Slugify it keeps non ASCII
// letters, falling back to "section".
func SlugifyHeading(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = headingPunct.ReplaceAllString(s, "")
	s = dashRun.ReplaceAllString(s, "-")
	s = dashEdges.ReplaceAllString(s, "")
	if s == "" {
		return headingFallback
	}
	return s
}

// HeadingSlugger hands out unique heading ids within one document. The first
// use of a base id is bare, repeats get -1, -2 and so on.
type HeadingSlugger struct {
	seen map[string]int
}

// NewHeadingSlugger returns an empty slugger.
func NewHeadingSlugger() *HeadingSlugger {
	return &HeadingSlugger{seen: map[string]int{}}
}

// Slug returns the id for heading text.
func (s *HeadingSlugger) Slug(text string) string {
	base := SlugifyHeading(text)
	count := s.seen[base]
	s.seen[base] = count + 1
	if count == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(count)
}
