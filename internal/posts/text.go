package posts

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// StripTags returns the text content of an HTML fragment with whitespace
// collapsed to single spaces.
func StripTags(fragment string) string {
	if fragment == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(whitespaceRun.ReplaceAllString(b.String(), " "))
		case html.TextToken:
			b.Write(z.Text())
		default:
			b.WriteByte(' ')
		}
	}
}

// SummaryText joins the plain text of every summary block.
func SummaryText(post Post) string {
	parts := make([]string, 0, len(post.Summary))
	for _, block := range post.Summary {
		if text := StripTags(block.HTML); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeLatexEscapes collapses every doubled backslash that precedes a
// non-space character.
func NormalizeLatexEscapes(fragment string) string {
	if !strings.Contains(fragment, `\\`) {
		return fragment
	}
	var b strings.Builder
	b.Grow(len(fragment))
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '\\' && i+2 < len(fragment) && fragment[i+1] == '\\' && !isSpaceByte(fragment[i+2]) {
			b.WriteByte('\\')
			i++
			continue
		}
		b.WriteByte(fragment[i])
	}
	return b.String()
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
