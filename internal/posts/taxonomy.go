package posts

import "strings"

// NormalizeCategory is the case and whitespace insensitive category key.
func NormalizeCategory(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeTag is the case and whitespace insensitive tag key.
func NormalizeTag(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// TagCanonicalizer maps raw tag labels to their preferred display form. The
// alias table is keyed by normalized tag and may be empty.
type TagCanonicalizer struct {
	aliases map[string]string
}

// NewTagCanonicalizer builds a canonicalizer from alias -> canonical pairs.
// Alias keys are normalized; blank entries are ignored.
func NewTagCanonicalizer(aliases map[string]string) TagCanonicalizer {
	table := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		key := NormalizeTag(alias)
		canonical = strings.TrimSpace(canonical)
		if key == "" || canonical == "" {
			continue
		}
		table[key] = canonical
	}
	return TagCanonicalizer{aliases: table}
}

// Label returns the canonical display label for raw.
func (c TagCanonicalizer) Label(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if mapped, ok := c.aliases[NormalizeTag(trimmed)]; ok {
		return mapped
	}
	return trimmed
}

// Key returns the normalized key of the canonical label for raw.
func (c TagCanonicalizer) Key(raw string) string {
	return NormalizeTag(c.Label(raw))
}

// HasCategory reports whether post carries category, ignoring case and
// surrounding whitespace.
func HasCategory(post Post, category string) bool {
	target := NormalizeCategory(category)
	if target == "" {
		return false
	}
	for _, item := range post.Categories {
		if NormalizeCategory(item) == target {
			return true
		}
	}
	return false
}

// HasTag reports whether post carries tag after canonicalization.
func (c TagCanonicalizer) HasTag(post Post, tag string) bool {
	target := c.Key(tag)
	if target == "" {
		return false
	}
	for _, item := range post.Tags {
		if c.Key(item) == target {
			return true
		}
	}
	return false
}
