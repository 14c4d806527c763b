package publish

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-blog/internal/markdown"
)

// entryRef is the part of a manifest entry the pipeline matches on.
type entryRef struct {
	ID   string
	Slug string
}

// findExisting matches by id first, then by each slug candidate in order.
func findExisting(entries []entryRef, id string, slugCandidates []string) (entryRef, bool) {
	if id = strings.TrimSpace(id); id != "" {
		for _, entry := range entries {
			if entry.ID == id {
				return entry, true
			}
		}
	}
	for _, candidate := range slugCandidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		for _, entry := range entries {
			if entry.Slug == candidate {
				return entry, true
			}
		}
	}
	return entryRef{}, false
}

// ResolveID returns explicit when set. Otherwise it is one more than the
// highest numeric id found in the manifest entries and the names of
// published pages, or baseline+1 when there is none.
func ResolveID(explicit string, ids []string, fileNames []string, baseline int64) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}

	found := false
	var highest int64
	consider := func(value string) {
		n, ok := leadingInt(value)
		if !ok {
			return
		}
		if !found || n > highest {
			highest = n
			found = true
		}
	}
	for _, id := range ids {
		consider(id)
	}
	for _, name := range fileNames {
		if strings.HasSuffix(strings.ToLower(name), ".html") {
			consider(name[:len(name)-len(".html")])
		}
	}
	if !found {
		highest = baseline
	}
	return strconv.FormatInt(highest+1, 10)
}

// leadingInt parses an optionally signed run of leading digits, ignoring
// leading whitespace and anything after the digits.
func leadingInt(value string) (int64, bool) {
	s := strings.TrimLeftFunc(value, unicode.IsSpace)
	sign := int64(1)
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return sign * n, true
}

// ResolveSlug returns the explicit slug trimmed, else the first non-empty
// slugified value of the title, the source file name and fallbackID.
func ResolveSlug(explicit, title, sourcePath, fallbackID string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed, nil
	}
	for _, candidate := range []string{title, baseName(sourcePath), fallbackID} {
		if slug := markdown.Slugify(candidate); slug != "" {
			return slug, nil
		}
	}
	return "", failf(ErrSlugUnresolved,
		`Unable to derive a slug. Please provide "slug" in front matter or via --slug.`)
}

func baseName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// slugCandidates lists the distinct non-empty slugs an existing post may be
// filed under.
func slugCandidates(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
