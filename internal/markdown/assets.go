package markdown

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	schemePrefix      = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*:`)
	invalidAssetChars = regexp.MustCompile(`[\s<>:"/\\|?*]+`)
)

// AssetMap maps image references as written in the source to their
// published location relative to the posts directory.
type AssetMap map[string]string

// Resolve returns the published location of href, or href unchanged when it
// was not rehomed. The raw value is tried first, then its canonical form.
func (m AssetMap) Resolve(href string) string {
	if href == "" || len(m) == 0 {
		return href
	}
	trimmed := strings.TrimSpace(href)
	if v, ok := m[trimmed]; ok && trimmed != "" {
		return v
	}
	if canonical := CanonicalAssetPath(trimmed, true); canonical != "" && canonical != trimmed {
		if v, ok := m[canonical]; ok {
			return v
		}
	}
	return href
}

// IsLocalAsset reports whether href points at a file next to the source:
// not a URL, not protocol relative, not a fragment and not absolute.
func IsLocalAsset(href string) bool {
	trimmed := strings.TrimSpace(href)
	switch {
	case trimmed == "":
		return false
	case schemePrefix.MatchString(trimmed):
		return false
	case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "#"):
		return false
	case strings.HasPrefix(trimmed, "/"), filepath.IsAbs(trimmed):
		return false
	}
	return true
}

// CanonicalAssetPath percent decodes value and normalizes separators. With
// stripDot a leading "./" is removed.
func CanonicalAssetPath(value string, stripDot bool) string {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(normalized); err == nil {
		normalized = decoded
	}
	normalized = strings.ReplaceAll(normalized, "\\", "/")
	if stripDot {
		normalized = strings.TrimPrefix(normalized, "./")
	}
	return normalized
}

// SanitizeAssetFileName replaces characters unsafe in file names with dashes.
func SanitizeAssetFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "asset"
	}
	s := invalidAssetChars.ReplaceAllString(trimmed, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = dashEdges.ReplaceAllString(s, "")
	if s == "" {
		return "asset"
	}
	return s
}

// UniqueFileName returns name, or name with a -N suffix before the
// extension, so that it is not in used.
func UniqueFileName(name string, used map[string]struct{}) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; ; i++ {
		if _, taken := used[candidate]; !taken {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(i) + ext
	}
}
