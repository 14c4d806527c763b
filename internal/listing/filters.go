// Package listing derives the visible post list of the index page from the
// URL query and renders its cards, pagination and placeholders.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
)

// Query parameter names.
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamTag      = "tag"
	ParamPage     = "page"
)

// Filters is the listing state carried in the URL. Tag holds the canonical
// label.
type Filters struct {
	Search   string
	Category string
	Tag      string
	Page     int
}

// ParseFilters reads filters from query values. A missing or malformed page
// is 1.
func ParseFilters(values url.Values, canon posts.TagCanonicalizer) Filters {
	f := Filters{
		Search:   strings.TrimSpace(values.Get(ParamSearch)),
		Category: strings.TrimSpace(values.Get(ParamCategory)),
		Page:     1,
	}
	if tag := strings.TrimSpace(values.Get(ParamTag)); tag != "" {
		f.Tag = canon.Label(tag)
	}
	if raw := strings.TrimSpace(values.Get(ParamPage)); raw != "" {
		if page, err := strconv.Atoi(leadingInt(raw)); err == nil {
			f.Page = page
		}
	}
	return f
}

// leadingInt keeps an optional sign and the leading digits, so "3abc" reads
// as 3.
func leadingInt(raw string) string {
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	start := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return ""
	}
	return raw[:end]
}

// Searching reports whether the search query takes over the listing.
func (f Filters) Searching() bool {
	return f.Search != ""
}

// QueryWithSearch sets the search query, clearing taxonomy filters. An empty
// query removes the parameter. The page is always reset.
func QueryWithSearch(values url.Values, query string) url.Values {
	out := clone(values)
	if query == "" {
		out.Del(ParamSearch)
	} else {
		out.Set(ParamSearch, query)
		out.Del(ParamCategory)
		out.Del(ParamTag)
	}
	out.Del(ParamPage)
	return out
}

// QueryWithCategory sets the category filter, clearing the search query.
func QueryWithCategory(values url.Values, category string) url.Values {
	out := clone(values)
	if category == "" {
		out.Del(ParamCategory)
	} else {
		out.Set(ParamCategory, category)
		out.Del(ParamSearch)
	}
	out.Del(ParamPage)
	return out
}

// QueryWithTag sets the canonical tag filter, clearing the search query.
func QueryWithTag(values url.Values, canon posts.TagCanonicalizer, tag string) url.Values {
	out := clone(values)
	if tag == "" {
		out.Del(ParamTag)
	} else {
		out.Set(ParamTag, canon.Label(tag))
		out.Del(ParamSearch)
	}
	out.Del(ParamPage)
	return out
}

// PageHref returns path plus the query with page set. Page 1 and below drop
// the parameter.
func PageHref(path string, values url.Values, page int) string {
	out := clone(values)
	if page <= 1 {
		out.Del(ParamPage)
	} else {
		out.Set(ParamPage, strconv.Itoa(page))
	}
	if encoded := out.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

func clone(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, list := range values {
		out[key] = append([]string(nil), list...)
	}
	return out
}
