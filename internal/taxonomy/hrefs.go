package taxonomy

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
)

const indexPage = "index.html"

// EncodeComponent escapes value for use as a query value, spaces as %20.
func EncodeComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// IndexHref returns the index page link relative to root.
func IndexHref(root string) string {
	return root + indexPage
}

// CategoryHref links to the index filtered by category. An empty category
// links to the unfiltered index.
func CategoryHref(root, category string) string {
	if category == "" {
		return IndexHref(root)
	}
	return IndexHref(root) + "?category=" + EncodeComponent(category)
}

// TagHref links to the index filtered by the canonical form of tag.
func TagHref(root string, canon posts.TagCanonicalizer, tag string) string {
	if tag == "" {
		return IndexHref(root)
	}
	return IndexHref(root) + "?tag=" + EncodeComponent(canon.Label(tag))
}

// SearchHref links to the index search results for query.
func SearchHref(root, query string) string {
	return IndexHref(root) + "?search=" + EncodeComponent(query)
}
