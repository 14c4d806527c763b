package listing

import (
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/search"
)

// Defaults for Options.
const (
	DefaultPostsPerPage = 10
	DefaultPageWindow   = 2
)

// Options tunes pagination. A negative PageWindow selects the default.
type Options struct {
	PostsPerPage int
	PageWindow   int
}

func (o Options) window() int {
	if o.PageWindow < 0 {
		return DefaultPageWindow
	}
	return o.PageWindow
}

func (o Options) perPage() int {
	if o.PostsPerPage <= 0 {
		return DefaultPostsPerPage
	}
	return o.PostsPerPage
}

// Result is the visible slice of posts and its paging state. In search mode
// every match is visible and TotalPages is 1. Window is the number of page
// links shown on each side of Page.
type Result struct {
	Posts      []posts.Post
	Matches    []search.Match
	Searching  bool
	Total      int
	Page       int
	TotalPages int
	Window     int
}

// Render applies filters to list, which must already be sorted newest first.
// A search query ranks every post and ignores taxonomy filters. Otherwise the
// category and tag filters both apply and the requested page is clamped.
func Render(list []posts.Post, f Filters, canon posts.TagCanonicalizer, opts Options) Result {
	if f.Searching() {
		matches := search.Score(list, f.Search)
		return Result{
			Posts:      search.Posts(matches),
			Matches:    matches,
			Searching:  true,
			Total:      len(matches),
			Page:       1,
			TotalPages: 1,
			Window:     opts.window(),
		}
	}

	filtered := Filter(list, f, canon)
	perPage := opts.perPage()
	totalPages := max(1, (len(filtered)+perPage-1)/perPage)
	page := min(max(f.Page, 1), totalPages)
	start := (page - 1) * perPage
	end := min(start+perPage, len(filtered))

	return Result{
		Posts:      filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		TotalPages: totalPages,
		Window:     opts.window(),
	}
}

// Filter keeps posts matching both the category and the tag filter. Empty
// filters match everything.
func Filter(list []posts.Post, f Filters, canon posts.TagCanonicalizer) []posts.Post {
	out := make([]posts.Post, 0, len(list))
	for _, post := range list {
		if posts.NormalizeCategory(f.Category) != "" && !posts.HasCategory(post, f.Category) {
			continue
		}
		if canon.Key(f.Tag) != "" && !canon.HasTag(post, f.Tag) {
			continue
		}
		out = append(out, post)
	}
	return out
}

// PageItem is a page number or a gap marker in a pagination sequence.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// PageSequence lists the first and last pages plus every page within window
// of current, with gaps marked.
func PageSequence(current, total, window int) []PageItem {
	if total < 1 {
		return nil
	}
	if window < 0 {
		window = DefaultPageWindow
	}
	var items []PageItem
	previous := 0
	for page := 1; page <= total; page++ {
		if page != 1 && page != total && (page < current-window || page > current+window) {
			continue
		}
		if previous != 0 && page-previous > 1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: page})
		previous = page
	}
	return items
}
