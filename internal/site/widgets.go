package site

import (
	"context"
	"html"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-blog/internal/dom"
	"github.com/goliatone/go-blog/internal/listing"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/search"
	"github.com/goliatone/go-blog/internal/taxonomy"
	"github.com/goliatone/go-blog/internal/templating"
)

// Sidebar and search messages.
const (
	UntitledLabel        = "未命名文章"
	SidebarEmptyLabel    = "暂无文章"
	SidebarFailedLabel   = "加载失败"
	SearchFailedMessage  = "搜索失败，请稍后重试。"
	paginationSelector   = "[data-pagination]"
	searchSectionSelect  = "[data-search-section]"
	tagSectionSelector   = "[data-tag-section]"
	recentPostsSelector  = "[data-recent-posts]"
	randomPostsSelector  = "[data-random-posts]"
	categoryNavSelector  = "[data-category-nav]"
	categoryListSelector = "[data-category-list]"
)

func hide(sel *goquery.Selection) dom.Patch {
	return dom.Patch{Target: sel, Kind: dom.Hide}
}

func show(sel *goquery.Selection) dom.Patch {
	return dom.Patch{Target: sel, Kind: dom.Show}
}

func (r *Runtime) filters(st *state) listing.Filters {
	return listing.ParseFilters(st.query, r.canon)
}

// renderListing fills the index post list and its pagination from the URL
// filters, then expands the post-card components it emitted.
func (r *Runtime) renderListing(ctx context.Context, st *state) error {
	list := st.doc.Find(listSelector).First()
	if list.Length() == 0 {
		return nil
	}
	pagination := st.doc.Find(paginationSelector).First()
	dom.Apply(dom.Inner(list, listing.Placeholder(listing.LoadingMessage)))

	all, err := r.load(ctx, st)
	if err != nil {
		dom.Apply(dom.Inner(list, listing.Placeholder(listing.LoadFailedMessage)), hide(pagination))
		return err
	}

	f := r.filters(st)
	result := listing.Render(all, f, r.canon, listing.Options{
		PostsPerPage: r.cfg.PostsPerPage,
		PageWindow:   r.cfg.PageWindow,
	})
	switch {
	case result.Searching:
		dom.Apply(dom.Inner(list, listing.Cards(result, f.Search, st.root, r.canon, r.cfg.SummaryBlockTypes)), hide(pagination))
	case result.Total == 0:
		message := listing.EmptyMessage(
			taxonomy.CategoryDisplayName(all, f.Category),
			taxonomy.TagDisplayName(r.canon, f.Tag),
		)
		dom.Apply(dom.Inner(list, message), hide(pagination))
	default:
		patches := []dom.Patch{dom.Inner(list, listing.Cards(result, "", st.root, r.canon, r.cfg.SummaryBlockTypes))}
		controls := listing.Pagination(result.Page, result.TotalPages, result.Window, st.path, st.query)
		if controls == "" {
			patches = append(patches, hide(pagination))
		} else {
			patches = append(patches, dom.Inner(pagination, controls), show(pagination))
		}
		dom.Apply(patches...)
	}

	return r.renderComponents(ctx, st)
}

// searchStatus mirrors the query into the sidebar search box and reports an
// empty or failed search in its status line.
func (r *Runtime) searchStatus(ctx context.Context, st *state) error {
	sections := st.doc.Find(searchSectionSelect)
	if sections.Length() == 0 {
		return nil
	}
	query := r.filters(st).Search

	message := ""
	var loadErr error
	if query != "" {
		all, err := r.load(ctx, st)
		switch {
		case err != nil:
			message, loadErr = SearchFailedMessage, err
		case len(search.Score(all, query)) == 0:
			message = "未找到与“" + query + "”相关的文章。"
		}
	}

	var patches []dom.Patch
	sections.Each(func(_ int, section *goquery.Selection) {
		if input := section.Find("[data-search-input]").First(); input.Length() > 0 {
			patches = append(patches, dom.Attribute(input, "value", query))
		}
		status := section.Find("[data-search-status]").First()
		if message == "" {
			patches = append(patches, hide(status))
			return
		}
		patches = append(patches, dom.Inner(status, html.EscapeString(message)), show(status))
	})
	dom.Apply(patches...)
	return loadErr
}

func (r *Runtime) categoryNav(ctx context.Context, st *state) error {
	nav := st.doc.Find(categoryNavSelector).First()
	if nav.Length() == 0 {
		return nil
	}
	all, err := r.load(ctx, st)
	if err != nil {
		dom.Apply(dom.Inner(nav, ""))
		return err
	}
	entries := taxonomy.Categories(all, r.cfg.CategoryPriority)
	active := posts.NormalizeCategory(r.filters(st).Category)
	dom.Apply(dom.Inner(nav, taxonomy.CategoryNav(entries, len(all), active, st.root, r.cfg.Icons)))
	return nil
}

func (r *Runtime) categoryList(ctx context.Context, st *state) error {
	list := st.doc.Find(categoryListSelector).First()
	if list.Length() == 0 {
		return nil
	}
	all, err := r.load(ctx, st)
	if err != nil {
		dom.Apply(dom.Inner(list, ""))
		return err
	}
	dom.Apply(dom.Inner(list, taxonomy.CategoryList(taxonomy.ByCount(all), st.root)))
	return nil
}

// tagCloud fills every tag section, hiding sections when there are no tags.
func (r *Runtime) tagCloud(ctx context.Context, st *state) error {
	sections := st.doc.Find(tagSectionSelector)
	if sections.Length() == 0 {
		return nil
	}
	all, err := r.load(ctx, st)
	markup := ""
	if err == nil {
		markup = taxonomy.TagCloud(taxonomy.Tags(all, r.canon), r.filters(st).Tag, st.root, r.canon)
	}

	var patches []dom.Patch
	sections.Each(func(_ int, section *goquery.Selection) {
		cloud := section.Find("[data-tag-cloud]").First()
		if cloud.Length() == 0 {
			return
		}
		if markup == "" {
			patches = append(patches, dom.Inner(cloud, ""), dom.Patch{Target: section, Kind: dom.SetAttr, Attr: "hidden"})
			return
		}
		patches = append(patches, show(section), dom.Inner(cloud, markup))
	})
	dom.Apply(patches...)
	return err
}

func (r *Runtime) recentPosts(ctx context.Context, st *state) error {
	containers := st.doc.Find(recentPostsSelector)
	if containers.Length() == 0 {
		return nil
	}
	all, err := r.load(ctx, st)
	if err != nil {
		dom.Apply(dom.Inner(containers, SidebarItem("#", SidebarFailedLabel)))
		return err
	}
	sorted := posts.Sorted(all)
	dom.Apply(dom.Inner(containers, r.sidebarList(sorted[:min(len(sorted), r.cfg.RecentCount)], st.root)))
	return nil
}

func (r *Runtime) randomPosts(ctx context.Context, st *state) error {
	container := st.doc.Find(randomPostsSelector).First()
	if container.Length() == 0 {
		return nil
	}
	all, err := r.load(ctx, st)
	if err != nil {
		dom.Apply(dom.Inner(container, SidebarItem("#", SidebarFailedLabel)))
		return err
	}
	shuffled := slices.Clone(all)
	r.shuffle(shuffled)
	dom.Apply(dom.Inner(container, r.sidebarList(shuffled[:min(len(shuffled), r.cfg.RandomCount)], st.root)))
	return nil
}

func (r *Runtime) sidebarList(list []posts.Post, root string) string {
	if len(list) == 0 {
		return SidebarItem("#", SidebarEmptyLabel)
	}
	var b strings.Builder
	for _, post := range list {
		title := post.Title
		if title == "" {
			title = UntitledLabel
		}
		b.WriteString(SidebarItem(templating.ResolveLink(post.Link, root), title))
	}
	return b.String()
}

// SidebarItem renders one sidebar list entry. label is escaped.
func SidebarItem(href, label string) string {
	return `<li><a href="` + html.EscapeString(href) + `">` + html.EscapeString(label) + `</a></li>`
}
