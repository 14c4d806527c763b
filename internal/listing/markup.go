package listing

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/taxonomy"
	"github.com/goliatone/go-blog/internal/templating"
)

// Messages shown in the post list.
const (
	LoadingMessage     = "正在加载文章..."
	LoadFailedMessage  = "文章加载失败，请稍后重试。"
	NoPostsMessage     = "暂无文章。"
	EmptySummary       = "<p>暂无摘要。</p>"
	ReadMoreLabel      = "点击阅读全文..."
	UncategorizedLabel = "未分类"
	NoTagsLabel        = "暂无标签"
)

// DefaultSummaryTypes are the block tags a summary may render as.
var DefaultSummaryTypes = []string{"p", "h2", "h3", "h4", "h5", "ul", "ol", "li", "blockquote", "table", "figure"}

var (
	srcAssets    = regexp.MustCompile(`(?i)(\bsrc\s*=\s*["'])\.\./assets/`)
	srcsetAttr   = regexp.MustCompile(`(?i)\bsrcset\s*=\s*["'][^"']*\.\./assets/`)
	parentAssets = regexp.MustCompile(`(?i)\.\./assets/`)
)

// Placeholder wraps message in the list placeholder paragraph. message is
// inserted as markup.
func Placeholder(message string) string {
	return `<p class="post-list-placeholder">` + message + `</p>`
}

// EmptyMessage is the placeholder shown when filters leave no posts. The
// names are display names and are escaped here.
func EmptyMessage(categoryName, tagName string) string {
	category := html.EscapeString(categoryName)
	tag := html.EscapeString(tagName)
	switch {
	case categoryName != "" && tagName != "":
		return Placeholder("分类 “" + category + "” 与标签 “" + tag + "” 下暂无文章。")
	case categoryName != "":
		return Placeholder("分类 “" + category + "” 下暂无文章。")
	case tagName != "":
		return Placeholder("标签 “" + tag + "” 下暂无文章。")
	}
	return Placeholder(NoPostsMessage)
}

// SearchHeading introduces search results.
func SearchHeading(count int, query string) string {
	return `<p class="search-results-heading">找到 <strong>` + strconv.Itoa(count) + `</strong> 篇与 “` + html.EscapeString(query) + `” 相关的文章：</p>`
}

// NoResultsMessage is shown when a search matches nothing.
func NoResultsMessage(query string) string {
	return Placeholder("未找到与“" + html.EscapeString(query) + "”相关的文章。")
}

// MetaHTML renders the category and tag links of a post card.
func MetaHTML(post posts.Post, root string, canon posts.TagCanonicalizer) string {
	categories := links(post.Categories, UncategorizedLabel, func(c string) string {
		return taxonomy.CategoryHref(root, c)
	})
	tags := links(post.Tags, NoTagsLabel, func(t string) string {
		return taxonomy.TagHref(root, canon, t)
	})
	catSpan := `<span class="meta-item meta-categories">分类：` + categories + `</span>`
	tagSpan := `<span class="meta-item meta-tags">标签：` + tags + `</span>`
	if len(post.Categories) > 0 && len(post.Tags) > 0 {
		return catSpan + ` <span class="meta-divider">|</span> ` + tagSpan
	}
	return catSpan + " " + tagSpan
}

func links(values []string, empty string, href func(string) string) string {
	if len(values) == 0 {
		return `<span class="post-taxonomy-empty">` + empty + `</span>`
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = `<a href="` + html.EscapeString(href(v)) + `">` + html.EscapeString(v) + `</a>`
	}
	return strings.Join(parts, ",")
}

// SummaryHTML renders summary blocks. Unknown block types render as p and a
// block already wrapped in its own tag is kept as is.
func SummaryHTML(blocks []posts.SummaryBlock, root string, allowed []string) string {
	if len(blocks) == 0 {
		return EmptySummary
	}
	if len(allowed) == 0 {
		allowed = DefaultSummaryTypes
	}
	parts := make([]string, len(blocks))
	for i, block := range blocks {
		tag := strings.ToLower(block.Type)
		if !contains(allowed, tag) {
			tag = "p"
		}
		normalized := posts.NormalizeLatexEscapes(block.HTML)
		trimmed := strings.TrimSpace(normalized)
		if wrappedIn(trimmed, tag) {
			parts[i] = trimmed
			continue
		}
		parts[i] = "<" + tag + ">" + normalized + "</" + tag + ">"
	}
	return rewriteAssetPaths(strings.Join(parts, "\n"), root)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func wrappedIn(fragment, tag string) bool {
	lower := strings.ToLower(fragment)
	open := "<" + tag
	if !strings.HasPrefix(lower, open) || len(lower) == len(open) {
		return false
	}
	next := lower[len(open)]
	if next != '>' && next != ' ' && next != '\t' && next != '\n' && next != '\r' && next != '\f' {
		return false
	}
	return strings.HasSuffix(lower, "</"+tag+">")
}

// rewriteAssetPaths points ../assets/ references at assets/ when the page
// sits at the site root.
func rewriteAssetPaths(fragment, root string) string {
	if root != "" || fragment == "" {
		return fragment
	}
	fragment = srcAssets.ReplaceAllString(fragment, "${1}assets/")
	return srcsetAttr.ReplaceAllStringFunc(fragment, func(m string) string {
		return parentAssets.ReplaceAllString(m, "assets/")
	})
}

// PostCard renders one list entry as a post-card component host. The
// component renderer expands it.
func PostCard(post posts.Post, root string, canon posts.TagCanonicalizer, allowed []string) string {
	readMore := templating.ResolveLink(post.Link, root)
	if readMore == "" {
		readMore = "#"
	}
	var b strings.Builder
	b.WriteString(`<article class="post"><div data-component="post-card"`)
	attr(&b, "data-day", post.Day)
	attr(&b, "data-month", post.Month)
	attr(&b, "data-title", post.Title)
	attr(&b, "data-link", post.Link)
	attr(&b, "data-meta", MetaHTML(post, root, canon))
	b.WriteString(">\n<div class=\"post-content\">\n")
	b.WriteString(SummaryHTML(post.Summary, root, allowed))
	b.WriteString("\n<p><a href=\"" + html.EscapeString(readMore) + "\" class=\"read-more\">" + ReadMoreLabel + "</a></p>\n</div>\n</div></article>")
	return b.String()
}

func attr(b *strings.Builder, name, value string) {
	b.WriteString(" " + name + `="` + html.EscapeString(value) + `"`)
}

// Cards renders the list body for a Result. Search results are preceded by
// the heading; an empty search gets the no-results message.
func Cards(result Result, query string, root string, canon posts.TagCanonicalizer, allowed []string) string {
	var b strings.Builder
	if result.Searching {
		if len(result.Posts) == 0 {
			return NoResultsMessage(query)
		}
		b.WriteString(SearchHeading(len(result.Posts), query))
	}
	for _, post := range result.Posts {
		b.WriteString(PostCard(post, root, canon, allowed))
	}
	return b.String()
}

// Pagination renders the page controls. It returns "" when there is a single
// page so the caller can hide the container.
func Pagination(current, total, window int, path string, values url.Values) string {
	if total <= 1 {
		return ""
	}
	var b strings.Builder
	if current > 1 {
		pageLink(&b, "‹", PageHref(path, values, current-1), "上一页", "page-num prev", false)
	}
	for _, item := range PageSequence(current, total, window) {
		if item.Ellipsis {
			b.WriteString(`<span class="page-ellipsis">…</span>`)
			continue
		}
		pageLink(&b, strconv.Itoa(item.Page), PageHref(path, values, item.Page), fmt.Sprintf("第 %d 页", item.Page), "page-num", item.Page == current)
	}
	if current < total {
		pageLink(&b, "›", PageHref(path, values, current+1), "下一页", "page-num next", false)
	}
	return b.String()
}

func pageLink(b *strings.Builder, label, href, aria, class string, current bool) {
	if current {
		class += " active"
	}
	b.WriteString(`<a class="` + class + `" href="` + html.EscapeString(href) + `" aria-label="` + aria + `"`)
	if current {
		b.WriteString(` aria-current="page"`)
	}
	b.WriteString(">" + label + "</a>")
}
