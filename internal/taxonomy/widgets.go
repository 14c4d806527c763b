package taxonomy

import (
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
)

// Labels used by the widgets.
const (
	AllPostsLabel = "全部文章"
	AllTagsLabel  = "全部标签"
	allKey        = "all"
	uncategorized = "uncategorized"
)

// Icons resolves category icon files.
type Icons struct {
	Dir      string
	ByName   map[string]string
	All      string
	Fallback string
}

// CategoryIcon returns the icon src for category, or the all-posts icon when
// all is set.
func (i Icons) CategoryIcon(root, category string, all bool) string {
	file := ""
	if all {
		file = i.All
	} else {
		for name, f := range i.ByName {
			if posts.NormalizeCategory(name) == posts.NormalizeCategory(category) {
				file = f
				break
			}
		}
	}
	if file == "" {
		file = i.Fallback
	}
	return i.src(root, file)
}

// FallbackIcon returns the src used when an icon fails to load.
func (i Icons) FallbackIcon(root string) string {
	return i.src(root, i.Fallback)
}

func (i Icons) src(root, file string) string {
	dir := strings.Trim(i.Dir, "/")
	if dir == "" {
		return root + file
	}
	return root + dir + "/" + file
}

// CategoryNav renders the icon navigation. The "all posts" entry comes first
// and is active when no entry matches activeKey.
func CategoryNav(entries []Entry, total int, activeKey, root string, icons Icons) string {
	active := ActiveKey(entries, activeKey)
	var b strings.Builder
	writeCategoryItem(&b, root, "", AllPostsLabel, allKey, total, active == "", icons.CategoryIcon(root, "", true), icons.FallbackIcon(root))
	for _, e := range entries {
		dataKey := e.Key
		if dataKey == "" {
			dataKey = uncategorized
		}
		writeCategoryItem(&b, root, e.Name, e.Name, dataKey, e.Count, active != "" && e.Key == active, icons.CategoryIcon(root, e.Name, false), icons.FallbackIcon(root))
	}
	return b.String()
}

func writeCategoryItem(b *strings.Builder, root, value, label, dataKey string, count int, active bool, icon, fallback string) {
	class := "cat-item"
	if active {
		class += " active"
	}
	safe := html.EscapeString(label)
	b.WriteString(`<a class="` + class + `" href="` + html.EscapeString(CategoryHref(root, value)) + `"`)
	b.WriteString(` data-category="` + html.EscapeString(dataKey) + `"`)
	b.WriteString(` data-count="` + strconv.Itoa(count) + `"`)
	b.WriteString(` title="` + safe + `">`)
	b.WriteString(`<img class="icon-img" src="` + html.EscapeString(icon) + `" alt="` + safe + `"`)
	b.WriteString(` onerror="this.onerror=null;this.src='` + html.EscapeString(fallback) + `'">`)
	b.WriteString(`<span class="label">` + safe + `</span></a>`)
}

// TagCloud renders the tag links. It returns "" when there are no tags so
// the caller can hide the section.
func TagCloud(entries []Entry, activeTag, root string, canon posts.TagCanonicalizer) string {
	if len(entries) == 0 {
		return ""
	}
	active := ActiveKey(entries, canon.Key(activeTag))
	var b strings.Builder
	writeTagItem(&b, AllTagsLabel, TagHref(root, canon, ""), active == "")
	for _, e := range entries {
		writeTagItem(&b, e.Name, TagHref(root, canon, e.Name), active != "" && e.Key == active)
	}
	return b.String()
}

func writeTagItem(b *strings.Builder, label, href string, active bool) {
	class := "tag-item"
	if active {
		class += " active"
	}
	b.WriteString(`<a class="` + class + `" href="` + html.EscapeString(href) + `">` + html.EscapeString(label) + `</a>`)
}

// CategoryList renders the plain sidebar list: all posts first, then each
// category by descending count.
func CategoryList(entries []Entry, root string) string {
	var b strings.Builder
	writeListItem(&b, AllPostsLabel, CategoryHref(root, ""))
	for _, e := range entries {
		writeListItem(&b, e.Name, CategoryHref(root, e.Name))
	}
	return b.String()
}

func writeListItem(b *strings.Builder, label, href string) {
	b.WriteString(`<li><a href="` + html.EscapeString(href) + `">` + html.EscapeString(label) + `</a></li>`)
}
