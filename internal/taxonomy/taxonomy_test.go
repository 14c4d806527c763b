package taxonomy

import (
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/posts"
)

func samplePosts() []posts.Post {
	return []posts.Post{
		{Slug: "a", Categories: []string{"Notes", "数学研究"}, Tags: []string{"Go", "ct"}},
		{Slug: "b", Categories: []string{"notes "}, Tags: []string{"go", "Radon"}},
		{Slug: "c", Categories: []string{"Alpha"}, Tags: []string{"radon", "GO"}},
		{Slug: "d", Categories: []string{"Beta", "计算成像"}, Tags: []string{"CT scan"}},
	}
}

func keys(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestCategoriesOrdering(t *testing.T) {
	got := keys(Categories(samplePosts(), []string{"计算成像", "人工智能", "工程实践", "数学研究"}))
	want := []string{"计算成像", "数学研究", "Notes", "Alpha", "Beta"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTagsCanonicalCounts(t *testing.T) {
	canon := posts.NewTagCanonicalizer(map[string]string{"ct scan": "CT"})
	entries := Tags(samplePosts(), canon)
	got := keys(entries)
	want := []string{"Go", "ct", "Radon"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
	if entries[0].Count != 3 || entries[1].Count != 2 {
		t.Fatalf("unexpected counts %+v", entries)
	}
}

func TestHrefs(t *testing.T) {
	canon := posts.NewTagCanonicalizer(map[string]string{"golang": "Go"})
	if got := CategoryHref("../", "Deep Learning"); got != "../index.html?category=Deep%20Learning" {
		t.Fatalf("CategoryHref = %q", got)
	}
	if got := CategoryHref("", ""); got != "index.html" {
		t.Fatalf("CategoryHref empty = %q", got)
	}
	if got := TagHref("", canon, "golang"); got != "index.html?tag=Go" {
		t.Fatalf("TagHref = %q", got)
	}
	if got := SearchHref("", "傅里叶 变换"); got != "index.html?search=%E5%82%85%E9%87%8C%E5%8F%B6%20%E5%8F%98%E6%8D%A2" {
		t.Fatalf("SearchHref = %q", got)
	}
}

func TestCategoryNavActiveAndIcons(t *testing.T) {
	list := samplePosts()
	entries := Categories(list, []string{"计算成像"})
	icons := Icons{Dir: "icons", ByName: map[string]string{"计算成像": "ct-scan.png"}, All: "all.png", Fallback: "math.png"}

	markup := CategoryNav(entries, len(list), "notes", "../", icons)
	if !strings.HasPrefix(markup, `<a class="cat-item" href="../index.html" data-category="all" data-count="4" title="全部文章"><img class="icon-img" src="../icons/all.png"`) {
		t.Fatalf("unexpected all entry: %s", markup)
	}
	if !strings.Contains(markup, `<a class="cat-item active" href="../index.html?category=Notes" data-category="notes"`) {
		t.Fatalf("expected active notes entry: %s", markup)
	}
	if !strings.Contains(markup, `src="../icons/ct-scan.png"`) || !strings.Contains(markup, `this.src='../icons/math.png'`) {
		t.Fatalf("expected icons: %s", markup)
	}

	markup = CategoryNav(entries, len(list), "missing", "", icons)
	if !strings.HasPrefix(markup, `<a class="cat-item active" href="index.html"`) {
		t.Fatalf("unknown filter must fall back to all: %s", markup)
	}
}

func TestTagCloud(t *testing.T) {
	canon := posts.NewTagCanonicalizer(nil)
	entries := Tags(samplePosts(), canon)
	markup := TagCloud(entries, "RADON", "", canon)
	if !strings.HasPrefix(markup, `<a class="tag-item" href="index.html">全部标签</a>`) {
		t.Fatalf("unexpected markup: %s", markup)
	}
	if !strings.Contains(markup, `<a class="tag-item active" href="index.html?tag=Radon">Radon</a>`) {
		t.Fatalf("expected active tag: %s", markup)
	}
	if TagCloud(nil, "", "", canon) != "" {
		t.Fatalf("empty cloud must render nothing")
	}
}

func TestCategoryListAndDisplayNames(t *testing.T) {
	list := samplePosts()
	markup := CategoryList(ByCount(list), "")
	if !strings.HasPrefix(markup, `<li><a href="index.html">全部文章</a></li><li><a href="index.html?category=Notes">Notes</a></li>`) {
		t.Fatalf("unexpected list: %s", markup)
	}
	if got := CategoryDisplayName(list, " NOTES"); got != "Notes" {
		t.Fatalf("CategoryDisplayName = %q", got)
	}
	if got := CategoryDisplayName(list, "Nope"); got != "Nope" {
		t.Fatalf("CategoryDisplayName fallback = %q", got)
	}
}
