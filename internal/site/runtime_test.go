package site

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/internal/components"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/source"
	"github.com/goliatone/go-blog/internal/taxonomy"
	"github.com/goliatone/go-blog/internal/templating"
)

type staticManifest struct {
	posts []posts.Post
	err   error
	calls int
}

func (m *staticManifest) Load(context.Context) ([]posts.Post, error) {
	m.calls++
	return m.posts, m.err
}

func samplePosts() []posts.Post {
	return []posts.Post{
		{ID: "3", Slug: "c", Title: "Gamma", CreatedAt: "2024-03-01", Categories: []string{"数学研究"}, Tags: []string{"fft"}, Summary: []posts.SummaryBlock{{Type: "p", HTML: "gamma summary"}}, Link: "posts/c.html"},
		{ID: "2", Slug: "b", Title: "Beta", CreatedAt: "2024-02-01", Categories: []string{"人工智能"}, Tags: []string{"ml"}, Link: "posts/b.html"},
		{ID: "1", Slug: "a", Title: "Alpha", CreatedAt: "2024-01-01", Categories: []string{"数学研究"}, Link: "posts/a.html"},
	}
}

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"partials/components/post-card.html":       {Data: []byte(`<section class="card">{{TITLE_ELEMENT}}<div class="{{META_CLASS}}">{{META}}</div>{{BODY}}</section>`)},
		"partials/components/post-header.html":     {Data: []byte(`<header class="post-header">{{TITLE_ELEMENT}}<div class="{{META_CLASS}}">{{META}}</div></header>`)},
		"partials/components/post-navigation.html": {Data: []byte(`<nav class="post-navigation">{{PREV_POST_LINK}}{{NEXT_POST_LINK}}</nav>`)},
		"partials/footer.html":                     {Data: []byte(`<footer class="footer"><span data-year-range></span><a href="{{ROOT}}index.html">home</a></footer>`)},
	}
}

func newRuntime(manifest ManifestSource, cfg Config) *Runtime {
	src := source.NewFS(siteFS())
	cache := templating.NewCache(src, "partials/components")
	return NewRuntime(
		components.NewIncluder(src, nil),
		components.NewRenderer(cache),
		manifest,
		cfg,
		WithClock(func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }),
		WithShuffle(func([]posts.Post) {}),
	)
}

const postPage = `<html><head><script type="application/json" id="post-metadata">{"id": "2", "categories": ["人工智能"], "tags": ["ml"]}</script></head>
<body>
<div data-component="post-header" data-title="Beta" data-heading="h1" data-meta='<span class="meta-item meta-categories">分类：<a href="#">人工智能</a></span><span class="meta-item meta-tags">标签：<a href="#">ml</a></span>'></div>
<div class="post-content single-post-content"><section class="post-section" id="intro"><h2 data-heading-id="intro">Intro <span class="section-anchor">#</span></h2><p>x</p></section></div>
<div data-component="post-navigation"></div>
<div class="sidebar-section toc" hidden><ul class="toc-list"></ul></div>
<ul data-recent-posts></ul>
<div data-include="../partials/footer.html"></div>
</body></html>`

func TestRenderPostPage(t *testing.T) {
	manifest := &staticManifest{posts: samplePosts()}
	out, err := newRuntime(manifest, Config{}).Render(context.Background(), Page{HTML: postPage, URL: "/posts/b.html"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		`<span class="prev-post">上一篇：<a href="../posts/c.html">Gamma</a></span>`,
		`<span class="next-post">下一篇：<a href="../posts/a.html">Alpha</a></span>`,
		`<h1 class="post-title">Beta</h1>`,
		`href="` + taxonomy.CategoryHref("../", "人工智能") + `"`,
		`href="../index.html?tag=ml"`,
		`<li><a href="#intro">Intro</a></li>`,
		`<li><a href="../posts/c.html">Gamma</a></li><li><a href="../posts/b.html">Beta</a></li><li><a href="../posts/a.html">Alpha</a></li>`,
		`<span data-year-range="">2009-2026</span>`,
		`<a href="../index.html">home</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %s\n%s", want, out)
		}
	}
	if strings.Contains(out, `class="sidebar-section toc" hidden`) {
		t.Fatalf("toc should be visible\n%s", out)
	}
	if strings.Contains(out, "data-include") || strings.Contains(out, "data-component") {
		t.Fatalf("placeholders should be expanded\n%s", out)
	}
	if manifest.calls != 1 {
		t.Fatalf("expected one manifest load, got %d", manifest.calls)
	}
}

const indexPage = `<html><body>
<div data-category-nav></div>
<ul data-category-list></ul>
<div data-tag-section hidden><div data-tag-cloud></div></div>
<div data-search-section><input data-search-input/><p data-search-status></p></div>
<div data-post-list></div>
<div data-pagination hidden></div>
<ul data-random-posts></ul>
</body></html>`

func TestRenderIndexWithCategoryFilter(t *testing.T) {
	runtime := newRuntime(&staticManifest{posts: samplePosts()}, Config{PostsPerPage: 1, PageWindow: 2, RandomCount: 2})
	query := url.Values{"category": {"数学研究"}}.Encode()
	out, err := runtime.Render(context.Background(), Page{HTML: indexPage, URL: "/index.html?" + query})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := strings.Count(out, `<section class="card">`); got != 1 {
		t.Fatalf("expected one card, got %d\n%s", got, out)
	}
	for _, want := range []string{
		`<h2 class="post-title"><a href="posts/c.html">Gamma</a></h2>`,
		`<p>gamma summary</p>`,
		`aria-current="page"`,
		`page=2`,
		`class="cat-item active"`,
		`data-count="3"`,
		`<li><a href="index.html">全部文章</a></li>`,
		`class="tag-item"`,
		`<li><a href="posts/c.html">Gamma</a></li><li><a href="posts/b.html">Beta</a></li>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %s\n%s", want, out)
		}
	}
	for _, unwanted := range []string{`data-pagination="" hidden`, `data-tag-section="" hidden`, "Alpha</a></h2>"} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("output should not contain %s\n%s", unwanted, out)
		}
	}
}

func TestRenderSearch(t *testing.T) {
	runtime := newRuntime(&staticManifest{posts: samplePosts()}, Config{})

	out, err := runtime.Render(context.Background(), Page{HTML: indexPage, URL: "/index.html?search=Gamma"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		`找到 <strong>1</strong> 篇与 “Gamma” 相关的文章：`,
		`value="Gamma"`,
		`data-pagination="" hidden=""`,
		`data-search-status="" hidden=""`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %s\n%s", want, out)
		}
	}

	out, err = runtime.Render(context.Background(), Page{HTML: indexPage, URL: "/index.html?search=zzz"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Count(out, "未找到与“zzz”相关的文章。") != 2 {
		t.Fatalf("expected the no result message in list and status\n%s", out)
	}
}

func TestRenderSurvivesManifestFailure(t *testing.T) {
	manifest := &staticManifest{err: errors.New("offline")}
	page := strings.Replace(indexPage, "</body>", `<ul data-recent-posts></ul><div data-include="partials/footer.html"></div></body>`, 1)

	out, err := newRuntime(manifest, Config{}).Render(context.Background(), Page{HTML: page, URL: "/index.html"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"文章加载失败，请稍后重试。",
		`data-pagination="" hidden=""`,
		`<li><a href="#">加载失败</a></li>`,
		`<span data-year-range="">2009-2026</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %s\n%s", want, out)
		}
	}
	if manifest.calls != 1 {
		t.Fatalf("failed loads should not be retried within a render, got %d", manifest.calls)
	}
}

func TestRenderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRuntime(&staticManifest{}, Config{}).Render(ctx, Page{HTML: indexPage}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRootPrefixAndYearRange(t *testing.T) {
	if RootPrefix("/blog/posts/a.html") != "../" || RootPrefix("/index.html") != "" || RootPrefix(`C:\site\posts\a.html`) != "../" {
		t.Fatalf("unexpected root prefix")
	}
	if YearRange(2009, 2026) != "2009-2026" || YearRange(2009, 2009) != "2009" {
		t.Fatalf("unexpected year range")
	}
}

func TestBodyDataRootOverridesPrefix(t *testing.T) {
	page := `<html><body data-root="/"><ul data-recent-posts></ul></body></html>`
	out, err := newRuntime(&staticManifest{posts: samplePosts()[:1]}, Config{}).Render(context.Background(), Page{HTML: page, URL: "/posts/c.html"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<a href="/posts/c.html">Gamma</a>`) {
		t.Fatalf("expected body root to win\n%s", out)
	}
}
