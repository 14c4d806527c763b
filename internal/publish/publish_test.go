package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/artifacts"
	"github.com/goliatone/go-blog/internal/manifest"
	"github.com/goliatone/go-blog/internal/manifestgen"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
)

type fixture struct {
	root    string
	sources string
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"posts", "assets"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	disk := artifacts.NewDisk(root)
	gen := manifestgen.NewGenerator(os.DirFS(root), disk, manifestgen.Config{})
	service := NewService(disk, Config{
		TitleSuffix:        " | 科学空间",
		RegenerateManifest: true,
		SanitizeSummary:    true,
	}, WithManifestWriter(gen))
	return &fixture{root: root, sources: t.TempDir(), service: service}
}

func (f *fixture) source(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.sources, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func (f *fixture) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(rel)))
	return err == nil
}

func (f *fixture) manifest(t *testing.T) []posts.Post {
	t.Helper()
	list, err := manifest.Decode([]byte(f.read(t, "posts/manifest.json")))
	if err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return list
}

const basicPost = `---
title: FFT Basics
createdAt: 2024-03-05
categories: [数学研究]
tags: fft, 信号
summary: Fast <b>transform</b>
---
Intro paragraph.

## 定义

![fig](img/fig%201.png)

<p><img src="./img/b.png"></p>

## Intro

text
`

func (f *fixture) writeImages(t *testing.T) {
	t.Helper()
	f.source(t, "img/fig 1.png", "png-a")
	f.source(t, "img/b.png", "png-b")
}

func TestCreatePublishesPageAssetsAndManifest(t *testing.T) {
	f := newFixture(t)
	f.writeImages(t)
	src := f.source(t, "fft.md", basicPost)

	result, err := f.service.Create(context.Background(), Request{Source: src})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Post.ID != "11385" || result.Post.Slug != "fft-basics" || result.Output != "posts/fft-basics.html" {
		t.Fatalf("unexpected result %+v", result)
	}
	if !result.ManifestWritten || len(result.Assets) != 2 {
		t.Fatalf("expected assets and manifest, got %+v", result)
	}

	page := f.read(t, "posts/fft-basics.html")
	for _, want := range []string{
		"<title>FFT Basics | 科学空间</title>",
		`"id": "11385"`,
		`"month": "Mar"`,
		`src="../assets/11385/fig-1.png"`,
		`src="../assets/11385/b.png"`,
		`<section class="post-section" id="定义">`,
		`<h2 data-heading-id="intro">Intro <span class="section-anchor">#</span></h2>`,
		`data-heading="h1"`,
		`<div data-component="post-navigation"></div>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page is missing %s\n%s", want, page)
		}
	}
	if strings.Contains(page, "<b>transform</b>") {
		t.Fatalf("string summary must be escaped")
	}
	if !strings.HasSuffix(page, "</html>\n") {
		t.Fatalf("page must end with a newline")
	}
	if f.read(t, "assets/11385/fig-1.png") != "png-a" || f.read(t, "assets/11385/b.png") != "png-b" {
		t.Fatalf("assets not copied")
	}

	list := f.manifest(t)
	if len(list) != 1 {
		t.Fatalf("expected one manifest entry, got %+v", list)
	}
	entry := list[0]
	if entry.ID != "11385" || entry.Slug != "fft-basics" || entry.Title != "FFT Basics" || entry.CreatedAt != "2024-03-05" {
		t.Fatalf("manifest entry does not round trip: %+v", entry)
	}
	if strings.Join(entry.Categories, ",") != "数学研究" || strings.Join(entry.Tags, ",") != "fft,信号" {
		t.Fatalf("taxonomy does not round trip: %+v", entry)
	}
}

func TestCreateRejectsConflicts(t *testing.T) {
	f := newFixture(t)
	f.writeImages(t)
	src := f.source(t, "fft.md", basicPost)
	if _, err := f.service.Create(context.Background(), Request{Source: src}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := f.service.Create(context.Background(), Request{Source: src})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}
	if err.Error() != `Post slug "fft-basics" already exists. Use --mode update to modify it.` {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = f.service.Create(context.Background(), Request{Source: src, ID: "11385", Slug: "other"})
	if !errors.Is(err, ErrIDConflict) {
		t.Fatalf("expected ErrIDConflict, got %v", err)
	}

	if err := os.Remove(filepath.Join(f.root, "posts", "manifest.json")); err != nil {
		t.Fatal(err)
	}
	_, err = f.service.Create(context.Background(), Request{Source: src, SkipManifest: true})
	if !errors.Is(err, ErrOutputExists) || err.Error() != "Post output already exists at posts/fft-basics.html" {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
}

func TestUpdateChangingSlugLeavesOnePage(t *testing.T) {
	f := newFixture(t)
	f.writeImages(t)
	src := f.source(t, "fft.md", basicPost)
	if _, err := f.service.Create(context.Background(), Request{Source: src}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated := strings.Replace(basicPost, "title: FFT Basics", "title: FFT Basics\nid: 11385\nslug: fft-intro", 1)
	src = f.source(t, "fft.md", updated)
	result, err := f.service.Update(context.Background(), Request{Source: src})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if result.Output != "posts/fft-intro.html" || len(result.Removed) != 1 || result.Removed[0] != "posts/fft-basics.html" {
		t.Fatalf("unexpected result %+v", result)
	}
	if f.exists("posts/fft-basics.html") || !f.exists("posts/fft-intro.html") {
		t.Fatalf("expected exactly the new page")
	}
	if !f.exists("assets/11385/fig-1.png") {
		t.Fatalf("expected assets to be recopied")
	}
	list := f.manifest(t)
	if len(list) != 1 || list[0].Slug != "fft-intro" {
		t.Fatalf("unexpected manifest %+v", list)
	}
}

func TestUpdateRequiresExistingPost(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "new.md", "---\ntitle: New\ncreatedAt: 2024-01-01\n---\nbody\n")
	_, err := f.service.Update(context.Background(), Request{Source: src})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if err.Error() != `No existing post found to update. Provide the correct "id" or "slug".` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.writeImages(t)
	src := f.source(t, "fft.md", basicPost)
	if _, err := f.service.Create(context.Background(), Request{Source: src}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := f.service.Delete(context.Background(), Request{Slug: "nope"})
	if !errors.Is(err, ErrOutputMissing) || err.Error() != "Post file not found at posts/nope.html" {
		t.Fatalf("expected missing file error, got %v", err)
	}
	if !f.exists("posts/fft-basics.html") || !f.exists("assets/11385") {
		t.Fatalf("failed delete must not touch the site")
	}

	if _, err := f.service.Delete(context.Background(), Request{}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for an empty request, got %v", err)
	}

	result, err := f.service.Delete(context.Background(), Request{ID: "11385"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(result.Removed) != 2 || f.exists("posts/fft-basics.html") || f.exists("assets/11385") {
		t.Fatalf("expected page and assets removed, got %+v", result)
	}
	if list := f.manifest(t); len(list) != 0 {
		t.Fatalf("expected empty manifest, got %+v", list)
	}
}

func TestFrontMatterFailures(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name    string
		content string
		kind    error
		message string
	}{
		{"draft", "---\ntitle: T\ncreatedAt: 2024-01-01\ndraft: true\n---\n", markdown.ErrDraft, `Front matter sets "draft: true". Refusing to publish.`},
		{"title", "---\ncreatedAt: 2024-01-01\n---\n", markdown.ErrTitleRequired, `Front matter must include a non-empty "title".`},
		{"date", "---\ntitle: T\n---\n", markdown.ErrDateRequired, `Front matter must include "createdAt" (ISO date).`},
		{"bad date", "---\ntitle: T\ncreatedAt: someday\n---\n", markdown.ErrInvalidDate, `Invalid "createdAt" value: someday`},
		{"image", "---\ntitle: T\ncreatedAt: 2024-01-01\n---\n![x](missing.png)\n", ErrAssetMissing, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := f.source(t, tc.name+".md", tc.content)
			_, err := f.service.Create(context.Background(), Request{Source: src, SkipManifest: true})
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if tc.message != "" && err.Error() != tc.message {
				t.Fatalf("unexpected message %q", err.Error())
			}
			if strings.Contains(tc.name, "date") || tc.name == "title" {
				if !errors.Is(err, ErrFrontMatterInvalid) {
					t.Fatalf("expected ErrFrontMatterInvalid alongside %v, got %v", tc.kind, err)
				}
			}
		})
	}

	if _, err := f.service.Create(context.Background(), Request{Source: filepath.Join(f.sources, "nope.md")}); !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}

func TestTitleOverride(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "notes.md", "---\ncreatedAt: 2024-01-01\n---\nbody\n")
	result, err := f.service.Create(context.Background(), Request{Source: src, Title: "Given Title", SkipManifest: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Post.Title != "Given Title" || result.Post.Slug != "given-title" || result.ManifestWritten {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeCreate, "Update": ModeUpdate, " delete ": ModeDelete} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	_, err := ParseMode("publish")
	if !errors.Is(err, ErrInvalidMode) || err.Error() != `Unsupported mode: publish. Expected "create", "update", or "delete".` {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestResolveID(t *testing.T) {
	if got := ResolveID(" 42 ", nil, nil, 11384); got != "42" {
		t.Fatalf("explicit id = %q", got)
	}
	if got := ResolveID("", nil, nil, 11384); got != "11385" {
		t.Fatalf("baseline id = %q", got)
	}
	got := ResolveID("", []string{"11390", "abc", "12x"}, []string{"11400.html", "about.html", "99999.txt"}, 11384)
	if got != "11401" {
		t.Fatalf("scanned id = %q", got)
	}
}

func TestResolveSlug(t *testing.T) {
	if got, _ := ResolveSlug(" my-slug ", "Title", "/x/a.md", ""); got != "my-slug" {
		t.Fatalf("explicit slug = %q", got)
	}
	if got, _ := ResolveSlug("", "傅里叶", "/x/2024-fft.md", ""); got != "2024-fft" {
		t.Fatalf("file name slug = %q", got)
	}
	if got, _ := ResolveSlug("", "傅里叶", "/x/变换.md", "11385"); got != "11385" {
		t.Fatalf("id slug = %q", got)
	}
	if _, err := ResolveSlug("", "傅里叶", "/x/变换.md", ""); !errors.Is(err, ErrSlugUnresolved) {
		t.Fatalf("expected ErrSlugUnresolved, got %v", err)
	}
}

func TestMetaHTML(t *testing.T) {
	got := MetaHTML("2024-03-05", []string{"A&B"}, nil)
	want := `<span class="meta-item meta-date">2024-03-05</span><span class="meta-divider">|</span>` +
		`<span class="meta-item meta-categories">分类：<a href="#">A&amp;B</a></span><span class="meta-divider">|</span>` +
		`<span class="meta-item meta-tags">标签：<span class="post-taxonomy-empty">暂无标签</span></span>`
	if got != want {
		t.Fatalf("unexpected meta\nwant: %s\ngot:  %s", want, got)
	}
}

func TestBuildPageEscaping(t *testing.T) {
	page, err := BuildPage(Page{
		Title:       "T & U",
		TitleSuffix: " | 科学空间",
		Metadata:    posts.Post{ID: "1", Slug: "t", Title: "T & U", Categories: []string{}, Tags: []string{}, Summary: []posts.SummaryBlock{{Type: "p", HTML: "</script>"}}},
		MetaHTML:    MetaHTML("2024-03-05", nil, nil),
		Content:     "<p>one</p>\n<p>two</p>",
	})
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	for _, want := range []string{
		`<html lang="zh-CN">`,
		"<title>T &amp; U | 科学空间</title>",
		`        "title": "T & U",`,
		`"html": "<\/script>"`,
		`data-meta="&lt;span class=&#34;meta-item meta-date&#34;&gt;2024-03-05&lt;/span&gt;`,
		"                <p>one</p>\n                <p>two</p>",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page is missing %s\n%s", want, page)
		}
	}
}
