package markdown

import (
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	source := []byte(`---
title: " Hello "
id: 11400
createdAt: 2024-03-05
categories: 数学研究，信号处理, 
tags: [Go, " fft "]
summary:
  - type: p
    html: "<b>x</b>"
  - type: ""
    html: skipped
draft: false
---
Body text
`)
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Hello" || fm.ID != "11400" || fm.Draft {
		t.Fatalf("unexpected front matter %+v", fm)
	}
	date, _, err := fm.Date()
	if err != nil || date != "2024-03-05" {
		t.Fatalf("Date = %q, %v", date, err)
	}
	if strings.Join(fm.Categories, "|") != "数学研究|信号处理" {
		t.Fatalf("categories = %v", fm.Categories)
	}
	if strings.Join(fm.Tags, "|") != "Go|fft" {
		t.Fatalf("tags = %v", fm.Tags)
	}
	if len(fm.Summary) != 1 || fm.Summary[0].HTML != "<b>x</b>" {
		t.Fatalf("summary = %+v", fm.Summary)
	}
	if !strings.Contains(string(body), "Body text") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatterStringSummaryAndDraft(t *testing.T) {
	fm, _, err := ParseFrontMatter([]byte("---\ntitle: T\ndate: 2024-01-02\nsummary: a < b\ndraft: true\n---\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if !fm.Draft {
		t.Fatalf("expected draft")
	}
	if len(fm.Summary) != 1 || fm.Summary[0].Type != "p" || fm.Summary[0].HTML != "a &lt; b" {
		t.Fatalf("summary = %+v", fm.Summary)
	}
	if date, _, err := fm.Date(); err != nil || date != "2024-01-02" {
		t.Fatalf("date fallback = %q, %v", date, err)
	}
	if _, _, err := (FrontMatter{CreatedAt: "soon"}).Date(); err == nil {
		t.Fatalf("expected invalid date error")
	}
	if _, _, err := (FrontMatter{}).Date(); err != ErrDateRequired {
		t.Fatalf("expected ErrDateRequired, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Fourier Transform 101": "fourier-transform-101",
		"  --Hello__World--  ":  "hello__world",
		"傅里叶变换":                 "",
		"C++ & Go":              "c-go",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHeadingSlugger(t *testing.T) {
	s := NewHeadingSlugger()
	got := []string{s.Slug("Intro"), s.Slug("intro"), s.Slug("Intro"), s.Slug("!!"), s.Slug("傅里叶 变换")}
	want := []string{"intro", "intro-1", "intro-2", "section", "傅里叶-变换"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRenderHeadingsAndImages(t *testing.T) {
	r := NewRenderer(Options{}, nil)
	out, err := r.Render([]byte("# Title\n\n## Intro\n\nText ![alt *x*](./img/a.png \"t\")\n\n## Intro\n\n##### Deep\n"), AssetMap{"img/a.png": "../assets/1/a.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		`<h1 id="title">Title</h1>`,
		`<h2 id="intro">Intro <span class="section-anchor">#</span></h2>`,
		`<img src="../assets/1/a.png" alt="alt x" title="t">`,
		`<h2 id="intro-1">Intro <span class="section-anchor">#</span></h2>`,
		`<h5 id="deep">Deep</h5>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in\n%s", want, out)
		}
	}
}

func TestRenderHighlightsWhenStyleSet(t *testing.T) {
	src := []byte("```go\nfunc main() {}\n```\n")

	plain, err := NewRenderer(Options{}, nil).Render(src, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(plain, `<code class="language-go">`) {
		t.Fatalf("expected plain code block, got %s", plain)
	}

	highlighted, err := NewRenderer(Options{HighlightStyle: "github"}, nil).Render(src, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(highlighted, "<pre") || !strings.Contains(highlighted, "style=") {
		t.Fatalf("expected chroma output, got %s", highlighted)
	}
}

func TestRenderFences(t *testing.T) {
	out, err := NewRenderer(Options{Fences: true}, nil).Render([]byte("::: {.note}\ninside\n:::\n"), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<div") || !strings.Contains(out, "note") || !strings.Contains(out, "inside") {
		t.Fatalf("expected fenced div, got %s", out)
	}
}

func TestCollectImageSources(t *testing.T) {
	src := []byte("![a](img/a.png)\n\n<div><img src=\"img/b.png\"></div>\n\ntext <img src='img/c.png'> and ![again](img/a.png)\n\n![remote](https://x/y.png)\n")
	got := CollectImageSources(src)
	want := []string{"img/a.png", "img/b.png", "img/c.png", "https://x/y.png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIsLocalAsset(t *testing.T) {
	cases := map[string]bool{
		"img/a.png":          true,
		"./a.png":            true,
		"../shared/a.png":    true,
		"https://x/a.png":    false,
		"data:image/png;x":   false,
		"//cdn/a.png":        false,
		"#frag":              false,
		"/abs/a.png":         false,
		"   ":                false,
	}
	for in, want := range cases {
		if got := IsLocalAsset(in); got != want {
			t.Fatalf("IsLocalAsset(%q) = %v", in, got)
		}
	}
}

func TestAssetNames(t *testing.T) {
	if got := SanitizeAssetFileName(`my "fig": 1?.png`); got != "my-fig-1-.png" {
		t.Fatalf("SanitizeAssetFileName = %q", got)
	}
	used := map[string]struct{}{"a.png": {}, "a-1.png": {}}
	if got := UniqueFileName("a.png", used); got != "a-2.png" {
		t.Fatalf("UniqueFileName = %q", got)
	}
	if got := (AssetMap{"img/a b.png": "x"}).Resolve("img/a%20b.png"); got != "x" {
		t.Fatalf("Resolve decoded = %q", got)
	}
}

func TestRewriteInlineImages(t *testing.T) {
	in := `<p><img src="./img/a.png" alt="x"></p><img src="https://x/y.png">`
	out, err := RewriteInlineImages(in, AssetMap{"img/a.png": "../assets/1/a.png"})
	if err != nil {
		t.Fatalf("RewriteInlineImages: %v", err)
	}
	want := `<p><img src="../assets/1/a.png" alt="x"/></p><img src="https://x/y.png"/>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
	if same, _ := RewriteInlineImages(in, nil); same != in {
		t.Fatalf("empty map must leave markup untouched")
	}
}

func TestWrapSections(t *testing.T) {
	in := "<p>lead</p>\n<h2 id=\"a\">A <span class=\"section-anchor\">#</span></h2>\n<p>x</p>\n<h2>B &amp; C</h2><p>y</p>"
	out, err := WrapSections(in)
	if err != nil {
		t.Fatalf("WrapSections: %v", err)
	}
	want := "<p>lead</p>\n" +
		`<section class="post-section" id="a"><h2 data-heading-id="a">A <span class="section-anchor">#</span></h2>` + "\n<p>x</p>\n</section>" +
		`<section class="post-section" id="b-c"><h2 data-heading-id="b-c">B &amp; C</h2><p>y</p></section>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
}
