package templating

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-blog/internal/source"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

func newTestCache(files map[string]string) *Cache {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["partials/components/"+name+".html"] = &fstest.MapFile{Data: []byte(body)}
	}
	return NewCache(source.NewFS(fsys), "partials/components")
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	engine := NewEngine(newTestCache(nil))

	out, err := engine.Render(context.Background(), Request{
		Template: `<div class="{{WRAPPER_CLASS}}">{{TITLE_ELEMENT}}<span>{{DAY}} {{MONTH}}</span>{{BODY}}{{UNKNOWN}}<i>{{EXTRA_NOTE}}</i></div>`,
		Vars: map[string]string{
			"TITLE":      "Hello",
			"LINK":       "posts/hello.html",
			"DAY":        "5",
			"MONTH":      "Mar",
			"EXTRA_NOTE": "note",
		},
		Body: "<p>{{TITLE}}</p>",
		Root: "../",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := `<div class="post-content-wrapper"><h2 class="post-title"><a href="../posts/hello.html">Hello</a></h2><span>5 Mar</span><p>{{TITLE}}</p><i>note</i></div>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
}

func TestRenderExpandsIncludesOnce(t *testing.T) {
	cache := newTestCache(map[string]string{
		"meta":  `<p class="{{META_CLASS}}">{{META}}{{INCLUDE:inner}}</p>`,
		"inner": `never`,
	})
	engine := NewEngine(cache)

	out, err := engine.Render(context.Background(), Request{
		Template: `{{INCLUDE:meta}}|{{INCLUDE:meta}}|{{INCLUDE:missing}}|end`,
		Vars:     map[string]string{"META": "m", "META_CLASS": "x"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := `<p class="x">m{{INCLUDE:inner}}</p>|<p class="x">m{{INCLUDE:inner}}</p>||end`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
	if cache.Fetches() != 2 {
		t.Fatalf("expected two fetches (meta, missing), got %d", cache.Fetches())
	}
}

func TestRenderDropsFailedIncludeTokens(t *testing.T) {
	loader := interfaces.SourceFunc(func(ctx context.Context, name string) ([]byte, error) {
		return nil, errors.New("offline")
	})
	engine := NewEngine(NewCache(loader, "partials/components"))

	out, err := engine.Render(context.Background(), Request{
		Template: `<div>{{INCLUDE:meta}}{{TITLE}}</div>`,
		Vars:     map[string]string{"TITLE": "T"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != `<div>T</div>` {
		t.Fatalf("expected the failed include token to be dropped, got %s", out)
	}

	out, err = NewEngine(nil).Render(context.Background(), Request{Template: `a{{INCLUDE:meta}}b`})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "ab" {
		t.Fatalf("expected the token to be dropped without a loader, got %s", out)
	}
}

func TestValuesTitleElementVariants(t *testing.T) {
	cases := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"defaults", map[string]string{"TITLE": "T"}, `<h2 class="post-title">T</h2>`},
		{"explicit empty class", map[string]string{"TITLE": "T", "TITLE_CLASS": ""}, `<h2>T</h2>`},
		{"heading and class", map[string]string{"TITLE": "T", "HEADING": "H1", "TITLE_CLASS": "post-title single"}, `<h1 class="post-title single">T</h1>`},
		{"absolute link", map[string]string{"TITLE": "T", "LINK": "https://example.com"}, `<h2 class="post-title"><a href="https://example.com">T</a></h2>`},
		{"fragment link", map[string]string{"TITLE": "T", "LINK": "#top"}, `<h2 class="post-title"><a href="#top">T</a></h2>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Values(tc.vars, "", "../")[KeyTitleElement]
			if got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResolveLink(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"posts/a.html":        "../posts/a.html",
		"//cdn.example.com/x": "//cdn.example.com/x",
		"mailto:me@x.org":     "mailto:me@x.org",
		"#section":            "#section",
		"HTTPS://EXAMPLE.COM": "HTTPS://EXAMPLE.COM",
	}
	for input, want := range cases {
		if got := ResolveLink(input, "../"); got != want {
			t.Fatalf("ResolveLink(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCacheSharesConcurrentFetches(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	src := interfaces.SourceFunc(func(ctx context.Context, name string) ([]byte, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return []byte("<b>" + name + "</b>"), nil
	})
	cache := NewCache(src, "c")

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.Get(context.Background(), "card")
		}(i)
	}
	close(release)
	wg.Wait()

	if _, err := cache.Get(context.Background(), "card"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls > len(results) || calls < 1 {
		t.Fatalf("unexpected fetch count %d", calls)
	}
	for _, r := range results {
		if r != "<b>c/card.html</b>" {
			t.Fatalf("unexpected result %q", r)
		}
	}
}

func TestCacheDoesNotCacheFailuresAndResets(t *testing.T) {
	fail := true
	src := interfaces.SourceFunc(func(ctx context.Context, name string) ([]byte, error) {
		if fail {
			return nil, interfaces.ErrSourceNotFound
		}
		return []byte("ok"), nil
	})
	cache := NewCache(src, "")

	if _, err := cache.Get(context.Background(), "x"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	fail = false
	got, err := cache.Get(context.Background(), "x")
	if err != nil || got != "ok" {
		t.Fatalf("expected retry to succeed, got %q %v", got, err)
	}
	if cache.Fetches() != 2 {
		t.Fatalf("expected 2 fetches, got %d", cache.Fetches())
	}
	cache.Reset()
	if cache.Fetches() != 0 {
		t.Fatalf("expected Reset to clear counters")
	}
}

func TestCacheRejectsInvalidNames(t *testing.T) {
	cache := NewCache(interfaces.SourceFunc(func(context.Context, string) ([]byte, error) {
		return nil, nil
	}), "")
	if _, err := cache.Get(context.Background(), "../secret"); !errors.Is(err, ErrInvalidComponentName) {
		t.Fatalf("expected ErrInvalidComponentName, got %v", err)
	}
}

func TestCacheFetchSurvivesCanceledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	cache := NewCache(interfaces.SourceFunc(func(ctx context.Context, name string) ([]byte, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("<p>card</p>"), nil
	}), "partials/components")

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "post-card")
		first <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		markup, _ := cache.Get(context.Background(), "post-card")
		second <- markup
	}()

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the canceled caller to stop, got %v", err)
	}
	close(release)
	if markup := <-second; markup != "<p>card</p>" {
		t.Fatalf("expected the live caller to get the template, got %q", markup)
	}
}
