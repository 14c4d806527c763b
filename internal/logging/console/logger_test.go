package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
)

func TestLoggerWritesModuleAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC) },
		MinLevel: &minLevel,
	})

	logger := logging.ModuleLogger(provider, "blog.publish")
	logger = logger.WithContext(logging.ContextWithFields(context.Background(), map[string]any{"run": "r-1"}))
	logger.Warn("post.asset.skipped", "slug", "hello world", "error", errors.New("missing"), "count", 2)

	want := `2024-03-14T15:09:26Z WARN [blog.publish] post.asset.skipped count=2 error=missing run=r-1 slug="hello world"`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestLoggerOmitTimeAndOddArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, OmitTime: true})

	provider.GetLogger("").Info("site.render", "page", "/index.html", "dangling")

	want := `INFO site.render !BADKEY=dangling page=/index.html`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, OmitTime: true})

	logger := provider.GetLogger("blog.test")
	logger.Debug("ignored.debug")
	logger.Info("included.info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || lines[0] != "INFO [blog.test] included.info" {
		t.Fatalf("expected only the info entry, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		" DEBUG ": console.LevelDebug,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
