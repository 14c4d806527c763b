package manifestgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/artifacts"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	defaultPostsDir     = "posts"
	defaultManifestFile = "posts/manifest.json"
	defaultDebounce     = 300 * time.Millisecond
	generatedAtLayout   = "2006-01-02T15:04:05.000Z07:00"
)

// Config locates the published posts and the manifest, relative to the site
// root.
type Config struct {
	PostsDir     string
	ManifestFile string
}

// Generator rebuilds the manifest from the metadata blocks of published
// pages.
type Generator struct {
	fsys     fs.FS
	writer   artifacts.Writer
	cfg      Config
	logger   interfaces.Logger
	now      func() time.Time
	debounce time.Duration
}

// Option customises a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithDebounce sets how long Watch waits for changes to settle.
func WithDebounce(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.debounce = d
		}
	}
}

// NewGenerator reads pages from fsys and writes the manifest through writer.
// Both are rooted at the site root.
func NewGenerator(fsys fs.FS, writer artifacts.Writer, cfg Config, opts ...Option) *Generator {
	if strings.TrimSpace(cfg.PostsDir) == "" {
		cfg.PostsDir = defaultPostsDir
	}
	if strings.TrimSpace(cfg.ManifestFile) == "" {
		cfg.ManifestFile = defaultManifestFile
	}
	g := &Generator{
		fsys:     fsys,
		writer:   writer,
		cfg:      cfg,
		logger:   logging.NoOp(),
		now:      time.Now,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate scans the posts directory. Pages without a usable metadata block
// are skipped with a warning; read failures abort the scan.
func (g *Generator) Generate(ctx context.Context) (posts.Manifest, error) {
	dir := path.Clean(g.cfg.PostsDir)
	entries, err := fs.ReadDir(g.fsys, dir)
	if err != nil {
		return posts.Manifest{}, fmt.Errorf("manifestgen: read %s: %w", dir, err)
	}

	list := make([]posts.Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return posts.Manifest{}, err
		}

		name := entry.Name()
		data, err := fs.ReadFile(g.fsys, path.Join(dir, name))
		if err != nil {
			return posts.Manifest{}, fmt.Errorf("manifestgen: read %s: %w", name, err)
		}
		post, err := g.entry(name, data)
		if err != nil {
			g.logger.Warn("manifestgen.post.skipped", "file", name, "error", err)
			continue
		}
		list = append(list, post)
	}

	posts.SortByCreatedAt(list)
	return posts.Manifest{
		GeneratedAt: g.now().UTC().Format(generatedAtLayout),
		PostCount:   len(list),
		Posts:       list,
	}, nil
}

// Write generates the manifest, validates it and writes it as two space
// indented JSON with a trailing newline.
func (g *Generator) Write(ctx context.Context) (posts.Manifest, error) {
	manifest, err := g.Generate(ctx)
	if err != nil {
		return posts.Manifest{}, err
	}
	data, err := Marshal(manifest)
	if err != nil {
		return posts.Manifest{}, err
	}
	if err := validation.ValidateManifest(data); err != nil {
		return posts.Manifest{}, fmt.Errorf("manifestgen: generated manifest rejected: %w", err)
	}
	if err := g.writer.WriteFile(ctx, artifacts.WriteRequest{
		Path:     g.cfg.ManifestFile,
		Content:  data,
		Category: artifacts.CategoryManifest,
	}); err != nil {
		return posts.Manifest{}, fmt.Errorf("manifestgen: write manifest: %w", err)
	}
	g.logger.Info("manifestgen.written", "path", g.cfg.ManifestFile, "posts", manifest.PostCount)
	return manifest, nil
}

// Marshal encodes a manifest the way it is stored on disk. HTML in summaries
// is not escaped.
func Marshal(manifest posts.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(manifest); err != nil {
		return nil, fmt.Errorf("manifestgen: encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) entry(fileName string, page []byte) (posts.Post, error) {
	doc, err := parsePage(page)
	if err != nil {
		return posts.Post{}, err
	}
	meta, err := metadataFrom(doc)
	if err != nil {
		return posts.Post{}, err
	}

	slug := meta.Slug
	if slug == "" {
		slug = strings.TrimSuffix(fileName, ".html")
	}
	post := posts.Post{
		ID:         firstNonEmpty(meta.ID, slug),
		Slug:       slug,
		Title:      firstNonEmpty(meta.Title, slug),
		CreatedAt:  meta.CreatedAt,
		Day:        firstNonEmpty(meta.Day, posts.DisplayDay(meta.CreatedAt)),
		Month:      firstNonEmpty(meta.Month, posts.DisplayMonth(meta.CreatedAt)),
		Categories: orEmpty(meta.Categories),
		Tags:       orEmpty(meta.Tags),
		Summary:    summaryFrom(doc, meta.Summary),
		Link:       firstNonEmpty(meta.Link, posts.LinkFor(g.cfg.PostsDir, slug)),
		MetaText:   MetaText(meta),
	}
	return post, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
