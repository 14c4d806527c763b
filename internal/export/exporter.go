// Package export turns published post pages back into Markdown sources so
// hand-written or legacy posts can re-enter the publishing workflow.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blog/internal/artifacts"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/manifestgen"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrSlugRequired   = errors.New("export: slug is required")
	ErrPostNotFound   = errors.New("export: published post not found")
	ErrContentMissing = errors.New("export: post content container not found")
)

const (
	contentSelector = `div[class*="post-content"]`
	defaultPosts    = "posts"
	defaultOutput   = "drafts"
)

// Config locates published pages and exported sources, relative to the
// writer root.
type Config struct {
	PostsDir  string
	OutputDir string
}

// Request names the post to export. Output overrides "<OutputDir>/<slug>.md".
type Request struct {
	Slug   string
	Output string
}

// Result describes an export.
type Result struct {
	Post     posts.Post
	Output   string
	Assets   []string
	Markdown string
}

// Exporter converts published pages to Markdown with front matter.
type Exporter struct {
	fsys      fs.FS
	writer    artifacts.Writer
	cfg       Config
	logger    interfaces.Logger
	converter *md.Converter
}

type Option func(*Exporter)

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter reads pages from fsys and writes sources and copied images
// through writer. Both must address the same site root.
func NewExporter(fsys fs.FS, writer artifacts.Writer, cfg Config, opts ...Option) *Exporter {
	if strings.TrimSpace(cfg.PostsDir) == "" {
		cfg.PostsDir = defaultPosts
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = defaultOutput
	}
	e := &Exporter{
		fsys:   fsys,
		writer: writer,
		cfg:    cfg,
		logger: logging.NoOp(),
		converter: md.NewConverter("", true, &md.Options{
			CodeBlockStyle: "fenced",
			Fence:          "```",
		}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

type frontMatter struct {
	Title      string        `yaml:"title"`
	ID         string        `yaml:"id,omitempty"`
	Slug       string        `yaml:"slug"`
	CreatedAt  string        `yaml:"createdAt"`
	Categories []string      `yaml:"categories,omitempty"`
	Tags       []string      `yaml:"tags,omitempty"`
	Summary    []summaryItem `yaml:"summary,omitempty"`
}

type summaryItem struct {
	Type string `yaml:"type"`
	HTML string `yaml:"html"`
}

// Export reads "<PostsDir>/<slug>.html", recovers its front matter from the
// metadata block and writes the content container as Markdown. Local images
// are copied next to the source under "<slug>/".
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return Result{}, ErrSlugRequired
	}
	pagePath := posts.LinkFor(e.cfg.PostsDir, slug)
	page, err := fs.ReadFile(e.fsys, pagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrPostNotFound, pagePath)
		}
		return Result{}, fmt.Errorf("export: read %s: %w", pagePath, err)
	}

	post, err := manifestgen.ExtractMetadata(page)
	if err != nil {
		return Result{}, fmt.Errorf("export: %s: %w", pagePath, err)
	}
	if post.Slug == "" {
		post.Slug = slug
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Result{}, fmt.Errorf("export: parse %s: %w", pagePath, err)
	}
	content := doc.Find(contentSelector).First()
	if content.Length() == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrContentMissing, pagePath)
	}

	output := strings.TrimSpace(req.Output)
	if output == "" {
		output = path.Join(e.cfg.OutputDir, slug+".md")
	}
	logger := logging.WithPostContext(e.logger, post.Slug, post.ID, "export")

	unwrapSections(content)
	assets, err := e.rehomeImages(ctx, content, path.Dir(output), slug, logger)
	if err != nil {
		return Result{}, err
	}

	inner, err := content.Html()
	if err != nil {
		return Result{}, fmt.Errorf("export: serialize content: %w", err)
	}
	body, err := e.converter.ConvertString(inner)
	if err != nil {
		return Result{}, fmt.Errorf("export: convert %s: %w", pagePath, err)
	}

	source, err := renderSource(post, body)
	if err != nil {
		return Result{}, err
	}
	if err := e.writer.WriteFile(ctx, artifacts.WriteRequest{
		Path:     output,
		Content:  []byte(source),
		Category: artifacts.CategorySource,
	}); err != nil {
		return Result{}, err
	}
	logger.Info("export.written", "output", output, "assets", len(assets))

	return Result{Post: post, Output: output, Assets: assets, Markdown: source}, nil
}

// unwrapSections removes the h2 section wrappers and heading anchor markers
// added at publish time.
func unwrapSections(content *goquery.Selection) {
	content.Find("span.section-anchor").Remove()
	content.Find("section.post-section").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})
	content.Find("h2, h3, h4").RemoveAttr("data-heading-id").RemoveAttr("id")
}

func (e *Exporter) rehomeImages(ctx context.Context, content *goquery.Selection, outDir, slug string, logger interfaces.Logger) ([]string, error) {
	used := map[string]struct{}{}
	copied := map[string]string{}
	var outputs []string
	var failure error

	content.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if !markdown.IsLocalAsset(src) {
			return true
		}
		sitePath := path.Clean(path.Join(e.cfg.PostsDir, markdown.CanonicalAssetPath(src, true)))
		if sitePath == ".." || strings.HasPrefix(sitePath, "../") || !e.writer.Exists(sitePath) {
			logger.Warn("export.image.missing", "src", src)
			return true
		}
		rel, ok := copied[sitePath]
		if !ok {
			name := markdown.UniqueFileName(markdown.SanitizeAssetFileName(path.Base(sitePath)), used)
			used[name] = struct{}{}
			rel = slug + "/" + name
			destination := path.Join(outDir, rel)
			if err := e.writer.CopyFile(ctx, sitePath, destination); err != nil {
				failure = err
				return false
			}
			copied[sitePath] = rel
			outputs = append(outputs, destination)
		}
		img.SetAttr("src", rel)
		return true
	})
	return outputs, failure
}

func renderSource(post posts.Post, body string) (string, error) {
	fm := frontMatter{
		Title:      post.Title,
		ID:         post.ID,
		Slug:       post.Slug,
		CreatedAt:  post.CreatedAt,
		Categories: post.Categories,
		Tags:       post.Tags,
	}
	for _, block := range post.Summary {
		fm.Summary = append(fm.Summary, summaryItem{Type: block.Type, HTML: block.HTML})
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("export: encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}
