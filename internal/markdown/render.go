package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options configures the post renderer.
type Options struct {
	// Extensions names goldmark extensions; unknown names are ignored and an
	// empty list selects GFM.
	Extensions []string
	// Fences enables ::: fenced div containers.
	Fences bool
	// HighlightStyle is a chroma style name. Empty leaves code blocks to the
	// client side highlighter.
	HighlightStyle string
	HardWraps      bool
	// AnchorLevels is the inclusive heading range that gets a section anchor.
	AnchorLevels [2]int
}

// Renderer renders post Markdown to HTML. A fresh goldmark instance is built
// per call since heading ids and the asset map are per document.
type Renderer struct {
	opts   Options
	logger interfaces.Logger
}

// NewRenderer builds a renderer.
func NewRenderer(opts Options, logger interfaces.Logger) *Renderer {
	if opts.AnchorLevels == [2]int{} {
		opts.AnchorLevels = [2]int{2, 4}
	}
	return &Renderer{opts: opts, logger: logging.Ensure(logger)}
}

// Render converts source to HTML. Headings get unique ids, headings within
// the anchor range get a section anchor, and image destinations found in
// assets are rewritten.
func (r *Renderer) Render(source []byte, assets AssetMap) (string, error) {
	nodes := &postNodeRenderer{
		slugger:      NewHeadingSlugger(),
		anchorLevels: r.opts.AnchorLevels,
		style:        r.opts.HighlightStyle,
		logger:       r.logger,
	}

	rendererOptions := []renderer.Option{
		goldmarkhtml.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(nodes, 200)),
	}
	if r.opts.HardWraps {
		rendererOptions = append(rendererOptions, goldmarkhtml.WithHardWraps())
	}

	extensions := collectExtensions(r.opts.Extensions)
	if r.opts.Fences {
		extensions = append(extensions, &fences.Extender{})
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&imageTransformer{assets: assets}, 100)),
		),
		goldmark.WithRendererOptions(rendererOptions...),
	)

	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// imageTransformer rewrites image destinations that were rehomed.
type imageTransformer struct {
	assets AssetMap
}

func (t *imageTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	if len(t.assets) == 0 {
		return
	}
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := node.(*ast.Image); ok {
			dest := string(img.Destination)
			if resolved := t.assets.Resolve(dest); resolved != dest {
				img.Destination = []byte(resolved)
			}
		}
		return ast.WalkContinue, nil
	})
}

type postNodeRenderer struct {
	slugger      *HeadingSlugger
	anchorLevels [2]int
	style        string
	logger       interfaces.Logger
}

func (r *postNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindImage, r.renderImage)
	if r.style != "" {
		reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
	}
}

func (r *postNodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	level := strconv.Itoa(n.Level)
	if entering {
		id := r.slugger.Slug(plainText(n, source))
		_, _ = w.WriteString(`<h` + level + ` id="` + html.EscapeString(id) + `">`)
		return ast.WalkContinue, nil
	}
	if n.Level >= r.anchorLevels[0] && n.Level <= r.anchorLevels[1] {
		_, _ = w.WriteString(` <span class="section-anchor">#</span>`)
	}
	_, _ = w.WriteString(`</h` + level + ">\n")
	return ast.WalkContinue, nil
}

func (r *postNodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	_, _ = w.WriteString(`<img src="` + html.EscapeString(string(n.Destination)) + `" alt="` + html.EscapeString(plainText(n, source)) + `"`)
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="` + html.EscapeString(string(n.Title)) + `"`)
	}
	_, _ = w.WriteString(">")
	return ast.WalkSkipChildren, nil
}

func (r *postNodeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	language := string(n.Language(source))

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if err := highlight(w, r.style, language, code.String()); err != nil {
		r.logger.Warn("markdown.highlight.failed", "language", language, "error", err)
		class := ""
		if language != "" {
			class = ` class="language-` + html.EscapeString(language) + `"`
		}
		_, _ = w.WriteString("<pre><code" + class + ">" + html.EscapeString(code.String()) + "</code></pre>\n")
	}
	return ast.WalkSkipChildren, nil
}

func highlight(w util.BufWriter, styleName, language, code string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	formatter := chromahtml.New(chromahtml.TabWidth(2))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get(styleName), iterator); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// plainText concatenates the text below n, soft line breaks as spaces.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
