package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CollectImageSources lists image references in document order, without
// duplicates: Markdown image destinations and src attributes of raw <img>
// tags.
func CollectImageSources(source []byte) []string {
	doc := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser().Parse(text.NewReader(source))

	var out []string
	seen := map[string]struct{}{}
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Image:
			add(string(n.Destination))
		case *ast.HTMLBlock:
			var b strings.Builder
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			if n.HasClosure() {
				b.Write(n.ClosureLine.Value(source))
			}
			for _, src := range htmlImageSources(b.String()) {
				add(src)
			}
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				b.Write(seg.Value(source))
			}
			for _, src := range htmlImageSources(b.String()) {
				add(src)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

func htmlImageSources(markup string) []string {
	var out []string
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if tok.DataAtom != atom.Img {
			continue
		}
		for _, attr := range tok.Attr {
			if attr.Key == "src" {
				out = append(out, strings.TrimSpace(attr.Val))
			}
		}
	}
}

// RewriteInlineImages points every <img> whose src was rehomed at its
// published location.
func RewriteInlineImages(markup string, assets AssetMap) (string, error) {
	if strings.TrimSpace(markup) == "" || len(assets) == 0 {
		return markup, nil
	}
	nodes, err := parseFragment(markup)
	if err != nil {
		return "", err
	}
	changed := false
	for _, n := range nodes {
		walk(n, func(node *html.Node) {
			if node.Type != html.ElementNode || node.DataAtom != atom.Img {
				return
			}
			for i, attr := range node.Attr {
				if attr.Key != "src" {
					continue
				}
				if resolved := assets.Resolve(attr.Val); resolved != attr.Val {
					node.Attr[i].Val = resolved
					changed = true
				}
			}
		})
	}
	if !changed {
		return markup, nil
	}
	return renderFragment(nodes)
}
