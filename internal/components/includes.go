package components

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/dom"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/source"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	includeSelector = "[data-include]"
	rootToken       = "{{ROOT}}"
)

// Includer swaps [data-include] placeholders for partial markup. Partials
// are fetched on every call.
type Includer struct {
	source interfaces.Source
	logger interfaces.Logger
}

// NewIncluder builds an includer reading partials from src. Include URLs are
// resolved against the source root after relative prefixes are dropped.
func NewIncluder(src interfaces.Source, logger interfaces.Logger) *Includer {
	return &Includer{source: src, logger: logging.Ensure(logger)}
}

// InjectAll replaces each include placeholder with its partial, after
// substituting {{ROOT}} with root. A placeholder whose fetch fails is left in
// place.
func (i *Includer) InjectAll(ctx context.Context, doc *dom.Document, root string) (Result, error) {
	var targets []*goquery.Selection
	var urls []string
	doc.Find(includeSelector).Each(func(_ int, sel *goquery.Selection) {
		url, _ := sel.Attr("data-include")
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		targets = append(targets, sel)
		urls = append(urls, url)
	})
	if len(targets) == 0 {
		return Result{}, nil
	}

	markup := make([]string, len(targets))
	ok := make([]bool, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for idx, url := range urls {
		g.Go(func() error {
			body, err := i.source.Fetch(gctx, source.Clean(url))
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				i.logger.Warn("components.include.failed", "include", url, "error", err)
				return nil
			}
			markup[idx] = strings.ReplaceAll(string(body), rootToken, root)
			ok[idx] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var result Result
	patches := make([]dom.Patch, 0, len(targets))
	for idx, sel := range targets {
		if !ok[idx] {
			result.Failed++
			continue
		}
		result.Rendered++
		patches = append(patches, dom.ReplaceWith(sel, markup[idx]))
	}
	dom.Apply(patches...)
	return result, nil
}
