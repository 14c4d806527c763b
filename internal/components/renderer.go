// Package components expands [data-component] hosts and [data-include]
// partials in a parsed page.
package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/dom"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/templating"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	hostSelector = "[data-component]"
	// maxPasses bounds re-rendering when a template emits further hosts.
	maxPasses   = 3
	parallelism = 8
)

// Result counts the outcome of a render run.
type Result struct {
	Rendered int
	Failed   int

	failedHosts map[*html.Node]struct{}
}

func (r Result) failed(h host) bool {
	_, ok := r.failedHosts[h.sel.Get(0)]
	return ok
}

// Renderer replaces component hosts with their rendered templates.
type Renderer struct {
	templates templating.Loader
	engine    *templating.Engine
	logger    interfaces.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger sets the renderer logger.
func WithRendererLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logging.Ensure(logger)
	}
}

// NewRenderer builds a renderer over the template cache.
func NewRenderer(templates templating.Loader, opts ...RendererOption) *Renderer {
	r := &Renderer{templates: templates, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	r.engine = templating.NewEngine(templates, templating.WithLogger(r.logger))
	return r
}

type host struct {
	sel   *goquery.Selection
	name  string
	props Props
	body  string
}

// RenderAll renders every component host under doc. Hosts are rendered
// concurrently and the resulting patches applied in document order. A
// failing host is logged and left in place. Hosts emitted by a template are
// picked up by a following pass.
func (r *Renderer) RenderAll(ctx context.Context, doc *dom.Document, root string) (Result, error) {
	var total Result
	skip := map[*html.Node]struct{}{}
	for pass := 0; pass < maxPasses; pass++ {
		hosts := r.collect(doc, skip)
		if len(hosts) == 0 {
			break
		}
		patches, result, err := r.render(ctx, hosts, root)
		if err != nil {
			return total, err
		}
		for _, h := range hosts {
			if result.failed(h) {
				skip[h.sel.Get(0)] = struct{}{}
			}
		}
		dom.Apply(patches...)
		total.Rendered += result.Rendered
		total.Failed += result.Failed
		if result.Rendered == 0 {
			break
		}
	}
	return total, nil
}

// collect returns the outermost hosts. Nested hosts are rendered once their
// parent's output is in the tree.
func (r *Renderer) collect(doc *dom.Document, skip map[*html.Node]struct{}) []host {
	var hosts []host
	doc.Find(hostSelector).Each(func(_ int, sel *goquery.Selection) {
		if _, failed := skip[sel.Get(0)]; failed {
			return
		}
		if sel.ParentsFiltered(hostSelector).Length() > 0 {
			return
		}
		name, _ := sel.Attr("data-component")
		hosts = append(hosts, host{
			sel:   sel,
			name:  strings.TrimSpace(name),
			props: PropsFromAttributes(dom.DataAttributes(sel)),
			body:  dom.InnerHTML(sel),
		})
	})
	return hosts
}

func (r *Renderer) render(ctx context.Context, hosts []host, root string) ([]dom.Patch, Result, error) {
	markup := make([]string, len(hosts))
	failed := make([]bool, len(hosts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, h := range hosts {
		g.Go(func() error {
			out, err := r.RenderHost(gctx, h.name, h.props, h.body, root)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Warn("components.render.failed", "component", h.name, "error", err)
				failed[i] = true
				return nil
			}
			markup[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Result{}, err
	}

	result := Result{failedHosts: map[*html.Node]struct{}{}}
	patches := make([]dom.Patch, 0, len(hosts))
	for i, h := range hosts {
		if failed[i] {
			result.Failed++
			result.failedHosts[h.sel.Get(0)] = struct{}{}
			continue
		}
		result.Rendered++
		patches = append(patches, dom.ReplaceWith(h.sel, markup[i]))
	}
	return patches, result, nil
}

// RenderHost renders one component from its name, props and original body.
func (r *Renderer) RenderHost(ctx context.Context, name string, props Props, body, root string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("components: empty component name")
	}
	if err := props.Validate(); err != nil {
		return "", fmt.Errorf("components: %s: %w", name, err)
	}
	if len(props.Dropped) > 0 {
		r.logger.Debug("components.attributes.ignored", "component", name, "attributes", strings.Join(props.Dropped, ","))
	}
	template, err := r.templates.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return r.engine.Render(ctx, templating.Request{
		Template: template,
		Vars:     props.Vars(),
		Body:     body,
		Root:     root,
	})
}
