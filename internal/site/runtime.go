// Package site renders a static page the way the browser runtime would
// leave it: partials injected, components expanded and the listing,
// taxonomy and sidebar widgets filled from the post manifest.
package site

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/components"
	"github.com/goliatone/go-blog/internal/dom"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/taxonomy"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	defaultRecentCount     = 5
	defaultRandomCount     = 5
	defaultFooterStartYear = 2009
	postsSegment           = "/posts/"
)

// ManifestSource provides the post list, newest first.
type ManifestSource interface {
	Load(ctx context.Context) ([]posts.Post, error)
}

// Config tunes the widgets.
type Config struct {
	PostsPerPage      int
	PageWindow        int
	RecentCount       int
	RandomCount       int
	SummaryBlockTypes []string
	CategoryPriority  []string
	Icons             taxonomy.Icons
	TagAliases        map[string]string
	FooterStartYear   int
}

// Page is a page to render. URL supplies the path used for the root prefix
// and the query carrying listing filters.
type Page struct {
	HTML string
	URL  string
}

// Runtime renders pages. It is safe for concurrent use.
type Runtime struct {
	includes  *components.Includer
	renderer  *components.Renderer
	manifests ManifestSource
	cfg       Config
	canon     posts.TagCanonicalizer
	logger    interfaces.Logger
	now       func() time.Time
	shuffle   func([]posts.Post)
}

type Option func(*Runtime)

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runtime) {
		r.logger = logging.Ensure(logger)
	}
}

// WithClock sets the clock used by the footer year.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) {
		if now != nil {
			r.now = now
		}
	}
}

// WithShuffle sets the permutation used to pick random posts.
func WithShuffle(shuffle func([]posts.Post)) Option {
	return func(r *Runtime) {
		if shuffle != nil {
			r.shuffle = shuffle
		}
	}
}

func NewRuntime(includes *components.Includer, renderer *components.Renderer, manifests ManifestSource, cfg Config, opts ...Option) *Runtime {
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = defaultRecentCount
	}
	if cfg.RandomCount <= 0 {
		cfg.RandomCount = defaultRandomCount
	}
	if cfg.FooterStartYear <= 0 {
		cfg.FooterStartYear = defaultFooterStartYear
	}
	r := &Runtime{
		includes:  includes,
		renderer:  renderer,
		manifests: manifests,
		cfg:       cfg,
		canon:     posts.NewTagCanonicalizer(cfg.TagAliases),
		logger:    logging.NoOp(),
		now:       time.Now,
		shuffle: func(list []posts.Post) {
			rand.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RootPrefix is "../" for pages under a posts directory and "" otherwise.
func RootPrefix(path string) string {
	if strings.Contains(strings.ReplaceAll(path, "\\", "/"), postsSegment) {
		return "../"
	}
	return ""
}

// state is the per render context shared by the features.
type state struct {
	doc    *dom.Document
	root   string
	path   string
	query  url.Values
	posts  []posts.Post
	err    error
	loaded bool
}

type feature struct {
	name string
	run  func(context.Context, *state) error
}

// Render returns the page with every feature applied. A failing feature is
// logged and the remaining features still run; only a parse failure or a
// cancelled context fails the render.
func (r *Runtime) Render(ctx context.Context, page Page) (string, error) {
	doc, err := dom.Parse(page.HTML)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(strings.TrimSpace(page.URL))
	if err != nil {
		return "", fmt.Errorf("site: page url: %w", err)
	}

	st := &state{doc: doc, path: u.Path, query: u.Query(), root: RootPrefix(u.Path)}
	if override, ok := doc.Find("body").Attr("data-root"); ok {
		st.root = override
	}
	logger := logging.WithFields(r.logger, map[string]any{"page": u.Path})

	for _, f := range r.features() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := f.run(ctx, st); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			logger.Warn("site.feature.failed", "feature", f.name, "error", err)
		}
	}
	return doc.HTML()
}

func (r *Runtime) features() []feature {
	return []feature{
		{"includes", r.injectPartials},
		{"post-navigation", r.postNavigation},
		{"components", r.renderComponents},
		{"meta-links", r.fixMetaLinks},
		{"toc", r.tableOfContents},
		{"listing", r.renderListing},
		{"search-status", r.searchStatus},
		{"category-nav", r.categoryNav},
		{"category-list", r.categoryList},
		{"tag-cloud", r.tagCloud},
		{"recent-posts", r.recentPosts},
		{"random-posts", r.randomPosts},
		{"footer-year", r.footerYear},
	}
}

// load fetches the manifest once per render.
func (r *Runtime) load(ctx context.Context, st *state) ([]posts.Post, error) {
	if !st.loaded {
		st.loaded = true
		if r.manifests == nil {
			st.err = errors.New("site: no manifest source")
		} else {
			st.posts, st.err = r.manifests.Load(ctx)
		}
	}
	return st.posts, st.err
}

func (r *Runtime) injectPartials(ctx context.Context, st *state) error {
	if r.includes == nil {
		return nil
	}
	result, err := r.includes.InjectAll(ctx, st.doc, st.root)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		r.logger.Debug("site.includes", "injected", result.Rendered, "failed", result.Failed)
	}
	return nil
}

func (r *Runtime) renderComponents(ctx context.Context, st *state) error {
	if r.renderer == nil {
		return nil
	}
	_, err := r.renderer.RenderAll(ctx, st.doc, st.root)
	return err
}

func (r *Runtime) footerYear(_ context.Context, st *state) error {
	el := st.doc.Find(".footer [data-year-range]").First()
	if el.Length() == 0 {
		return nil
	}
	el.SetText(YearRange(r.cfg.FooterStartYear, r.now().Year()))
	return nil
}

// YearRange renders "start-current", or just start when current is not
// later.
func YearRange(start, current int) string {
	if current > start {
		return fmt.Sprintf("%d-%d", start, current)
	}
	return fmt.Sprintf("%d", start)
}
