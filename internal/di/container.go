package di

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/artifacts"
	publishcmd "github.com/goliatone/go-blog/internal/commands/publish"
	"github.com/goliatone/go-blog/internal/components"
	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/manifest"
	"github.com/goliatone/go-blog/internal/manifestgen"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/publish"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/internal/source"
	"github.com/goliatone/go-blog/internal/taxonomy"
	"github.com/goliatone/go-blog/internal/templating"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Container wires the blog services from a single configuration.
type Container struct {
	Config runtimeconfig.Config

	provider interfaces.LoggerProvider
	siteFS   fs.FS
	source   interfaces.Source
	writer   artifacts.Writer
	registry publishcmd.CommandRegistry
	baseURL  string
	clock    func() time.Time
	shuffle  func([]posts.Post)

	templates *templating.Cache
	includes  *components.Includer
	renderer  *components.Renderer
	manifests *manifest.Loader
	runtime   *site.Runtime
	generator *manifestgen.Generator
	publisher *publish.Service
	exporter  *export.Exporter
	commands  *publishcmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.provider = provider
		}
	}
}

// WithSiteFS overrides the filesystem the build-time services read from.
// It must describe the same tree as the writer root.
func WithSiteFS(fsys fs.FS) Option {
	return func(c *Container) {
		if fsys != nil {
			c.siteFS = fsys
		}
	}
}

// WithSource overrides where the page runtime fetches partials, component
// templates and the manifest.
func WithSource(src interfaces.Source) Option {
	return func(c *Container) {
		if src != nil {
			c.source = src
		}
	}
}

// WithBaseURL makes the page runtime fetch from a deployed site instead of
// the local tree. The manifest is always requested uncached.
func WithBaseURL(baseURL string) Option {
	return func(c *Container) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithWriter overrides the artifact writer.
func WithWriter(writer artifacts.Writer) Option {
	return func(c *Container) {
		if writer != nil {
			c.writer = writer
		}
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg publishcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithClock fixes the clock used for manifest timestamps and the footer year.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithShuffle fixes the permutation used by the random posts widget.
func WithShuffle(shuffle func([]posts.Post)) Option {
	return func(c *Container) {
		if shuffle != nil {
			c.shuffle = shuffle
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.provider == nil {
		provider, err := NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.provider = provider
	}

	root := strings.TrimSpace(cfg.Paths.Root)
	if root == "" {
		root = "."
	}
	if c.writer == nil {
		c.writer = artifacts.NewDisk(root)
	}
	if c.siteFS == nil {
		c.siteFS = os.DirFS(root)
	}
	if c.source == nil {
		if c.baseURL != "" {
			remote, err := source.NewHTTP(c.baseURL,
				source.WithTimeout(cfg.Runtime.FetchTimeout),
				source.WithNoStore(cfg.Paths.ManifestFile),
			)
			if err != nil {
				return nil, err
			}
			c.source = remote
		} else {
			c.source = source.NewFS(c.siteFS)
		}
	}

	c.configureRuntime()
	c.configurePublishing()

	commands, err := publishcmd.RegisterBlogCommands(c.registry, c.publisher, c.generator, c.exporter, c.provider)
	if err != nil {
		return nil, err
	}
	c.commands = commands
	return c, nil
}

func (c *Container) configureRuntime() {
	cfg := c.Config
	c.templates = templating.NewCache(c.source, cfg.Paths.ComponentsDir)
	c.includes = components.NewIncluder(c.source, logging.ComponentsLogger(c.provider))
	c.renderer = components.NewRenderer(c.templates, components.WithRendererLogger(logging.ComponentsLogger(c.provider)))
	c.manifests = manifest.NewLoader(c.source, cfg.Paths.ManifestFile, manifest.WithLogger(logging.ManifestLogger(c.provider)))

	siteOpts := []site.Option{
		site.WithLogger(logging.SiteLogger(c.provider)),
		site.WithClock(c.clock),
	}
	if c.shuffle != nil {
		siteOpts = append(siteOpts, site.WithShuffle(c.shuffle))
	}
	c.runtime = site.NewRuntime(c.includes, c.renderer, c.manifests, site.Config{
		PostsPerPage:      cfg.Listing.PostsPerPage,
		PageWindow:        cfg.Listing.PageWindow,
		RecentCount:       cfg.Listing.RecentCount,
		RandomCount:       cfg.Listing.RandomCount,
		SummaryBlockTypes: cfg.Listing.SummaryBlockTypes,
		CategoryPriority:  cfg.Taxonomy.CategoryPriority,
		Icons: taxonomy.Icons{
			Dir:      cfg.Paths.IconsDir,
			ByName:   cfg.Taxonomy.CategoryIcons,
			All:      cfg.Taxonomy.AllIcon,
			Fallback: cfg.Taxonomy.FallbackIcon,
		},
		TagAliases:      cfg.Taxonomy.TagAliases,
		FooterStartYear: cfg.Site.FooterStartYear,
	}, siteOpts...)
}

func (c *Container) configurePublishing() {
	cfg := c.Config
	c.generator = manifestgen.NewGenerator(c.siteFS, c.writer, manifestgen.Config{
		PostsDir:     cfg.Paths.PostsDir,
		ManifestFile: cfg.Paths.ManifestFile,
	}, manifestgen.WithLogger(logging.ManifestGenLogger(c.provider)), manifestgen.WithClock(c.clock))

	c.publisher = publish.NewService(c.writer, publish.Config{
		PostsDir:           cfg.Paths.PostsDir,
		AssetsDir:          cfg.Paths.AssetsDir,
		ManifestFile:       cfg.Paths.ManifestFile,
		BaselineID:         int64(cfg.Publish.BaselineID),
		Language:           cfg.Site.Language,
		TitleSuffix:        cfg.Site.TitleSuffix,
		RegenerateManifest: cfg.Publish.RegenerateManifest,
		SanitizeSummary:    cfg.Publish.SanitizeSummary,
		Markdown: markdown.Options{
			Extensions:     cfg.Markdown.Extensions,
			Fences:         cfg.Markdown.Fences,
			HighlightStyle: cfg.Markdown.HighlightStyle,
			HardWraps:      cfg.Markdown.HardWraps,
			AnchorLevels:   cfg.Markdown.AnchorLevels,
		},
	}, publish.WithLogger(logging.PublishLogger(c.provider)), publish.WithManifestWriter(c.generator))

	c.exporter = export.NewExporter(c.siteFS, c.writer, export.Config{
		PostsDir:  cfg.Paths.PostsDir,
		OutputDir: cfg.Paths.DraftsDir,
	}, export.WithLogger(logging.ExportLogger(c.provider)))
}

// NewLoggerProvider builds the provider selected by cfg. "none" yields nil,
// which every module treats as logging disabled.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "none":
		return nil, nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	case "", "console":
		options := console.Options{}
		if level := strings.TrimSpace(cfg.Level); level != "" {
			parsed, ok := console.ParseLevel(level)
			if !ok {
				return nil, errors.New("logging: unsupported console level " + level)
			}
			options.MinLevel = &parsed
		}
		return console.NewProvider(options), nil
	}
	return nil, runtimeconfig.ErrLoggingProviderUnknown
}

// LoggerProvider returns the provider shared by every service.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.provider }

// Source returns the source the page runtime fetches from.
func (c *Container) Source() interfaces.Source { return c.source }

// Writer returns the artifact writer rooted at the site tree.
func (c *Container) Writer() artifacts.Writer { return c.writer }

// Templates returns the component template cache.
func (c *Container) Templates() *templating.Cache { return c.templates }

// Manifests returns the runtime manifest loader.
func (c *Container) Manifests() *manifest.Loader { return c.manifests }

// Runtime returns the page runtime.
func (c *Container) Runtime() *site.Runtime { return c.runtime }

// Generator returns the manifest generator.
func (c *Container) Generator() *manifestgen.Generator { return c.generator }

// Publisher returns the publishing service.
func (c *Container) Publisher() *publish.Service { return c.publisher }

// Exporter returns the Markdown exporter.
func (c *Container) Exporter() *export.Exporter { return c.exporter }

// Commands returns the command handlers.
func (c *Container) Commands() *publishcmd.HandlerSet { return c.commands }
