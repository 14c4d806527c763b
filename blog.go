// Package blog assembles the static-site blog: the page runtime that fills
// listing, taxonomy and sidebar widgets from the post manifest, and the
// build-time pipelines that publish Markdown posts, regenerate the manifest
// and export published posts back to Markdown.
package blog

import (
	publishcmd "github.com/goliatone/go-blog/internal/commands/publish"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/manifestgen"
	"github.com/goliatone/go-blog/internal/publish"
	"github.com/goliatone/go-blog/internal/site"
)

// Publisher exports the publishing service.
type Publisher = *publish.Service

// ManifestGenerator exports the manifest generator.
type ManifestGenerator = *manifestgen.Generator

// Runtime exports the page runtime.
type Runtime = *site.Runtime

// Exporter exports the Markdown exporter.
type Exporter = *export.Exporter

// Commands exports the command handler set.
type Commands = *publishcmd.HandlerSet

// Option customises the wiring of a Module.
type Option = di.Option

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithSiteFS          = di.WithSiteFS
	WithSource          = di.WithSource
	WithBaseURL         = di.WithBaseURL
	WithWriter          = di.WithWriter
	WithCommandRegistry = di.WithCommandRegistry
	WithClock           = di.WithClock
	WithShuffle         = di.WithShuffle
)

// Module is the top level blog façade.
type Module struct {
	container *di.Container
}

// New constructs a Module from cfg.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.container.Config
}

// Publisher returns the Markdown publishing service.
func (m *Module) Publisher() Publisher {
	return m.container.Publisher()
}

// Manifests returns the manifest generator.
func (m *Module) Manifests() ManifestGenerator {
	return m.container.Generator()
}

// Runtime returns the page runtime.
func (m *Module) Runtime() Runtime {
	return m.container.Runtime()
}

// Exporter returns the Markdown exporter.
func (m *Module) Exporter() Exporter {
	return m.container.Exporter()
}

// Commands returns the go-command handlers.
func (m *Module) Commands() Commands {
	return m.container.Commands()
}
