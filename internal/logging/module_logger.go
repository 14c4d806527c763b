package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	rootModule        = "blog"
	templatingModule  = "blog.templating"
	componentsModule  = "blog.components"
	manifestModule    = "blog.manifest"
	siteModule        = "blog.site"
	publishModule     = "blog.publish"
	markdownModule    = "blog.markdown"
	manifestGenModule = "blog.manifestgen"
	exportModule      = "blog.export"
)

const (
	fieldPostSlug = "slug"
	fieldPostID   = "post_id"
	fieldMode     = "mode"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger so services can run with logging disabled.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TemplatingLogger scopes entries emitted by the substitution engine.
func TemplatingLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatingModule)
}

// ComponentsLogger scopes entries emitted while rendering components and partials.
func ComponentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, componentsModule)
}

// ManifestLogger scopes entries emitted by the manifest loader.
func ManifestLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, manifestModule)
}

// SiteLogger scopes entries emitted by the page runtime.
func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

// PublishLogger scopes entries emitted by the publishing pipeline.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// MarkdownLogger scopes entries emitted while rendering Markdown.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// ManifestGenLogger scopes entries emitted while regenerating the manifest.
func ManifestGenLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, manifestGenModule)
}

// ExportLogger scopes entries emitted by the Markdown exporter.
func ExportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exportModule)
}

// WithPostContext attaches the post identity and publishing mode. Blank values
// are skipped.
func WithPostContext(logger interfaces.Logger, slug, id, mode string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldPostSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldPostID] = trimmed
	}
	if trimmed := strings.TrimSpace(mode); trimmed != "" {
		fields[fieldMode] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
