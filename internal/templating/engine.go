// Package templating implements the {{PLACEHOLDER}} / {{INCLUDE:name}}
// substitution used by component templates.
package templating

import (
	"context"
	"maps"
	"regexp"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	DefaultHeading      = "h2"
	DefaultWrapperClass = "post-content-wrapper"
	DefaultMetaClass    = "post-meta"
	DefaultTitleClass   = "post-title"
)

// Keys with a computed or defaulted value.
const (
	KeyRoot         = "ROOT"
	KeyBody         = "BODY"
	KeyDay          = "DAY"
	KeyMonth        = "MONTH"
	KeyTitle        = "TITLE"
	KeyMeta         = "META"
	KeyLink         = "LINK"
	KeyHeading      = "HEADING"
	KeyWrapperClass = "WRAPPER_CLASS"
	KeyMetaClass    = "META_CLASS"
	KeyTitleClass   = "TITLE_CLASS"
	KeyTitleElement = "TITLE_ELEMENT"
)

var (
	includeToken     = regexp.MustCompile(`\{\{INCLUDE:([a-zA-Z0-9_-]+)\}\}`)
	placeholderToken = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)
)

// Loader resolves component templates by name.
type Loader interface {
	Get(ctx context.Context, name string) (string, error)
}

// Request is a single substitution. Vars keys are upper snake case. Body is
// the host element's original inner markup.
type Request struct {
	Template string
	Vars     map[string]string
	Body     string
	Root     string
}

// Engine performs the two substitution passes.
type Engine struct {
	loader Loader
	logger interfaces.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for include failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.Ensure(logger)
	}
}

// NewEngine builds an engine resolving includes through loader.
func NewEngine(loader Loader, opts ...Option) *Engine {
	e := &Engine{
		loader: loader,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render expands include tokens once, splicing raw template text, then
// replaces every placeholder with its value or the empty string. Included
// text is not scanned for further includes. A failed include is logged and
// its {{INCLUDE:name}} token replaced with the empty string, never left in
// the output.
func (e *Engine) Render(ctx context.Context, req Request) (string, error) {
	markup, err := e.expandIncludes(ctx, req.Template)
	if err != nil {
		return "", err
	}
	values := Values(req.Vars, req.Body, req.Root)
	return placeholderToken.ReplaceAllStringFunc(markup, func(token string) string {
		key := placeholderToken.FindStringSubmatch(token)[1]
		return values[key]
	}), nil
}

func (e *Engine) expandIncludes(ctx context.Context, template string) (string, error) {
	matches := includeToken.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	included := map[string]string{}
	for _, match := range matches {
		name := match[1]
		if _, seen := included[name]; seen {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if e.loader == nil {
			included[name] = ""
			continue
		}
		markup, err := e.loader.Get(ctx, name)
		if err != nil {
			e.logger.Warn("templating.include.failed", "include", name, "error", err)
			included[name] = ""
			continue
		}
		included[name] = markup
	}

	return includeToken.ReplaceAllStringFunc(template, func(token string) string {
		return included[includeToken.FindStringSubmatch(token)[1]]
	}), nil
}

// Values merges vars with the computed keys. Computed keys win over vars.
func Values(vars map[string]string, body, root string) map[string]string {
	out := make(map[string]string, len(vars)+9)
	maps.Copy(out, vars)

	heading := vars[KeyHeading]
	if heading == "" {
		heading = DefaultHeading
	}
	titleClass, hasTitleClass := vars[KeyTitleClass]
	if !hasTitleClass {
		titleClass = DefaultTitleClass
	}

	out[KeyRoot] = root
	out[KeyBody] = body
	out[KeyDay] = vars[KeyDay]
	out[KeyMonth] = vars[KeyMonth]
	out[KeyTitle] = vars[KeyTitle]
	out[KeyMeta] = vars[KeyMeta]
	out[KeyWrapperClass] = orDefault(vars[KeyWrapperClass], DefaultWrapperClass)
	out[KeyMetaClass] = orDefault(vars[KeyMetaClass], DefaultMetaClass)
	out[KeyTitleElement] = TitleElement(heading, titleClass, vars[KeyTitle], ResolveLink(vars[KeyLink], root))
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
