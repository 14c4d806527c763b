package publishcmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterBlogCommands.
type HandlerSet struct {
	Create   *CreatePostHandler
	Update   *UpdatePostHandler
	Delete   *DeletePostHandler
	Manifest *GenerateManifestHandler
	Export   *ExportPostHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	createOpts   []commands.HandlerOption[CreatePostCommand]
	updateOpts   []commands.HandlerOption[UpdatePostCommand]
	deleteOpts   []commands.HandlerOption[DeletePostCommand]
	manifestOpts []commands.HandlerOption[GenerateManifestCommand]
	exportOpts   []commands.HandlerOption[ExportPostCommand]
}

// WithCreateHandlerOptions forwards options to the create handler.
func WithCreateHandlerOptions(opts ...commands.HandlerOption[CreatePostCommand]) Option {
	return func(cfg *options) { cfg.createOpts = append(cfg.createOpts, opts...) }
}

// WithUpdateHandlerOptions forwards options to the update handler.
func WithUpdateHandlerOptions(opts ...commands.HandlerOption[UpdatePostCommand]) Option {
	return func(cfg *options) { cfg.updateOpts = append(cfg.updateOpts, opts...) }
}

// WithDeleteHandlerOptions forwards options to the delete handler.
func WithDeleteHandlerOptions(opts ...commands.HandlerOption[DeletePostCommand]) Option {
	return func(cfg *options) { cfg.deleteOpts = append(cfg.deleteOpts, opts...) }
}

// WithManifestHandlerOptions forwards options to the manifest handler.
func WithManifestHandlerOptions(opts ...commands.HandlerOption[GenerateManifestCommand]) Option {
	return func(cfg *options) { cfg.manifestOpts = append(cfg.manifestOpts, opts...) }
}

// WithExportHandlerOptions forwards options to the export handler.
func WithExportHandlerOptions(opts ...commands.HandlerOption[ExportPostCommand]) Option {
	return func(cfg *options) { cfg.exportOpts = append(cfg.exportOpts, opts...) }
}

// RegisterBlogCommands builds the publishing handlers and registers them
// with reg when it is not nil.
func RegisterBlogCommands(reg CommandRegistry, publisher Publisher, manifests ManifestWriter, exporter Exporter, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if publisher == nil {
		return nil, errors.New("blog command registration: publisher is nil")
	}
	if manifests == nil {
		return nil, errors.New("blog command registration: manifest writer is nil")
	}
	if exporter == nil {
		return nil, errors.New("blog command registration: exporter is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Create:   NewCreatePostHandler(publisher, commands.CommandLogger(provider, "publish"), cfg.createOpts...),
		Update:   NewUpdatePostHandler(publisher, commands.CommandLogger(provider, "publish"), cfg.updateOpts...),
		Delete:   NewDeletePostHandler(publisher, commands.CommandLogger(provider, "publish"), cfg.deleteOpts...),
		Manifest: NewGenerateManifestHandler(manifests, commands.CommandLogger(provider, "manifest"), cfg.manifestOpts...),
		Export:   NewExportPostHandler(exporter, commands.CommandLogger(provider, "export"), cfg.exportOpts...),
	}

	if reg != nil {
		for _, handler := range set.handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (s *HandlerSet) handlers() []any {
	return []any{s.Create, s.Update, s.Delete, s.Manifest, s.Export}
}

// Subscribe attaches every handler to the go-command dispatcher so messages
// can be sent with dispatcher.Dispatch. Failed executions are retried up to
// maxRetries times. The returned function removes the subscriptions.
func (s *HandlerSet) Subscribe(maxRetries int) func() {
	if maxRetries < 0 {
		maxRetries = 0
	}
	subs := []interface{ Unsubscribe() }{
		dispatcher.SubscribeCommand(s.Create, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.Update, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.Delete, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.Manifest, runner.WithMaxRetries(maxRetries)),
		dispatcher.SubscribeCommand(s.Export, runner.WithMaxRetries(maxRetries)),
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}
