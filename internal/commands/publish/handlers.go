package publishcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/publish"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	createOperation   = "publish.create"
	updateOperation   = "publish.update"
	deleteOperation   = "publish.delete"
	manifestOperation = "manifest.generate"
	exportOperation   = "export.post"
)

// Text codes for export failures.
const (
	CodeExportSlugRequired   = "EXPORT_SLUG_REQUIRED"
	CodeExportPostNotFound   = "EXPORT_POST_NOT_FOUND"
	CodeExportContentMissing = "EXPORT_CONTENT_MISSING"
)

var (
	_ command.Commander[CreatePostCommand]       = (*CreatePostHandler)(nil)
	_ command.Commander[UpdatePostCommand]       = (*UpdatePostHandler)(nil)
	_ command.Commander[DeletePostCommand]       = (*DeletePostHandler)(nil)
	_ command.Commander[GenerateManifestCommand] = (*GenerateManifestHandler)(nil)
	_ command.Commander[ExportPostCommand]       = (*ExportPostHandler)(nil)
)

// Publisher is the publishing surface the handlers drive.
type Publisher interface {
	Create(ctx context.Context, req publish.Request) (publish.Result, error)
	Update(ctx context.Context, req publish.Request) (publish.Result, error)
	Delete(ctx context.Context, req publish.Request) (publish.Result, error)
}

// ManifestWriter rebuilds and persists the manifest.
type ManifestWriter interface {
	Write(ctx context.Context) (posts.Manifest, error)
}

// Exporter converts a published post back to Markdown.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

// Text codes attached to publishing failures.
const (
	CodePostNotFound        = "POST_NOT_FOUND"
	CodePostConflict        = "POST_CONFLICT"
	CodePostDraft           = "POST_DRAFT"
	CodeFrontMatterInvalid  = "FRONTMATTER_INVALID"
	CodeSlugUnresolved      = "SLUG_UNRESOLVED"
	CodeSourceMissing       = "SOURCE_MISSING"
	CodeInvalidMode         = "MODE_INVALID"
	CodeAssetConflict       = "ASSET_CONFLICT"
	CodeManifestUnavailable = "MANIFEST_UNAVAILABLE"
)

// publishCodes maps publishing sentinels to text codes. Input failures are
// caused by the request or its source rather than by the site tree.
var publishCodes = []struct {
	kind  error
	code  string
	input bool
}{
	{publish.ErrPostNotFound, CodePostNotFound, true},
	{publish.ErrOutputMissing, CodePostNotFound, true},
	{publish.ErrIDConflict, CodePostConflict, true},
	{publish.ErrSlugConflict, CodePostConflict, true},
	{publish.ErrOutputExists, CodePostConflict, true},
	{markdown.ErrDraft, CodePostDraft, true},
	{publish.ErrFrontMatterInvalid, CodeFrontMatterInvalid, true},
	{publish.ErrIDUnresolved, CodeFrontMatterInvalid, true},
	{publish.ErrSlugUnresolved, CodeSlugUnresolved, true},
	{publish.ErrSourceMissing, CodeSourceMissing, true},
	{publish.ErrAssetMissing, CodeSourceMissing, true},
	{publish.ErrInvalidMode, CodeInvalidMode, true},
	{publish.ErrAssetConflict, CodeAssetConflict, false},
	{publish.ErrManifestUnavailable, CodeManifestUnavailable, false},
}

func tagPublishError(err error) error {
	for _, entry := range publishCodes {
		if !errors.Is(err, entry.kind) {
			continue
		}
		if entry.input {
			return commands.InvalidInput(err, entry.code)
		}
		return commands.Failed(err, entry.code)
	}
	return err
}

func tagExportError(err error) error {
	switch {
	case errors.Is(err, export.ErrSlugRequired):
		return commands.InvalidInput(err, CodeExportSlugRequired)
	case errors.Is(err, export.ErrPostNotFound):
		return commands.InvalidInput(err, CodeExportPostNotFound)
	case errors.Is(err, export.ErrContentMissing):
		return commands.Failed(err, CodeExportContentMissing)
	}
	return err
}

func postFields(slug, id, source string) map[string]any {
	fields := map[string]any{}
	if slug != "" {
		fields["slug"] = slug
	}
	if id != "" {
		fields["post_id"] = id
	}
	if source != "" {
		fields["source"] = source
	}
	return fields
}

func publishOutcome(logger interfaces.Logger, event string, result publish.Result) {
	logging.WithPostContext(logger, result.Post.Slug, result.Post.ID, string(result.Mode)).
		Info(event, "output", result.Output, "assets", len(result.Assets), "manifest_written", result.ManifestWritten)
}

// CreatePostHandler publishes new posts.
type CreatePostHandler struct {
	inner *commands.Handler[CreatePostCommand]
}

// NewCreatePostHandler binds the handler to a Publisher.
func NewCreatePostHandler(publisher Publisher, logger interfaces.Logger, opts ...commands.HandlerOption[CreatePostCommand]) *CreatePostHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg CreatePostCommand) error {
		result, err := publisher.Create(ctx, msg.request())
		if err != nil {
			return tagPublishError(err)
		}
		publishOutcome(baseLogger, "publish.command.create.completed", result)
		invokeCallback(msg.ResultCallback, ResultEnvelope{Publish: &result})
		return nil
	}
	handlerOpts := []commands.HandlerOption[CreatePostCommand]{
		commands.WithLogger[CreatePostCommand](baseLogger),
		commands.WithOperation[CreatePostCommand](createOperation),
		commands.WithMessageFields(func(msg CreatePostCommand) map[string]any {
			return postFields(msg.Slug, msg.ID, msg.Source)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CreatePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &CreatePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreatePostCommand].
func (h *CreatePostHandler) Execute(ctx context.Context, msg CreatePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdatePostHandler republishes existing posts.
type UpdatePostHandler struct {
	inner *commands.Handler[UpdatePostCommand]
}

// NewUpdatePostHandler binds the handler to a Publisher.
func NewUpdatePostHandler(publisher Publisher, logger interfaces.Logger, opts ...commands.HandlerOption[UpdatePostCommand]) *UpdatePostHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg UpdatePostCommand) error {
		result, err := publisher.Update(ctx, msg.request())
		if err != nil {
			return tagPublishError(err)
		}
		publishOutcome(baseLogger, "publish.command.update.completed", result)
		invokeCallback(msg.ResultCallback, ResultEnvelope{Publish: &result})
		return nil
	}
	handlerOpts := []commands.HandlerOption[UpdatePostCommand]{
		commands.WithLogger[UpdatePostCommand](baseLogger),
		commands.WithOperation[UpdatePostCommand](updateOperation),
		commands.WithMessageFields(func(msg UpdatePostCommand) map[string]any {
			return postFields(msg.Slug, msg.ID, msg.Source)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UpdatePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &UpdatePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdatePostCommand].
func (h *UpdatePostHandler) Execute(ctx context.Context, msg UpdatePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeletePostHandler removes posts.
type DeletePostHandler struct {
	inner *commands.Handler[DeletePostCommand]
}

// NewDeletePostHandler binds the handler to a Publisher.
func NewDeletePostHandler(publisher Publisher, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePostCommand]) *DeletePostHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg DeletePostCommand) error {
		result, err := publisher.Delete(ctx, msg.request())
		if err != nil {
			return tagPublishError(err)
		}
		logging.WithPostContext(baseLogger, result.Post.Slug, result.Post.ID, string(result.Mode)).
			Info("publish.command.delete.completed", "removed", len(result.Removed), "manifest_written", result.ManifestWritten)
		invokeCallback(msg.ResultCallback, ResultEnvelope{Publish: &result})
		return nil
	}
	handlerOpts := []commands.HandlerOption[DeletePostCommand]{
		commands.WithLogger[DeletePostCommand](baseLogger),
		commands.WithOperation[DeletePostCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeletePostCommand) map[string]any {
			return postFields(msg.Slug, msg.ID, "")
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeletePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &DeletePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeletePostCommand].
func (h *DeletePostHandler) Execute(ctx context.Context, msg DeletePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// GenerateManifestHandler rebuilds the manifest.
type GenerateManifestHandler struct {
	inner *commands.Handler[GenerateManifestCommand]
}

// NewGenerateManifestHandler binds the handler to a ManifestWriter.
func NewGenerateManifestHandler(manifests ManifestWriter, logger interfaces.Logger, opts ...commands.HandlerOption[GenerateManifestCommand]) *GenerateManifestHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg GenerateManifestCommand) error {
		manifest, err := manifests.Write(ctx)
		if err != nil {
			return commands.Failed(err, CodeManifestUnavailable)
		}
		baseLogger.Info("manifest.command.generate.completed", "posts", len(manifest.Posts))
		invokeCallback(msg.ResultCallback, ResultEnvelope{Manifest: &manifest})
		return nil
	}
	handlerOpts := []commands.HandlerOption[GenerateManifestCommand]{
		commands.WithLogger[GenerateManifestCommand](baseLogger),
		commands.WithOperation[GenerateManifestCommand](manifestOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[GenerateManifestCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &GenerateManifestHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[GenerateManifestCommand].
func (h *GenerateManifestHandler) Execute(ctx context.Context, msg GenerateManifestCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExportPostHandler converts published posts back to Markdown.
type ExportPostHandler struct {
	inner *commands.Handler[ExportPostCommand]
}

// NewExportPostHandler binds the handler to an Exporter.
func NewExportPostHandler(exporter Exporter, logger interfaces.Logger, opts ...commands.HandlerOption[ExportPostCommand]) *ExportPostHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg ExportPostCommand) error {
		result, err := exporter.Export(ctx, export.Request{Slug: msg.Slug, Output: msg.Output})
		if err != nil {
			return tagExportError(err)
		}
		logging.WithPostContext(baseLogger, result.Post.Slug, result.Post.ID, "export").
			Info("export.command.completed", "output", result.Output, "assets", len(result.Assets))
		invokeCallback(msg.ResultCallback, ResultEnvelope{Export: &result})
		return nil
	}
	handlerOpts := []commands.HandlerOption[ExportPostCommand]{
		commands.WithLogger[ExportPostCommand](baseLogger),
		commands.WithOperation[ExportPostCommand](exportOperation),
		commands.WithMessageFields(func(msg ExportPostCommand) map[string]any {
			fields := postFields(msg.Slug, "", "")
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExportPostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ExportPostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExportPostCommand].
func (h *ExportPostHandler) Execute(ctx context.Context, msg ExportPostCommand) error {
	return h.inner.Execute(ctx, msg)
}
