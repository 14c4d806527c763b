package publishcmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/publish"
)

const (
	createPostMessageType       = "blog.publish.create"
	updatePostMessageType       = "blog.publish.update"
	deletePostMessageType       = "blog.publish.delete"
	generateManifestMessageType = "blog.manifest.generate"
	exportPostMessageType       = "blog.export.post"
)

// ResultCallback receives the outcome of a command. It is optional and runs
// synchronously inside the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries whichever result the command produced.
type ResultEnvelope struct {
	Publish  *publish.Result
	Manifest *posts.Manifest
	Export   *export.Result
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb != nil {
		cb(envelope)
	}
}

var idPattern = regexp.MustCompile(`^[0-9]+$`)

var notBlank = validation.By(func(value any) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.NewError("blog.publish.blank", "must not be blank")
	}
	return nil
})

// CreatePostCommand publishes a new post from a Markdown source.
type CreatePostCommand struct {
	Source         string         `json:"source"`
	Slug           string         `json:"slug,omitempty"`
	ID             string         `json:"id,omitempty"`
	Title          string         `json:"title,omitempty"`
	SkipManifest   bool           `json:"skip_manifest,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (CreatePostCommand) Type() string { return createPostMessageType }

func (cmd CreatePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.Required, notBlank),
		validation.Field(&cmd.ID, validation.Match(idPattern).Error("id must be numeric")),
	)
}

func (cmd CreatePostCommand) request() publish.Request {
	return publish.Request{
		Mode:         publish.ModeCreate,
		Source:       cmd.Source,
		Slug:         cmd.Slug,
		ID:           cmd.ID,
		Title:        cmd.Title,
		SkipManifest: cmd.SkipManifest,
	}
}

// UpdatePostCommand republishes an existing post from its Markdown source.
type UpdatePostCommand struct {
	Source         string         `json:"source"`
	Slug           string         `json:"slug,omitempty"`
	ID             string         `json:"id,omitempty"`
	Title          string         `json:"title,omitempty"`
	SkipManifest   bool           `json:"skip_manifest,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (UpdatePostCommand) Type() string { return updatePostMessageType }

func (cmd UpdatePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.Required, notBlank),
		validation.Field(&cmd.ID, validation.Match(idPattern).Error("id must be numeric")),
	)
}

func (cmd UpdatePostCommand) request() publish.Request {
	return publish.Request{
		Mode:         publish.ModeUpdate,
		Source:       cmd.Source,
		Slug:         cmd.Slug,
		ID:           cmd.ID,
		Title:        cmd.Title,
		SkipManifest: cmd.SkipManifest,
	}
}

// DeletePostCommand removes a published post and its assets. Either Slug or
// ID must be set.
type DeletePostCommand struct {
	Slug           string         `json:"slug,omitempty"`
	ID             string         `json:"id,omitempty"`
	SkipManifest   bool           `json:"skip_manifest,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (DeletePostCommand) Type() string { return deletePostMessageType }

func (cmd DeletePostCommand) Validate() error {
	noID := strings.TrimSpace(cmd.ID) == ""
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.When(noID, validation.Required.Error("slug or id is required"))),
	)
}

func (cmd DeletePostCommand) request() publish.Request {
	return publish.Request{
		Mode:         publish.ModeDelete,
		Slug:         cmd.Slug,
		ID:           cmd.ID,
		SkipManifest: cmd.SkipManifest,
	}
}

// GenerateManifestCommand rebuilds the manifest from the published pages.
type GenerateManifestCommand struct {
	ResultCallback ResultCallback `json:"-"`
}

func (GenerateManifestCommand) Type() string { return generateManifestMessageType }

func (GenerateManifestCommand) Validate() error { return nil }

// ExportPostCommand converts a published post back to Markdown.
type ExportPostCommand struct {
	Slug           string         `json:"slug"`
	Output         string         `json:"output,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (ExportPostCommand) Type() string { return exportPostMessageType }

func (cmd ExportPostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.Required, notBlank),
		validation.Field(&cmd.Output, validation.By(func(value any) error {
			if s, _ := value.(string); s != "" && !strings.HasSuffix(s, ".md") {
				return validation.NewError("blog.export.output_extension", "output must be a .md file")
			}
			return nil
		})),
	)
}
