package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	goslug "github.com/goliatone/go-slug"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-blog/internal/artifacts"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Mode selects what a publish request does.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
	ModeDelete Mode = "delete"
)

// ParseMode accepts create, update or delete in any case. Blank means create.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ModeCreate):
		return ModeCreate, nil
	case string(ModeUpdate):
		return ModeUpdate, nil
	case string(ModeDelete):
		return ModeDelete, nil
	}
	return "", failf(ErrInvalidMode,
		`Unsupported mode: %s. Expected "create", "update", or "delete".`, value)
}

// Config locates the site tree and tunes the pipeline. Directories are
// relative to the writer's root.
type Config struct {
	PostsDir           string
	AssetsDir          string
	ManifestFile       string
	BaselineID         int64
	Language           string
	TitleSuffix        string
	RegenerateManifest bool
	SanitizeSummary    bool
	Markdown           markdown.Options
}

// Request is one publishing operation. Source is the Markdown file; it is
// ignored by Delete. Slug, ID and Title override the front matter.
type Request struct {
	Mode         Mode
	Source       string
	Slug         string
	ID           string
	Title        string
	SkipManifest bool
}

// Result describes what a request changed.
type Result struct {
	Mode            Mode
	Post            posts.Post
	Output          string
	Removed         []string
	Assets          []string
	ManifestWritten bool
}

// ManifestWriter regenerates the manifest after a change.
type ManifestWriter interface {
	Write(ctx context.Context) (posts.Manifest, error)
}

// Service turns Markdown sources into published pages.
type Service struct {
	cfg       Config
	writer    artifacts.Writer
	renderer  *markdown.Renderer
	manifests ManifestWriter
	sanitizer *bluemonday.Policy
	logger    interfaces.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithManifestWriter sets the manifest regenerator run after each change.
func WithManifestWriter(m ManifestWriter) Option {
	return func(s *Service) {
		s.manifests = m
	}
}

// NewService builds a Service writing through writer.
func NewService(writer artifacts.Writer, cfg Config, opts ...Option) *Service {
	if strings.TrimSpace(cfg.PostsDir) == "" {
		cfg.PostsDir = "posts"
	}
	if strings.TrimSpace(cfg.AssetsDir) == "" {
		cfg.AssetsDir = "assets"
	}
	if strings.TrimSpace(cfg.ManifestFile) == "" {
		cfg.ManifestFile = path.Join(cfg.PostsDir, "manifest.json")
	}
	if cfg.BaselineID <= 0 {
		cfg.BaselineID = 11384
	}
	s := &Service{
		cfg:       cfg,
		writer:    writer,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.renderer = markdown.NewRenderer(cfg.Markdown, s.logger)
	return s
}

// Publish dispatches on req.Mode.
func (s *Service) Publish(ctx context.Context, req Request) (Result, error) {
	switch req.Mode {
	case ModeCreate, "":
		return s.Create(ctx, req)
	case ModeUpdate:
		return s.Update(ctx, req)
	case ModeDelete:
		return s.Delete(ctx, req)
	}
	_, err := ParseMode(string(req.Mode))
	return Result{}, err
}

// Create publishes a new post. It fails when the id or slug is already in
// the manifest or the output page exists.
func (s *Service) Create(ctx context.Context, req Request) (Result, error) {
	return s.publish(ctx, ModeCreate, req)
}

// Update republishes an existing post, found by id or by any slug the
// source could be filed under. A slug change removes the old page and an id
// change moves the post's assets.
func (s *Service) Update(ctx context.Context, req Request) (Result, error) {
	return s.publish(ctx, ModeUpdate, req)
}

// draft is a parsed source ready to be rendered.
type draft struct {
	source     string
	body       []byte
	front      markdown.FrontMatter
	title      string
	createdAt  string
	day        string
	month      string
	categories []string
	tags       []string
	summary    []posts.SummaryBlock
}

func (s *Service) publish(ctx context.Context, mode Mode, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	d, err := s.readSource(req)
	if err != nil {
		return Result{}, err
	}
	entries, err := s.loadEntries()
	if err != nil {
		return Result{}, err
	}

	explicitSlug := firstNonEmpty(req.Slug, d.front.Slug)
	slug, err := ResolveSlug(explicitSlug, d.title, d.source, firstNonEmpty(req.ID, d.front.ID))
	if err != nil {
		return Result{}, err
	}
	if explicitSlug != "" && !goslug.IsValid(slug) {
		suggestion, _ := goslug.Normalize(slug)
		s.logger.Warn("publish.slug.noncanonical", "slug", slug, "suggestion", suggestion)
	}
	candidates := slugCandidates(req.Slug, d.front.Slug, slug, baseName(d.source))
	requestedID := strings.TrimSpace(firstNonEmpty(req.ID, d.front.ID))

	var (
		existing entryRef
		id       string
	)
	if mode == ModeUpdate {
		var ok bool
		existing, ok = findExisting(entries, requestedID, candidates)
		if !ok {
			return Result{}, failf(ErrPostNotFound,
				`No existing post found to update. Provide the correct "id" or "slug".`)
		}
		id = strings.TrimSpace(firstNonEmpty(requestedID, existing.ID))
		if id == "" {
			return Result{}, failf(ErrIDUnresolved,
				`Unable to determine post "id" for update. Add "id" to the front matter or pass --id.`)
		}
		for _, entry := range entries {
			if entry.ID == id && entry.Slug != existing.Slug {
				return Result{}, failf(ErrIDConflict,
					`Cannot update: desired id "%s" is already used by post "%s".`, id, entry.Slug)
			}
		}
	} else {
		if err := ensureCreateTarget(entries, requestedID, slug); err != nil {
			return Result{}, err
		}
		id = ResolveID(requestedID, entryIDs(entries), s.publishedNames(), s.cfg.BaselineID)
	}

	logger := logging.WithPostContext(s.logger, slug, id, string(mode))
	output := posts.LinkFor(s.cfg.PostsDir, slug)
	result := Result{Mode: mode, Output: output}

	var previous string
	slugChanged := false
	if mode == ModeUpdate {
		for _, entry := range entries {
			if entry.Slug == slug && entry.Slug != existing.Slug {
				return Result{}, failf(ErrSlugConflict,
					`Cannot update: desired slug "%s" is already used by another post.`, slug)
			}
		}
		previous = posts.LinkFor(s.cfg.PostsDir, existing.Slug)
		slugChanged = existing.Slug != slug
		if !s.writer.Exists(previous) {
			message := `Cannot update: expected post file missing at %s`
			if slugChanged {
				message = `Cannot update: original post file not found at %s`
			}
			return Result{}, failf(ErrOutputMissing, message, previous)
		}

		if existing.ID != "" && existing.ID != id {
			if err := s.removeAssetsDir(ctx, existing.ID, logger); err != nil {
				return Result{}, err
			}
		}
		if err := s.removeAssetsDir(ctx, id, logger); err != nil {
			return Result{}, err
		}
	} else if s.writer.Exists(output) {
		return Result{}, failf(ErrOutputExists, "Post output already exists at %s", output)
	}

	assets, copied, err := s.copyAssets(ctx, d.body, filepath.Dir(d.source), id)
	if err != nil {
		return Result{}, err
	}
	result.Assets = copied

	metadata := posts.Post{
		ID:         id,
		Slug:       slug,
		Title:      d.title,
		CreatedAt:  d.createdAt,
		Day:        d.day,
		Month:      d.month,
		Categories: d.categories,
		Tags:       d.tags,
		Summary:    d.summary,
		Link:       output,
	}

	content, err := s.renderContent(d.body, assets)
	if err != nil {
		return Result{}, err
	}
	page, err := BuildPage(Page{
		Language:    s.cfg.Language,
		Title:       d.title,
		TitleSuffix: s.cfg.TitleSuffix,
		Metadata:    metadata,
		MetaHTML:    MetaHTML(d.createdAt, d.categories, d.tags),
		Content:     content,
	})
	if err != nil {
		return Result{}, err
	}
	if err := s.writer.WriteFile(ctx, artifacts.WriteRequest{
		Path:     output,
		Content:  []byte(page),
		Category: artifacts.CategoryPage,
	}); err != nil {
		return Result{}, err
	}
	result.Post = metadata

	if mode == ModeCreate {
		logger.Info("publish.created", "output", output)
	} else {
		logger.Info("publish.updated", "output", output)
		if slugChanged {
			if err := s.writer.Remove(ctx, previous); err != nil {
				return result, err
			}
			result.Removed = append(result.Removed, previous)
			logger.Info("publish.removed", "output", previous)
		}
	}

	written, err := s.regenerate(ctx, req)
	result.ManifestWritten = written
	return result, err
}

// Delete removes a published page and its assets. The post is found by
// id or slug in the manifest, or by the explicit slug alone.
func (s *Service) Delete(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	entries, err := s.loadEntries()
	if err != nil {
		return Result{}, err
	}

	entry, found := findExisting(entries, req.ID, slugCandidates(req.Slug))
	slug := strings.TrimSpace(req.Slug)
	if found {
		slug = entry.Slug
	}
	if slug == "" {
		return Result{}, failf(ErrPostNotFound,
			"Delete mode requires a known post. Provide --slug or --id referring to an existing post.")
	}

	output := posts.LinkFor(s.cfg.PostsDir, slug)
	if !s.writer.Exists(output) {
		return Result{}, failf(ErrOutputMissing, "Post file not found at %s", output)
	}

	assetID := strings.TrimSpace(req.ID)
	if found {
		assetID = entry.ID
	}
	logger := logging.WithPostContext(s.logger, slug, assetID, string(ModeDelete))

	if err := s.writer.Remove(ctx, output); err != nil {
		return Result{}, err
	}
	logger.Info("publish.deleted", "output", output)
	result := Result{Mode: ModeDelete, Output: output, Removed: []string{output}}
	result.Post = posts.Post{ID: entry.ID, Slug: slug}

	if assetID != "" {
		dir := path.Join(s.cfg.AssetsDir, assetID)
		existed := s.writer.Exists(dir)
		if err := s.removeAssetsDir(ctx, assetID, logger); err != nil {
			return result, err
		}
		if existed {
			result.Removed = append(result.Removed, dir)
		}
	}

	written, err := s.regenerate(ctx, req)
	result.ManifestWritten = written
	return result, err
}

func (s *Service) readSource(req Request) (draft, error) {
	source := req.Source
	if !filepath.IsAbs(source) {
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
	}
	info, err := os.Stat(source)
	if strings.TrimSpace(req.Source) == "" || err != nil || !info.Mode().IsRegular() {
		return draft{}, failf(ErrSourceMissing, "Markdown source not found: %s", source)
	}
	raw, err := os.ReadFile(source)
	if err != nil {
		return draft{}, failf(ErrSourceMissing, "Markdown source not found: %s", source)
	}

	front, body, err := markdown.ParseFrontMatter(raw)
	if err != nil {
		return draft{}, failWrap(ErrFrontMatterInvalid, err, "Invalid front matter: %v", err)
	}
	if front.Draft {
		return draft{}, failf(markdown.ErrDraft,
			`Front matter sets "draft: true". Refusing to publish.`)
	}

	title := strings.TrimSpace(firstNonEmpty(req.Title, front.Title))
	if title == "" {
		return draft{}, failWrap(ErrFrontMatterInvalid, markdown.ErrTitleRequired,
			`Front matter must include a non-empty "title".`)
	}
	createdAt, created, err := front.Date()
	switch {
	case errors.Is(err, markdown.ErrDateRequired):
		return draft{}, failWrap(ErrFrontMatterInvalid, err, `Front matter must include "createdAt" (ISO date).`)
	case err != nil:
		return draft{}, failWrap(ErrFrontMatterInvalid, err, `Invalid "createdAt" value: %s`, front.CreatedAt)
	}

	summary := front.Summary
	if s.cfg.SanitizeSummary {
		summary = s.sanitizeSummary(summary)
	}

	return draft{
		source:     source,
		body:       body,
		front:      front,
		title:      title,
		createdAt:  createdAt,
		day:        strconv.Itoa(created.Day()),
		month:      created.Format("Jan"),
		categories: front.Categories,
		tags:       front.Tags,
		summary:    summary,
	}, nil
}

func (s *Service) sanitizeSummary(blocks []posts.SummaryBlock) []posts.SummaryBlock {
	out := make([]posts.SummaryBlock, 0, len(blocks))
	for _, block := range blocks {
		markup := strings.TrimSpace(s.sanitizer.Sanitize(block.HTML))
		if markup == "" {
			continue
		}
		out = append(out, posts.SummaryBlock{Type: block.Type, HTML: markup})
	}
	return out
}

func (s *Service) renderContent(body []byte, assets markdown.AssetMap) (string, error) {
	content, err := s.renderer.Render(body, assets)
	if err != nil {
		return "", err
	}
	if content, err = markdown.RewriteInlineImages(content, assets); err != nil {
		return "", err
	}
	return markdown.WrapSections(content)
}

// loadEntries reads the id and slug of every manifest entry. A missing
// manifest is an empty one.
func (s *Service) loadEntries() ([]entryRef, error) {
	data, err := os.ReadFile(s.writer.Abs(s.cfg.ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, failWrap(ErrManifestUnavailable, err, "Unable to read %s: %v", s.cfg.ManifestFile, err)
	}

	var doc struct {
		Posts []struct {
			ID   any    `json:"id"`
			Slug string `json:"slug"`
		} `json:"posts"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, failWrap(ErrManifestUnavailable, err, "Unable to parse %s: %v", s.cfg.ManifestFile, err)
	}
	out := make([]entryRef, 0, len(doc.Posts))
	for _, p := range doc.Posts {
		out = append(out, entryRef{ID: idString(p.ID), Slug: p.Slug})
	}
	return out, nil
}

func (s *Service) publishedNames() []string {
	entries, err := os.ReadDir(s.writer.Abs(s.cfg.PostsDir))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

func (s *Service) removeAssetsDir(ctx context.Context, id string, logger interfaces.Logger) error {
	dir := path.Join(s.cfg.AssetsDir, id)
	info, err := os.Stat(s.writer.Abs(dir))
	if err != nil || !info.IsDir() {
		return nil
	}
	if err := s.writer.RemoveAll(ctx, dir); err != nil {
		return err
	}
	logger.Info("publish.assets.removed", "dir", dir)
	return nil
}

func (s *Service) regenerate(ctx context.Context, req Request) (bool, error) {
	if req.SkipManifest || !s.cfg.RegenerateManifest || s.manifests == nil {
		return false, nil
	}
	if _, err := s.manifests.Write(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func ensureCreateTarget(entries []entryRef, id, slug string) error {
	if id != "" {
		for _, entry := range entries {
			if entry.ID == id {
				return failf(ErrIDConflict,
					`Post id "%s" already exists (slug: %s). Use --mode update to modify it.`, id, entry.Slug)
			}
		}
	}
	if slug = strings.TrimSpace(slug); slug != "" {
		for _, entry := range entries {
			if entry.Slug == slug {
				return failf(ErrSlugConflict,
					`Post slug "%s" already exists. Use --mode update to modify it.`, slug)
			}
		}
	}
	return nil
}

func entryIDs(entries []entryRef) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids
}

func idString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
