package publish

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/goliatone/go-blog/internal/markdown"
)

// copyAssets copies every local image referenced by body into
// <assets>/<id>/ and maps each reference, raw and canonical, to its path
// relative to the posts directory. The post's assets directory must not
// exist yet.
func (s *Service) copyAssets(ctx context.Context, body []byte, sourceDir, id string) (markdown.AssetMap, []string, error) {
	var local []string
	for _, src := range markdown.CollectImageSources(body) {
		if markdown.IsLocalAsset(src) {
			local = append(local, src)
		}
	}
	assets := markdown.AssetMap{}
	if len(local) == 0 {
		return assets, nil, nil
	}

	if err := s.writer.EnsureDir(ctx, s.cfg.AssetsDir); err != nil {
		return nil, nil, err
	}
	postDir := path.Join(s.cfg.AssetsDir, id)
	if s.writer.Exists(postDir) {
		return nil, nil, failf(ErrAssetConflict,
			"Assets directory already exists: %s", s.writer.Abs(postDir))
	}
	if err := s.writer.EnsureDir(ctx, postDir); err != nil {
		return nil, nil, err
	}

	postsAbs := s.writer.Abs(s.cfg.PostsDir)
	copied := map[string]string{}
	used := map[string]struct{}{}
	var outputs []string

	for _, raw := range local {
		canonical := markdown.CanonicalAssetPath(raw, false)
		source := filepath.Join(sourceDir, filepath.FromSlash(canonical))
		if info, err := os.Stat(source); err != nil || !info.Mode().IsRegular() {
			return nil, nil, failf(ErrAssetMissing,
				"Image not found for markdown reference %q (resolved to %s)", raw, source)
		}

		relative, ok := copied[source]
		if !ok {
			name := markdown.UniqueFileName(markdown.SanitizeAssetFileName(path.Base(canonical)), used)
			destination := path.Join(postDir, name)
			if err := s.writer.CopyFile(ctx, source, destination); err != nil {
				return nil, nil, err
			}
			used[name] = struct{}{}
			outputs = append(outputs, destination)

			rel, err := filepath.Rel(postsAbs, s.writer.Abs(destination))
			if err != nil {
				return nil, nil, err
			}
			relative = filepath.ToSlash(rel)
			copied[source] = relative
		}

		assets[raw] = relative
		if key := markdown.CanonicalAssetPath(raw, true); key != "" && key != raw {
			assets[key] = relative
		}
	}

	s.logger.Info("publish.assets.copied", "count", len(copied), "dir", postDir)
	return assets, outputs, nil
}
