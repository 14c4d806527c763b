package manifestgen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-blog/internal/posts"
)

// Watch rewrites the manifest whenever a page in the posts directory is
// created, changed, renamed or removed. Bursts of events are debounced. Each
// rewrite is reported to notify when it is non-nil. Watch returns when ctx is
// done.
func (g *Generator) Watch(ctx context.Context, notify func(posts.Manifest, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("manifestgen: watcher: %w", err)
	}
	defer watcher.Close()

	dir := g.writer.Abs(g.cfg.PostsDir)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("manifestgen: watch %s: %w", dir, err)
	}
	g.logger.Info("manifestgen.watch.started", "dir", dir)

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			g.logger.Debug("manifestgen.watch.event", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(g.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			manifest, err := g.Write(ctx)
			if err != nil {
				g.logger.Error("manifestgen.watch.failed", "error", err)
			}
			if notify != nil {
				notify(manifest, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("manifestgen.watch.error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".html" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
