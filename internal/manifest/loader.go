// Package manifest loads the post index once per session and shares the
// result between concurrent callers.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const flightKey = "manifest"

// Loader fetches and caches the manifest. Successful loads are kept until
// Reset; failed loads are not cached.
type Loader struct {
	source interfaces.Source
	path   string
	logger interfaces.Logger

	mu     sync.RWMutex
	posts  []posts.Post
	loaded bool
	group  singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Loader) {
		l.logger = logging.Ensure(logger)
	}
}

// NewLoader reads the manifest at path from src.
func NewLoader(src interfaces.Source, path string, opts ...Option) *Loader {
	l := &Loader{source: src, path: path, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the posts sorted newest first. Callers receive a copy of the
// cached slice.
func (l *Loader) Load(ctx context.Context) ([]posts.Post, error) {
	l.mu.RLock()
	if l.loaded {
		out := slices.Clone(l.posts)
		l.mu.RUnlock()
		return out, nil
	}
	l.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	flight := l.group.DoChan(flightKey, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			l.logger.Error("manifest.load.failed", "path", l.path, "error", res.Err)
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug("manifest.load.shared", "path", l.path)
		}
		return slices.Clone(res.Val.([]posts.Post)), nil
	}
}

// Reset drops the cached manifest so the next Load fetches again.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.posts = nil
	l.loaded = false
	l.mu.Unlock()
	l.group.Forget(flightKey)
}

func (l *Loader) fetch(ctx context.Context) ([]posts.Post, error) {
	data, err := l.source.Fetch(ctx, l.path)
	if err != nil {
		return nil, fmt.Errorf("manifest: fetch %s: %w", l.path, err)
	}
	list, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.posts = list
	l.loaded = true
	l.mu.Unlock()

	l.logger.Info("manifest.loaded", "path", l.path, "posts", len(list))
	return list, nil
}

// Decode parses manifest JSON, fills in missing display dates and sorts the
// posts newest first. A missing posts field yields an empty list.
func Decode(data []byte) ([]posts.Post, error) {
	var doc posts.Manifest
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	list := doc.Posts
	if list == nil {
		list = []posts.Post{}
	}
	for i := range list {
		if list[i].Day == "" {
			list[i].Day = posts.DisplayDay(list[i].CreatedAt)
		}
		if list[i].Month == "" {
			list[i].Month = posts.DisplayMonth(list[i].CreatedAt)
		}
	}
	posts.SortByCreatedAt(list)
	return list, nil
}
