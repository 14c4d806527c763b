package templating

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrTemplateNotFound reports a component name with no template behind it.
var ErrTemplateNotFound = errors.New("templating: component template not found")

// ErrInvalidComponentName reports a name outside [a-zA-Z0-9_-].
var ErrInvalidComponentName = errors.New("templating: invalid component name")

var componentName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidComponentName reports whether name can address a component template.
func ValidComponentName(name string) bool {
	return componentName.MatchString(name)
}

// Cache loads component templates from a Source on first use and keeps them
// for the lifetime of the cache. Concurrent misses for the same name share a
// single fetch. Failed fetches are not cached.
type Cache struct {
	source interfaces.Source
	dir    string

	mu      sync.RWMutex
	entries map[string]string
	group   singleflight.Group
	fetches int
}

// NewCache reads "<dir>/<name>.html" from src.
func NewCache(src interfaces.Source, dir string) *Cache {
	return &Cache{
		source:  src,
		dir:     dir,
		entries: map[string]string{},
	}
}

// Get returns the template for name. A fetch shared between callers is not
// cancelled by any one of them; each caller stops waiting when its own
// context ends.
func (c *Cache) Get(ctx context.Context, name string) (string, error) {
	if !ValidComponentName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidComponentName, name)
	}

	c.mu.RLock()
	markup, ok := c.entries[name]
	c.mu.RUnlock()
	if ok {
		return markup, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	flight := c.group.DoChan(name, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.entries[name]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		c.mu.Lock()
		c.fetches++
		c.mu.Unlock()

		data, err := c.source.Fetch(context.WithoutCancel(ctx), c.path(name))
		if err != nil {
			if errors.Is(err, interfaces.ErrSourceNotFound) {
				return "", fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
			}
			return "", fmt.Errorf("templating: load component %s: %w", name, err)
		}

		c.mu.Lock()
		c.entries[name] = string(data)
		c.mu.Unlock()
		return string(data), nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Reset drops every cached template.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = map[string]string{}
	c.fetches = 0
	c.mu.Unlock()
}

// Fetches returns how many source fetches the cache has issued since the last
// Reset.
func (c *Cache) Fetches() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches
}

func (c *Cache) path(name string) string {
	if c.dir == "" {
		return name + ".html"
	}
	return c.dir + "/" + name + ".html"
}
