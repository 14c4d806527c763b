// Package source fetches site resources (component templates, partials and
// the manifest) from a local tree or over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

const defaultUserAgent = "go-blog/1.0"

// Clean turns a root-relative resource reference into a slash separated path
// inside the site tree. Query strings, fragments and leading "./" or "../"
// segments are dropped.
func Clean(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "\\", "/")
	cleaned := path.Clean("/" + name)
	return strings.TrimPrefix(cleaned, "/")
}

// FS reads resources from an fs.FS rooted at the site root.
type FS struct {
	fsys fs.FS
}

var _ interfaces.Source = (*FS)(nil)

// NewFS wraps fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Fetch reads name from the tree. Missing files report
// interfaces.ErrSourceNotFound.
func (s *FS) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned := Clean(name)
	if cleaned == "" {
		return nil, fmt.Errorf("source: empty resource name")
	}
	data, err := fs.ReadFile(s.fsys, cleaned)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrSourceNotFound, cleaned)
		}
		return nil, fmt.Errorf("source: read %s: %w", cleaned, err)
	}
	return data, nil
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) HTTPOption {
	return func(s *HTTP) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTP) {
		s.timeout = timeout
	}
}

// WithNoStore marks resources whose requests bypass caches: a no-store
// header and a timestamp query parameter are added.
func WithNoStore(names ...string) HTTPOption {
	return func(s *HTTP) {
		for _, name := range names {
			s.noStore[Clean(name)] = struct{}{}
		}
	}
}

// WithClock overrides the clock used for cache busting.
func WithClock(clock func() time.Time) HTTPOption {
	return func(s *HTTP) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// HTTP fetches resources relative to a base URL.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	noStore map[string]struct{}
	clock   func() time.Time
}

var _ interfaces.Source = (*HTTP)(nil)

// NewHTTP builds a source rooted at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("source: base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	s := &HTTP{
		base:    base,
		client:  http.DefaultClient,
		noStore: map[string]struct{}{},
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fetch performs a GET for name. A 404 reports interfaces.ErrSourceNotFound;
// other non-2xx statuses are errors.
func (s *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	cleaned := Clean(name)
	target := s.base.ResolveReference(&url.URL{Path: cleaned})

	_, noStore := s.noStore[cleaned]
	if noStore {
		query := target.Query()
		query.Set("_", strconv.FormatInt(s.clock().UnixMilli(), 10))
		target.RawQuery = query.Encode()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("source: creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	if noStore {
		req.Header.Set("Cache-Control", "no-store")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrSourceNotFound, cleaned)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source: unexpected status %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: reading %s: %w", target, err)
	}
	return body, nil
}
