package interfaces

import (
	"context"
	"errors"
)

// ErrSourceNotFound is returned by a Source when the requested resource does
// not exist.
var ErrSourceNotFound = errors.New("source: resource not found")

// Source fetches raw resources (component templates, partials, the manifest)
// by a slash separated name relative to the site root.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context, name string) ([]byte, error)

// Fetch calls f(ctx, name).
func (f SourceFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}
