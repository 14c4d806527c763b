package publish

import (
	"errors"
	"fmt"
)

var (
	ErrPostNotFound        = errors.New("publish: post not found")
	ErrIDConflict          = errors.New("publish: post id conflict")
	ErrSlugConflict        = errors.New("publish: post slug conflict")
	ErrOutputExists        = errors.New("publish: post output exists")
	ErrOutputMissing       = errors.New("publish: post output missing")
	ErrSourceMissing       = errors.New("publish: markdown source missing")
	ErrSlugUnresolved      = errors.New("publish: slug unresolved")
	ErrIDUnresolved        = errors.New("publish: id unresolved")
	ErrFrontMatterInvalid  = errors.New("publish: front matter invalid")
	ErrAssetMissing        = errors.New("publish: image missing")
	ErrAssetConflict       = errors.New("publish: assets directory exists")
	ErrInvalidMode         = errors.New("publish: unsupported mode")
	ErrManifestUnavailable = errors.New("publish: manifest unavailable")
)

// Error is a publishing failure that an author can act on. Message is the
// single line printed by the CLI. Kind is one of the package sentinels and
// Err the underlying cause, if any; both match with errors.Is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func failf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func failWrap(kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Err: cause, Message: fmt.Sprintf(format, args...)}
}
