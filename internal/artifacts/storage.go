package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	opEnsureDir = "artifacts.ensure_dir"
	opWrite     = "artifacts.write"
	opCopy      = "artifacts.copy"
	opRemove    = "artifacts.remove"
)

// Category tags a write for logging.
type Category string

const (
	CategoryPage     Category = "page"
	CategoryAsset    Category = "asset"
	CategoryManifest Category = "manifest"
	CategorySource   Category = "source"
)

// WriteRequest describes one file written under the site root.
type WriteRequest struct {
	Path     string
	Content  []byte
	Category Category
}

// Writer abstracts the filesystem operations of the build-time pipelines.
// Paths are slash separated and relative to the writer's root unless they
// are absolute.
type Writer interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
	CopyFile(ctx context.Context, src, dst string) error
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	Exists(path string) bool
	Abs(path string) string
}

// OpError records the failed operation and path.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Disk writes to the local filesystem. File writes go through a temporary
// file and a rename so readers never observe partial content.
type Disk struct {
	root string
}

// NewDisk roots relative paths at root.
func NewDisk(root string) *Disk {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return &Disk{root: filepath.Clean(root)}
}

var _ Writer = (*Disk)(nil)

// Abs resolves path against the root.
func (d *Disk) Abs(path string) string {
	native := filepath.FromSlash(path)
	if filepath.IsAbs(native) {
		return filepath.Clean(native)
	}
	return filepath.Join(d.root, native)
}

// Exists reports whether path exists.
func (d *Disk) Exists(path string) bool {
	_, err := os.Stat(d.Abs(path))
	return err == nil
}

func (d *Disk) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Abs(path), 0o755); err != nil {
		return &OpError{Op: opEnsureDir, Path: path, Err: err}
	}
	return nil
}

func (d *Disk) WriteFile(ctx context.Context, req WriteRequest) error {
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("artifacts: write requires path")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	target := d.Abs(req.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &OpError{Op: opWrite, Path: req.Path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return &OpError{Op: opWrite, Path: req.Path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(req.Content); err != nil {
		tmp.Close()
		return &OpError{Op: opWrite, Path: req.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &OpError{Op: opWrite, Path: req.Path, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return &OpError{Op: opWrite, Path: req.Path, Err: err}
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return &OpError{Op: opWrite, Path: req.Path, Err: err}
	}
	return nil
}

func (d *Disk) CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(d.Abs(src))
	if err != nil {
		return &OpError{Op: opCopy, Path: src, Err: err}
	}
	defer in.Close()

	target := d.Abs(dst)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &OpError{Op: opCopy, Path: dst, Err: err}
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &OpError{Op: opCopy, Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &OpError{Op: opCopy, Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &OpError{Op: opCopy, Path: dst, Err: err}
	}
	return nil
}

// Remove deletes a file. A missing file is not an error.
func (d *Disk) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(d.Abs(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &OpError{Op: opRemove, Path: path, Err: err}
	}
	return nil
}

// RemoveAll deletes path and everything below it.
func (d *Disk) RemoveAll(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return errors.New("artifacts: refusing to remove the root")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(d.Abs(path)); err != nil {
		return &OpError{Op: opRemove, Path: path, Err: err}
	}
	return nil
}
