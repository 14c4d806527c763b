package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskWriteCopyRemove(t *testing.T) {
	root := t.TempDir()
	disk := NewDisk(root)
	ctx := context.Background()

	if err := disk.WriteFile(ctx, WriteRequest{Path: "posts/a.html", Content: []byte("hello"), Category: CategoryPage}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "posts", "a.html"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("unexpected content %q %v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Join(root, "posts"))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}

	if err := disk.CopyFile(ctx, "posts/a.html", "assets/1/a.html"); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if !disk.Exists("assets/1/a.html") {
		t.Fatalf("expected copied file")
	}

	if err := disk.RemoveAll(ctx, "assets/1"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if disk.Exists("assets/1") {
		t.Fatalf("expected directory removed")
	}
	if err := disk.Remove(ctx, "posts/missing.html"); err != nil {
		t.Fatalf("Remove of a missing file should be a no-op, got %v", err)
	}
	if err := disk.RemoveAll(ctx, "."); err == nil {
		t.Fatalf("expected root removal to be refused")
	}
}

func TestDiskCopyMissingSource(t *testing.T) {
	disk := NewDisk(t.TempDir())
	err := disk.CopyFile(context.Background(), "nope.png", "out.png")
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != opCopy {
		t.Fatalf("expected copy OpError, got %v", err)
	}
}

func TestDiskAbs(t *testing.T) {
	disk := NewDisk("/site")
	if got := disk.Abs("posts/a.html"); got != filepath.Join("/site", "posts", "a.html") {
		t.Fatalf("Abs relative = %q", got)
	}
	if got := disk.Abs("/tmp/x.md"); got != filepath.Clean("/tmp/x.md") {
		t.Fatalf("Abs absolute = %q", got)
	}
}
