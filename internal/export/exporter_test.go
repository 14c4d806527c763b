package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/artifacts"
	"github.com/goliatone/go-blog/internal/manifestgen"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/publish"
)

const source = `---
title: Export Me
createdAt: 2024-03-05
categories: [数学研究]
tags: [fft]
---
Lead **bold** text.

## Part One

![fig](img/a.png)

## Part Two

More.
`

func publishFixture(t *testing.T) (string, *publish.Service, *Exporter) {
	t.Helper()
	root := t.TempDir()
	sources := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sources, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sources, "img", "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(sources, "export.md")
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	disk := artifacts.NewDisk(root)
	gen := manifestgen.NewGenerator(os.DirFS(root), disk, manifestgen.Config{})
	service := publish.NewService(disk, publish.Config{RegenerateManifest: true}, publish.WithManifestWriter(gen))
	if _, err := service.Create(context.Background(), publish.Request{Source: src}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return root, service, NewExporter(os.DirFS(root), disk, Config{})
}

func TestExportRecoversSource(t *testing.T) {
	root, _, exporter := publishFixture(t)

	result, err := exporter.Export(context.Background(), Request{Slug: "export-me"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.Output != "drafts/export-me.md" || len(result.Assets) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	written, err := os.ReadFile(filepath.Join(root, "drafts", "export-me.md"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(written) != result.Markdown {
		t.Fatalf("written file differs from result")
	}

	fm, body, err := markdown.ParseFrontMatter(written)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Export Me" || fm.Slug != "export-me" || fm.ID != "11385" || fm.CreatedAt != "2024-03-05" {
		t.Fatalf("unexpected front matter %+v", fm)
	}
	if strings.Join(fm.Categories, ",") != "数学研究" || strings.Join(fm.Tags, ",") != "fft" {
		t.Fatalf("unexpected taxonomy %+v", fm)
	}

	text := string(body)
	for _, want := range []string{"**bold**", "## Part One", "## Part Two", "![fig](export-me/a.png)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("body is missing %s\n%s", want, text)
		}
	}
	for _, unwanted := range []string{"<section", "section-anchor", "data-heading-id"} {
		if strings.Contains(text, unwanted) {
			t.Fatalf("body still contains %s\n%s", unwanted, text)
		}
	}

	image, err := os.ReadFile(filepath.Join(root, "drafts", "export-me", "a.png"))
	if err != nil || string(image) != "png" {
		t.Fatalf("expected copied image, got %q %v", image, err)
	}
}

func TestExportedSourceRepublishes(t *testing.T) {
	root, service, exporter := publishFixture(t)
	if _, err := exporter.Export(context.Background(), Request{Slug: "export-me"}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	result, err := service.Update(context.Background(), publish.Request{
		Source: filepath.Join(root, "drafts", "export-me.md"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if result.Post.ID != "11385" || result.Output != "posts/export-me.html" {
		t.Fatalf("unexpected result %+v", result)
	}
	page, err := os.ReadFile(filepath.Join(root, "posts", "export-me.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), `src="../assets/11385/a.png"`) {
		t.Fatalf("republished page lost its image\n%s", page)
	}
}

func TestExportErrors(t *testing.T) {
	root, _, exporter := publishFixture(t)

	if _, err := exporter.Export(context.Background(), Request{Slug: " "}); !errors.Is(err, ErrSlugRequired) {
		t.Fatalf("expected ErrSlugRequired, got %v", err)
	}
	if _, err := exporter.Export(context.Background(), Request{Slug: "missing"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	legacy := "<html><body><div class=\"post-content\"><p>x</p></div></body></html>"
	if err := os.WriteFile(filepath.Join(root, "posts", "legacy.html"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := exporter.Export(context.Background(), Request{Slug: "legacy"}); !errors.Is(err, manifestgen.ErrMetadataMissing) {
		t.Fatalf("expected ErrMetadataMissing, got %v", err)
	}
}
