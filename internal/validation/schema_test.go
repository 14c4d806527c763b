package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePostMetadataAcceptsPublishedShape(t *testing.T) {
	raw := []byte(`{
		"id": "11385",
		"slug": "hello",
		"title": "Hello",
		"createdAt": "2024-01-02",
		"categories": ["人工智能"],
		"tags": [],
		"summary": [{"type": "p", "html": "hi"}],
		"link": "posts/hello.html"
	}`)
	if err := ValidatePostMetadata(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePostMetadataReportsIssues(t *testing.T) {
	raw := []byte(`{"title": 5, "tags": "a,b"}`)

	err := ValidatePostMetadata(raw)
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := Issues(err)
	if len(issues) < 2 {
		t.Fatalf("expected an issue per bad field, got %#v", issues)
	}
	joined := err.Error()
	if !strings.Contains(joined, "/title") || !strings.Contains(joined, "/tags") {
		t.Fatalf("expected locations in message, got %q", joined)
	}
}

func TestValidatePostMetadataRejectsMalformedJSON(t *testing.T) {
	if err := ValidatePostMetadata([]byte(`{"title":`)); !errors.Is(err, ErrPayloadMalformed) {
		t.Fatalf("expected ErrPayloadMalformed, got %v", err)
	}
}

func TestValidateManifestChecksNestedPosts(t *testing.T) {
	if err := ValidateManifest([]byte(`{"generatedAt":"x","postCount":1,"posts":[{"slug":"a"}]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateManifest([]byte(`{"posts":[{"summary":[{"type":"p"}]}]}`)); err == nil {
		t.Fatalf("expected nested summary block without html to fail")
	}
	if err := ValidateManifest([]byte(`{"postCount":1}`)); err == nil {
		t.Fatalf("expected missing posts to fail")
	}
}
