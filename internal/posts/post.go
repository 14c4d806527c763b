package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SummaryBlock is one block-level fragment of a post excerpt. Type names the
// block tag (p, h2, ul, ...) and HTML carries the markup.
type SummaryBlock struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// Post is a manifest entry. The same shape is embedded as the metadata block
// of every published page, without MetaText.
type Post struct {
	ID         string         `json:"id"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	CreatedAt  string         `json:"createdAt"`
	Day        string         `json:"day"`
	Month      string         `json:"month"`
	Categories []string       `json:"categories"`
	Tags       []string       `json:"tags"`
	Summary    []SummaryBlock `json:"summary"`
	Link       string         `json:"link"`
	MetaText   string         `json:"metaText,omitempty"`
}

// UnmarshalJSON accepts the id as a string or a JSON number, the way
// hand-written metadata blocks carry it.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*p = Post(raw.plain)
	p.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("post id must be a string or a number: %s", raw)
	}
	return n.String(), nil
}

// Manifest is the aggregate index written to posts/manifest.json.
type Manifest struct {
	GeneratedAt string `json:"generatedAt"`
	PostCount   int    `json:"postCount"`
	Posts       []Post `json:"posts"`
}

// LinkFor returns the site relative link of a published post.
func LinkFor(postsDir, slug string) string {
	if postsDir == "" {
		postsDir = "posts"
	}
	return postsDir + "/" + slug + ".html"
}

// FindByID returns the index of the post with id, or -1.
func FindByID(list []Post, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// FindBySlug returns the index of the post with slug, or -1.
func FindBySlug(list []Post, slug string) int {
	if slug == "" {
		return -1
	}
	for i := range list {
		if list[i].Slug == slug {
			return i
		}
	}
	return -1
}
