package manifestgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/validation"
)

var (
	ErrMetadataMissing = errors.New("metadata block not found")
	ErrMetadataInvalid = errors.New("metadata JSON is invalid")
)

const (
	metadataSelector  = `script#post-metadata[type="application/json"]`
	contentSelector   = `div[class*="post-content"]`
	summaryBlockLimit = 2

	uncategorizedLabel = "未分类"
	untaggedLabel      = "暂无标签"
)

var moreMarker = regexp.MustCompile(`(?i)^\s*more\s*$`)

var blockTypes = map[atom.Atom]bool{
	atom.P:          true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Figure:     true,
	atom.Table:      true,
	atom.Pre:        true,
}

// Complex blocks keep their outer tag; the rest keep inner markup only.
var outerTagTypes = map[atom.Atom]bool{
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Figure:     true,
	atom.Table:      true,
	atom.Pre:        true,
}

type metadataBlock struct {
	ID         any                  `json:"id"`
	Slug       string               `json:"slug"`
	Title      string               `json:"title"`
	CreatedAt  *string              `json:"createdAt"`
	Day        string               `json:"day"`
	Month      string               `json:"month"`
	Categories []string             `json:"categories"`
	Tags       []string             `json:"tags"`
	Summary    []posts.SummaryBlock `json:"summary"`
	Link       string               `json:"link"`
}

func parsePage(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// ExtractMetadata returns the post metadata block embedded in a published
// page, exactly as written. The block must satisfy the post metadata schema.
func ExtractMetadata(page []byte) (posts.Post, error) {
	doc, err := parsePage(page)
	if err != nil {
		return posts.Post{}, err
	}
	return metadataFrom(doc)
}

func metadataFrom(doc *goquery.Document) (posts.Post, error) {
	script := doc.Find(metadataSelector).First()
	if script.Length() == 0 {
		return posts.Post{}, ErrMetadataMissing
	}
	raw := []byte(strings.TrimSpace(script.Text()))
	if err := validation.ValidatePostMetadata(raw); err != nil {
		return posts.Post{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}

	var block metadataBlock
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&block); err != nil {
		return posts.Post{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}

	post := posts.Post{
		ID:         idString(block.ID),
		Slug:       block.Slug,
		Title:      block.Title,
		Day:        block.Day,
		Month:      block.Month,
		Categories: block.Categories,
		Tags:       block.Tags,
		Summary:    block.Summary,
		Link:       block.Link,
	}
	if block.CreatedAt != nil {
		post.CreatedAt = *block.CreatedAt
	}
	return post, nil
}

func idString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(value)
}

// ExtractSummary picks the excerpt of a published page: the blocks before a
// <!-- more --> marker in the content container, else fallback, else the
// first two blocks of the content.
func ExtractSummary(page []byte, fallback []posts.SummaryBlock) ([]posts.SummaryBlock, error) {
	doc, err := parsePage(page)
	if err != nil {
		return nil, err
	}
	return summaryFrom(doc, fallback), nil
}

func summaryFrom(doc *goquery.Document, fallback []posts.SummaryBlock) []posts.SummaryBlock {
	container := doc.Find(contentSelector).First()
	if container.Length() == 0 {
		if len(fallback) > 0 {
			return fallback
		}
		return []posts.SummaryBlock{}
	}
	root := container.Get(0)

	if marker := findMarker(root); marker != nil {
		c := &blockCollector{marker: marker}
		c.visit(root)
		if len(c.out) > 0 {
			return c.out
		}
	}
	if len(fallback) > 0 {
		return fallback
	}
	c := &blockCollector{limit: summaryBlockLimit, out: []posts.SummaryBlock{}}
	c.visit(root)
	return c.out
}

func findMarker(root *xhtml.Node) *xhtml.Node {
	var found *xhtml.Node
	var search func(*xhtml.Node)
	search = func(n *xhtml.Node) {
		for child := n.FirstChild; child != nil && found == nil; child = child.NextSibling {
			if child.Type == xhtml.CommentNode && moreMarker.MatchString(child.Data) {
				found = child
				return
			}
			search(child)
		}
	}
	search(root)
	return found
}

func contains(n, target *xhtml.Node) bool {
	for p := target.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// blockCollector walks the content tree in document order. Section and other
// wrapper elements are descended into; block elements are taken whole.
type blockCollector struct {
	marker *xhtml.Node
	limit  int
	out    []posts.SummaryBlock
	done   bool
}

func (c *blockCollector) visit(n *xhtml.Node) {
	for child := n.FirstChild; child != nil && !c.done; child = child.NextSibling {
		if child == c.marker {
			c.done = true
			return
		}
		if child.Type != xhtml.ElementNode {
			continue
		}
		if !blockTypes[child.DataAtom] {
			c.visit(child)
			continue
		}
		if c.marker != nil && contains(child, c.marker) {
			c.done = true
			return
		}
		c.add(child)
	}
}

func (c *blockCollector) add(n *xhtml.Node) {
	inner := strings.TrimSpace(innerHTML(n))
	if inner == "" {
		return
	}
	markup := inner
	if outerTagTypes[n.DataAtom] {
		markup = "<" + n.Data + attributes(n) + ">" + inner + "</" + n.Data + ">"
	}
	c.out = append(c.out, posts.SummaryBlock{Type: n.Data, HTML: markup})
	if c.limit > 0 && len(c.out) >= c.limit {
		c.done = true
	}
}

func innerHTML(n *xhtml.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		_ = xhtml.Render(&b, child)
	}
	return b.String()
}

func attributes(n *xhtml.Node) string {
	var b strings.Builder
	for _, attr := range n.Attr {
		b.WriteString(" " + attr.Key + `="` + html.EscapeString(attr.Val) + `"`)
	}
	return b.String()
}

// MetaText is the plain text meta line stored with each manifest entry:
// "createdAt | 分类：a,b | 标签：x".
func MetaText(post posts.Post) string {
	segments := make([]string, 0, 3)
	if post.CreatedAt != "" {
		segments = append(segments, post.CreatedAt)
	}
	categoryText := uncategorizedLabel
	if categories := nonEmpty(post.Categories); len(categories) > 0 {
		categoryText = strings.Join(categories, ",")
	}
	segments = append(segments, "分类："+categoryText)

	tagText := untaggedLabel
	if tags := nonEmpty(post.Tags); len(tags) > 0 {
		tagText = strings.Join(tags, ",")
	}
	segments = append(segments, "标签："+tagText)
	return strings.Join(segments, " | ")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
