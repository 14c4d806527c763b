package publish

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
)

//go:embed templates/post.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/post.html.tmpl"))

const (
	metadataIndent = 8
	contentIndent  = 16

	uncategorizedLabel = "未分类"
	untaggedLabel      = "暂无标签"
)

// Page holds the values stamped into a published post page.
type Page struct {
	Language    string
	Title       string
	TitleSuffix string
	Metadata    posts.Post
	MetaHTML    string
	Content     string
}

type pageView struct {
	Language    string
	Title       string
	TitleSuffix string
	Day         string
	Month       string
	MetaHTML    string
	Metadata    template.JS
	Content     template.HTML
}

// BuildPage renders the standalone page of a post. The metadata block is
// four space indented JSON.
func BuildPage(p Page) (string, error) {
	metadata, err := MetadataJSON(p.Metadata)
	if err != nil {
		return "", err
	}
	language := p.Language
	if language == "" {
		language = "zh-CN"
	}

	view := pageView{
		Language:    language,
		Title:       p.Title,
		TitleSuffix: p.TitleSuffix,
		Day:         p.Metadata.Day,
		Month:       p.Metadata.Month,
		MetaHTML:    p.MetaHTML,
		Metadata:    template.JS(indentBlock(metadata, metadataIndent)),
		Content:     template.HTML(indentBlock(p.Content, contentIndent)),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("publish: render page: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// MetadataJSON encodes the metadata block. "</" is escaped so the block
// cannot close its script element.
func MetadataJSON(post posts.Post) (string, error) {
	post.MetaText = ""
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(post); err != nil {
		return "", fmt.Errorf("publish: encode metadata: %w", err)
	}
	return strings.ReplaceAll(strings.TrimSpace(buf.String()), "</", `<\/`), nil
}

// MetaHTML renders the date, category and tag line of the post header.
// Category and tag links start as "#" and are pointed at the listing by the
// page runtime.
func MetaHTML(createdAt string, categories, tags []string) string {
	var b strings.Builder
	b.WriteString(`<span class="meta-item meta-date">` + escapeText(createdAt) + `</span>`)
	b.WriteString(`<span class="meta-divider">|</span>`)

	b.WriteString(`<span class="meta-item meta-categories">分类：`)
	writeLinks(&b, categories, uncategorizedLabel)
	b.WriteString(`</span>`)

	b.WriteString(`<span class="meta-divider">|</span>`)

	b.WriteString(`<span class="meta-item meta-tags">标签：`)
	writeLinks(&b, tags, untaggedLabel)
	b.WriteString(`</span>`)
	return b.String()
}

func writeLinks(b *strings.Builder, labels []string, empty string) {
	if len(labels) == 0 {
		b.WriteString(`<span class="post-taxonomy-empty">` + empty + `</span>`)
		return
	}
	for i, label := range labels {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`<a href="#">` + escapeText(label) + `</a>`)
	}
}

func escapeText(value string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}

func indentBlock(text string, spaces int) string {
	indent := strings.Repeat(" ", spaces)
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
