package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-blog/internal/posts"
)

var (
	ErrTitleRequired = errors.New(`front matter must include a non-empty "title"`)
	ErrDateRequired  = errors.New(`front matter must include "createdAt" (ISO date)`)
	ErrDraft         = errors.New(`front matter sets "draft: true"; refusing to publish`)
	ErrInvalidDate   = errors.New(`invalid "createdAt" value`)
)

var listSeparator = regexp.MustCompile(`[，,]`)

// FrontMatter is the normalized post header. CreatedAt keeps the raw value;
// use Date to validate and format it.
type FrontMatter struct {
	Title      string
	Slug       string
	ID         string
	CreatedAt  string
	Categories []string
	Tags       []string
	Summary    []posts.SummaryBlock
	Draft      bool
}

type frontMatterEnvelope struct {
	Title      any `yaml:"title"`
	Slug       any `yaml:"slug"`
	ID         any `yaml:"id"`
	CreatedAt  any `yaml:"createdAt"`
	Date       any `yaml:"date"`
	Categories any `yaml:"categories"`
	Tags       any `yaml:"tags"`
	Summary    any `yaml:"summary"`
	Draft      any `yaml:"draft"`
}

// ParseFrontMatter splits source into its normalized header and the Markdown
// body. Sources without a header yield an empty FrontMatter.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var env frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	createdAt := scalar(env.CreatedAt)
	if createdAt == "" {
		createdAt = scalar(env.Date)
	}
	draft, _ := env.Draft.(bool)

	return FrontMatter{
		Title:      scalar(env.Title),
		Slug:       scalar(env.Slug),
		ID:         scalar(env.ID),
		CreatedAt:  createdAt,
		Categories: stringList(env.Categories),
		Tags:       stringList(env.Tags),
		Summary:    summaryBlocks(env.Summary),
		Draft:      draft,
	}, body, nil
}

// Date parses CreatedAt and returns it as YYYY-MM-DD.
func (fm FrontMatter) Date() (string, time.Time, error) {
	if fm.CreatedAt == "" {
		return "", time.Time{}, ErrDateRequired
	}
	t, ok := posts.ParseDate(fm.CreatedAt)
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, fm.CreatedAt)
	}
	t = t.UTC()
	return posts.FormatDate(t), t, nil
}

func scalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// stringList accepts a YAML list or a comma separated string, either ASCII
// or full width commas.
func stringList(value any) []string {
	var raw []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	case string:
		raw = listSeparator.Split(v, -1)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// summaryBlocks accepts a list of {type, html} maps or a plain string, which
// becomes one escaped paragraph.
func summaryBlocks(value any) []posts.SummaryBlock {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []posts.SummaryBlock{}
		}
		return []posts.SummaryBlock{{Type: "p", HTML: escapeText(v)}}
	case []any:
		out := make([]posts.SummaryBlock, 0, len(v))
		for _, item := range v {
			fields := mapOf(item)
			if fields == nil {
				continue
			}
			typ, _ := fields["type"].(string)
			markup, _ := fields["html"].(string)
			typ, markup = strings.TrimSpace(typ), strings.TrimSpace(markup)
			if typ == "" || markup == "" {
				continue
			}
			out = append(out, posts.SummaryBlock{Type: typ, HTML: markup})
		}
		return out
	}
	return []posts.SummaryBlock{}
}

func mapOf(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if s, ok := key.(string); ok {
				out[s] = item
			}
		}
		return out
	}
	return nil
}

// escapeText escapes &, < and > only; quotes stay literal in text content.
func escapeText(value string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(value)
}

// EscapeAttribute escapes a value for a double or single quoted attribute.
func EscapeAttribute(value string) string {
	return html.EscapeString(value)
}
