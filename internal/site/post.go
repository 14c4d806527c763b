package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-blog/internal/dom"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/taxonomy"
	"github.com/goliatone/go-blog/internal/templating"
)

const (
	metadataSelector   = "script#post-metadata"
	navigationSelector = `[data-component="post-navigation"]`
	listSelector       = "[data-post-list]"

	prevLabel = "上一篇："
	nextLabel = "下一篇："
)

type pageMetadata struct {
	ID         any      `json:"id"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// metadata decodes the post metadata block. ok is false on pages without one.
func metadata(doc *dom.Document) (pageMetadata, bool, error) {
	script := doc.Find(metadataSelector).First()
	if script.Length() == 0 {
		return pageMetadata{}, false, nil
	}
	var meta pageMetadata
	decoder := json.NewDecoder(bytes.NewReader([]byte(script.Text())))
	decoder.UseNumber()
	if err := decoder.Decode(&meta); err != nil {
		return pageMetadata{}, true, fmt.Errorf("site: post metadata: %w", err)
	}
	return meta, true, nil
}

func (m pageMetadata) id() string {
	switch v := m.ID.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(m.ID)
}

// postNavigation fills the prev/next attributes of the navigation component
// before it renders. Previous is the newer neighbour.
func (r *Runtime) postNavigation(ctx context.Context, st *state) error {
	hosts := st.doc.Find(navigationSelector)
	if hosts.Length() == 0 || st.doc.Find(listSelector).Length() > 0 {
		return nil
	}
	meta, ok, err := metadata(st.doc)
	if !ok || err != nil {
		return err
	}
	list, err := r.load(ctx, st)
	if err != nil {
		return err
	}

	sorted := posts.Sorted(list)
	current := posts.FindByID(sorted, meta.id())
	if current < 0 {
		return fmt.Errorf("site: post %q is not in the manifest", meta.id())
	}
	var prev, next string
	if current > 0 {
		prev = NavigationLink("prev-post", prevLabel, sorted[current-1], st.root)
	}
	if current < len(sorted)-1 {
		next = NavigationLink("next-post", nextLabel, sorted[current+1], st.root)
	}
	dom.Apply(
		dom.Attribute(hosts, "data-prev-post-link", prev),
		dom.Attribute(hosts, "data-next-post-link", next),
	)
	return nil
}

// NavigationLink renders one side of the post navigation.
func NavigationLink(class, label string, post posts.Post, root string) string {
	return `<span class="` + class + `">` + label + `<a href="` +
		html.EscapeString(templating.ResolveLink(post.Link, root)) + `">` +
		html.EscapeString(post.Title) + `</a></span>`
}

// fixMetaLinks points the placeholder taxonomy links of the rendered post
// header at the filtered index, matching links to values by position.
func (r *Runtime) fixMetaLinks(_ context.Context, st *state) error {
	meta, ok, err := metadata(st.doc)
	if !ok || err != nil {
		return err
	}
	postMeta := st.doc.Find(".post-header .post-meta")
	if postMeta.Length() == 0 {
		postMeta = st.doc.Find(".post-meta")
	}
	postMeta = postMeta.First()
	if postMeta.Length() == 0 {
		return nil
	}

	var patches []dom.Patch
	postMeta.Find(`.meta-categories a[href="#"]`).Each(func(i int, link *goquery.Selection) {
		if i < len(meta.Categories) {
			patches = append(patches, dom.Attribute(link, "href", taxonomy.CategoryHref(st.root, meta.Categories[i])))
		}
	})
	postMeta.Find(`.meta-tags a[href="#"]`).Each(func(i int, link *goquery.Selection) {
		if i < len(meta.Tags) {
			patches = append(patches, dom.Attribute(link, "href", taxonomy.TagHref(st.root, r.canon, meta.Tags[i])))
		}
	})
	dom.Apply(patches...)
	return nil
}

// tableOfContents lists the content sections in the sidebar outline, hiding
// the outline when there is nothing to list.
func (r *Runtime) tableOfContents(_ context.Context, st *state) error {
	section := st.doc.Find(".sidebar-section.toc").First()
	if section.Length() == 0 {
		return nil
	}
	list := section.Find(".toc-list").First()
	content := st.doc.Find(".single-post-content").First()
	if list.Length() == 0 || content.Length() == 0 {
		dom.Apply(dom.Patch{Target: section, Kind: dom.SetAttr, Attr: "hidden"})
		return nil
	}

	var b strings.Builder
	content.Find("section[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		heading := s.Find("h1, h2, h3, h4, h5, h6").First()
		if heading.Length() == 0 {
			return
		}
		title := HeadingText(heading)
		if title == "" {
			return
		}
		b.WriteString(`<li><a href="#` + html.EscapeString(id) + `">` + html.EscapeString(title) + `</a></li>`)
	})
	if b.Len() == 0 {
		dom.Apply(dom.Patch{Target: section, Kind: dom.SetAttr, Attr: "hidden"})
		return nil
	}
	dom.Apply(
		dom.Patch{Target: section, Kind: dom.Show},
		dom.Inner(list, b.String()),
	)
	return nil
}

// HeadingText is the heading text without its anchor markers.
func HeadingText(heading *goquery.Selection) string {
	clone := heading.Clone()
	clone.Find(".section-anchor").Remove()
	return strings.TrimSpace(clone.Text())
}
