package markdown

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	sectionClass = "post-section"
	anchorClass  = "section-anchor"
)

// WrapSections wraps every top level h2 and the siblings up to the next top
// level h2 in <section class="post-section" id="...">. The heading's id moves
// to the section and is kept on the heading as data-heading-id.
func WrapSections(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return markup, nil
	}
	nodes, err := parseFragment(markup)
	if err != nil {
		return "", err
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	for node := root.FirstChild; node != nil; {
		if !isH2(node) {
			node = node.NextSibling
			continue
		}
		id := strings.TrimSpace(attrValue(node, "id"))
		if id == "" {
			id = SlugifyHeading(strings.ReplaceAll(textContent(node, anchorClass), "#", ""))
		}

		section := &html.Node{
			Type:     html.ElementNode,
			Data:     "section",
			DataAtom: atom.Section,
			Attr: []html.Attribute{
				{Key: "class", Val: sectionClass},
				{Key: "id", Val: id},
			},
		}
		root.InsertBefore(section, node)
		setHeadingID(node, id)

		for current := node; current != nil && (current == node || !isH2(current)); {
			next := current.NextSibling
			root.RemoveChild(current)
			section.AppendChild(current)
			current = next
		}
		node = section.NextSibling
	}

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func isH2(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.H2
}

func setHeadingID(n *html.Node, id string) {
	attrs := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Key != "id" {
			attrs = append(attrs, attr)
		}
	}
	n.Attr = append(attrs, html.Attribute{Key: "data-heading-id", Val: id})
}
