// Package dom is the thin adapter between render nodes and a parsed HTML
// document. Rendering code decides what markup goes where and returns
// Patches; only Apply mutates the tree.
package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed page.
type Document struct {
	doc *goquery.Document
}

// Parse parses a full HTML page.
func Parse(markup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Find returns the elements matching a CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Root returns the document selection.
func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

// HTML serialises the document, doctype included.
func (d *Document) HTML() (string, error) {
	out, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return out, nil
}

// Kind selects what a Patch does to its target.
type Kind int

const (
	// Replace swaps the target element for the parsed markup.
	Replace Kind = iota
	// SetInner replaces the target's children with the parsed markup.
	SetInner
	// SetAttr sets Attr to Value.
	SetAttr
	// RemoveAttr deletes Attr.
	RemoveAttr
	// Hide sets the hidden attribute and clears the children.
	Hide
	// Show removes the hidden attribute.
	Show
)

// Patch is one render node bound to its target element.
type Patch struct {
	Target *goquery.Selection
	Kind   Kind
	Markup string
	Attr   string
	Value  string
}

// ReplaceWith builds a Replace patch.
func ReplaceWith(target *goquery.Selection, markup string) Patch {
	return Patch{Target: target, Kind: Replace, Markup: markup}
}

// Inner builds a SetInner patch.
func Inner(target *goquery.Selection, markup string) Patch {
	return Patch{Target: target, Kind: SetInner, Markup: markup}
}

// Attribute builds a SetAttr patch.
func Attribute(target *goquery.Selection, name, value string) Patch {
	return Patch{Target: target, Kind: SetAttr, Attr: name, Value: value}
}

// Apply performs patches in order. It is not safe for concurrent use with
// other mutations of the same document.
func Apply(patches ...Patch) {
	for _, p := range patches {
		if p.Target == nil || p.Target.Length() == 0 {
			continue
		}
		switch p.Kind {
		case Replace:
			p.Target.ReplaceWithHtml(strings.TrimSpace(p.Markup))
		case SetInner:
			p.Target.SetHtml(p.Markup)
		case SetAttr:
			p.Target.SetAttr(p.Attr, p.Value)
		case RemoveAttr:
			p.Target.RemoveAttr(p.Attr)
		case Hide:
			p.Target.SetHtml("")
			p.Target.SetAttr("hidden", "")
		case Show:
			p.Target.RemoveAttr("hidden")
		}
	}
}

// DataAttributes returns the data-* attributes of the first element in sel in
// document order, names lowercased and without the "data-" prefix.
func DataAttributes(sel *goquery.Selection) [][2]string {
	if sel.Length() == 0 {
		return nil
	}
	node := sel.Get(0)
	out := make([][2]string, 0, len(node.Attr))
	for _, attr := range node.Attr {
		name := strings.ToLower(attr.Key)
		if !strings.HasPrefix(name, "data-") {
			continue
		}
		out = append(out, [2]string{strings.TrimPrefix(name, "data-"), attr.Val})
	}
	return out
}

// InnerHTML returns the inner markup of the first element in sel.
func InnerHTML(sel *goquery.Selection) string {
	out, err := sel.Html()
	if err != nil {
		return ""
	}
	return out
}
