package dom

import (
	"strings"
	"testing"
)

func TestApplyPatches(t *testing.T) {
	doc, err := Parse(`<!DOCTYPE html><html><body><div id="a" data-x="1">old</div><ul id="b"></ul><p id="c" hidden>c</p><nav id="d">keep</nav></body></html>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	Apply(
		ReplaceWith(doc.Find("#a"), "  <section>new</section><span>two</span> "),
		Inner(doc.Find("#b"), "<li>1</li>"),
		Patch{Target: doc.Find("#c"), Kind: Show},
		Patch{Target: doc.Find("#d"), Kind: Hide},
		Attribute(doc.Find("#b"), "data-count", "1"),
		ReplaceWith(doc.Find("#missing"), "<b>ignored</b>"),
	)

	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<section>new</section><span>two</span>",
		`<ul id="b" data-count="1"><li>1</li></ul>`,
		`<p id="c">c</p>`,
		`<nav id="d" hidden=""></nav>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") || strings.Contains(out, "old") {
		t.Fatalf("unexpected content in output:\n%s", out)
	}
}

func TestDataAttributes(t *testing.T) {
	doc, err := Parse(`<div data-component="card" class="x" data-title="T" data-Wrapper-Class="w"></div>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	attrs := DataAttributes(doc.Find("div"))
	if len(attrs) != 3 {
		t.Fatalf("expected 3 data attributes, got %v", attrs)
	}
	if attrs[1] != [2]string{"title", "T"} || attrs[2] != [2]string{"wrapper-class", "w"} {
		t.Fatalf("unexpected attributes %v", attrs)
	}
}
