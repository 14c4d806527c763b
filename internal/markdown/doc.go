// Package markdown turns post sources into page content: front matter
// parsing, goldmark rendering with heading anchors and rehomed images, and
// the parse tree passes that rewrite inline images and wrap h2 sections.
package markdown
