package templating

import (
	"html"
	"regexp"
	"strings"
)

var passThroughLink = regexp.MustCompile(`(?i)^(?:[a-z]+:|//|#)`)

// ResolveLink prefixes relative links with root. Absolute URLs, protocol
// relative URLs and fragments are returned unchanged.
func ResolveLink(link, root string) string {
	if link == "" {
		return ""
	}
	if passThroughLink.MatchString(link) {
		return link
	}
	return root + link
}

// TitleElement renders <hN class="..."><a href="...">title</a></hN>. The class
// attribute is omitted when class is empty and the anchor when href is empty.
// title is inserted as markup.
func TitleElement(heading, class, title, href string) string {
	heading = strings.ToLower(strings.TrimSpace(heading))
	if heading == "" {
		heading = DefaultHeading
	}
	var b strings.Builder
	b.WriteString("<" + heading)
	if class != "" {
		b.WriteString(` class="` + html.EscapeString(class) + `"`)
	}
	b.WriteString(">")
	if href != "" {
		b.WriteString(`<a href="` + html.EscapeString(href) + `">`)
	}
	b.WriteString(title)
	if href != "" {
		b.WriteString("</a>")
	}
	b.WriteString("</" + heading + ">")
	return b.String()
}
