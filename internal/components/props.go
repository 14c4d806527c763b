package components

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/templating"
)

// NameAttribute is the attribute that names a component.
const NameAttribute = "component"

var (
	dashRun  = regexp.MustCompile(`-+`)
	extraKey = regexp.MustCompile(`^[A-Z0-9_]+$`)
	headings = []any{"h1", "h2", "h3", "h4", "h5", "h6"}
)

// Props is the allow-listed configuration read from a component host
// element. Attributes outside the known set land in Extras; keys that are
// computed by the engine or are not valid placeholder names land in Dropped.
type Props struct {
	Heading      string
	Title        string
	Link         string
	Day          string
	Month        string
	Meta         string
	WrapperClass string
	MetaClass    string
	// TitleClass is nil when the attribute is absent, which selects the
	// default class. An explicit empty value renders no class.
	TitleClass *string
	Extras     map[string]string
	Dropped    []string
}

// Key converts a data attribute name (without the "data-" prefix) into its
// template key: dash runs become underscores and the result is upper cased.
func Key(attribute string) string {
	return strings.ToUpper(dashRun.ReplaceAllString(attribute, "_"))
}

// PropsFromAttributes maps data attributes onto Props. The component name
// attribute is skipped.
func PropsFromAttributes(attrs [][2]string) Props {
	props := Props{Extras: map[string]string{}}
	for _, attr := range attrs {
		if attr[0] == NameAttribute {
			continue
		}
		value := attr[1]
		switch key := Key(attr[0]); key {
		case templating.KeyHeading:
			props.Heading = strings.ToLower(strings.TrimSpace(value))
		case templating.KeyTitle:
			props.Title = value
		case templating.KeyLink:
			props.Link = value
		case templating.KeyDay:
			props.Day = value
		case templating.KeyMonth:
			props.Month = value
		case templating.KeyMeta:
			props.Meta = value
		case templating.KeyWrapperClass:
			props.WrapperClass = value
		case templating.KeyMetaClass:
			props.MetaClass = value
		case templating.KeyTitleClass:
			v := value
			props.TitleClass = &v
		case templating.KeyBody, templating.KeyRoot, templating.KeyTitleElement:
			props.Dropped = append(props.Dropped, attr[0])
		default:
			if !extraKey.MatchString(key) {
				props.Dropped = append(props.Dropped, attr[0])
				continue
			}
			props.Extras[key] = value
		}
	}
	return props
}

// Validate checks the heading tag.
func (p Props) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Heading, validation.In(headings...).Error("heading must be h1-h6")),
	)
}

// Vars flattens Props into the template variable map. Unset fields are left
// out so the engine applies its defaults.
func (p Props) Vars() map[string]string {
	vars := make(map[string]string, len(p.Extras)+9)
	for key, value := range p.Extras {
		vars[key] = value
	}
	set := func(key, value string) {
		if value != "" {
			vars[key] = value
		}
	}
	set(templating.KeyHeading, p.Heading)
	set(templating.KeyTitle, p.Title)
	set(templating.KeyLink, p.Link)
	set(templating.KeyDay, p.Day)
	set(templating.KeyMonth, p.Month)
	set(templating.KeyMeta, p.Meta)
	set(templating.KeyWrapperClass, p.WrapperClass)
	set(templating.KeyMetaClass, p.MetaClass)
	if p.TitleClass != nil {
		vars[templating.KeyTitleClass] = *p.TitleClass
	}
	return vars
}
