package registry

import (
	"strconv"

	"golang.org/x/net/html"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/markup"
)

// Builtin kinds.
const (
	KindText    domain.Kind = "text"
	KindHeading domain.Kind = "heading"
	KindButton  domain.Kind = "button"
	KindImage   domain.Kind = "image"
	KindSection domain.Kind = "section"
	KindForm    domain.Kind = "form"
)

func baseStyles() domain.Styles {
	return domain.Styles{
		"padding":         "16px",
		"margin":          "8px",
		"borderRadius":    "8px",
		"backgroundColor": "transparent",
	}
}

func withBase(extra domain.Styles) func() domain.Styles {
	return func() domain.Styles {
		s := baseStyles()
		for k, v := range extra {
			s[k] = v
		}
		return s
	}
}

func registerBuiltins(r *Registry) {
	r.MustRegister(Descriptor{
		Kind:        KindText,
		Name:        "Text",
		Description: "Add text content",
		Fields: []Field{
			{Key: "content", Label: "Content", Type: FieldTextArea},
			{Key: "tag", Label: "Tag", Type: FieldSelect, Options: []Option{
				{"p", "Paragraph"}, {"span", "Span"}, {"div", "Div"},
			}},
		},
		DefaultProps: func() domain.Props {
			return domain.Props{"content": "Your text here", "tag": "p"}
		},
		DefaultStyles: withBase(domain.Styles{"fontSize": "16px", "color": "#374151"}),
		Canvas:        renderText,
		Flow:          renderText,
		Export:        renderText,
	})

	r.MustRegister(Descriptor{
		Kind:        KindHeading,
		Name:        "Heading",
		Description: "Add heading text",
		Fields: []Field{
			{Key: "content", Label: "Heading Text", Type: FieldText},
			{Key: "level", Label: "Heading Level", Type: FieldNumber, Min: 1, Max: 6, Options: []Option{
				{"1", "H1"}, {"2", "H2"}, {"3", "H3"}, {"4", "H4"}, {"5", "H5"}, {"6", "H6"},
			}},
		},
		DefaultProps: func() domain.Props {
			return domain.Props{"content": "Your Heading", "level": 1}
		},
		DefaultStyles: withBase(domain.Styles{"fontSize": "32px", "fontWeight": "bold", "color": "#1f2937"}),
		Canvas:        renderHeading,
		Flow:          renderHeading,
		Export:        renderHeading,
	})

	r.MustRegister(Descriptor{
		Kind:        KindButton,
		Name:        "Button",
		Description: "Add interactive button",
		Fields: []Field{
			{Key: "text", Label: "Button Text", Type: FieldText},
			{Key: "link", Label: "Link URL", Type: FieldURL},
		},
		DefaultProps: func() domain.Props {
			return domain.Props{"text": "Button", "link": "#"}
		},
		DefaultStyles: withBase(domain.Styles{
			"backgroundColor": "#0ea5e9",
			"color":           "white",
			"border":          "none",
			"cursor":          "pointer",
			"textAlign":       "center",
			"display":         "inline-block",
			"padding":         "12px 24px",
		}),
		Canvas: renderInertButton,
		Flow:   renderInertButton,
		Export: renderLinkButton,
	})

	r.MustRegister(Descriptor{
		Kind:        KindImage,
		Name:        "Image",
		Description: "Add image or photo",
		Fields: []Field{
			{Key: "src", Label: "Image URL", Type: FieldURL},
			{Key: "alt", Label: "Alt Text", Type: FieldText},
		},
		DefaultProps: func() domain.Props {
			return domain.Props{"src": "", "alt": "Image"}
		},
		DefaultStyles: withBase(domain.Styles{"maxWidth": "100%", "height": "auto"}),
		Canvas:        renderEditorImage,
		Flow:          renderEditorImage,
		Export:        renderImage,
	})

	r.MustRegister(Descriptor{
		Kind:        KindSection,
		Name:        "Section",
		Description: "Add content section",
		Fields: []Field{
			{Key: "title", Label: "Section Title", Type: FieldText},
			{Key: "content", Label: "Section Content", Type: FieldTextArea},
		},
		DefaultProps: func() domain.Props {
			return domain.Props{"title": "Section Title", "content": "Section content"}
		},
		DefaultStyles: withBase(domain.Styles{
			"backgroundColor": "#f8fafc",
			"border":          "1px solid #e2e8f0",
			"minHeight":       "200px",
		}),
		Canvas: renderSection,
		Flow:   renderSection,
		Export: renderSection,
	})

	r.MustRegister(Descriptor{
		Kind:        KindForm,
		Name:        "Form",
		Description: "Add contact form",
		Fields: []Field{
			{Key: "title", Label: "Form Title", Type: FieldText},
			{Key: "fields", Label: "Fields", Type: FieldList},
		},
		DefaultProps: func() domain.Props {
			return domain.Props{"title": "Contact Form", "fields": []string{"name", "email", "message"}}
		},
		DefaultStyles: withBase(nil),
		Canvas:        renderInertForm,
		Flow:          renderInertForm,
		Export:        renderForm,
	})
}

// ── Bodies ─────────────────────────────────────────────────

func textTag(p domain.Props) string {
	switch tag := p.String("tag"); tag {
	case "p", "span", "div":
		return tag
	}
	return "p"
}

func renderText(c domain.Component) *html.Node {
	return markup.El(textTag(c.Props), nil, markup.Text(c.Props.String("content")))
}

func headingTag(p domain.Props) string {
	level := p.Int("level", 1)
	if level < 1 || level > 6 {
		level = 1
	}
	return "h" + strconv.Itoa(level)
}

func renderHeading(c domain.Component) *html.Node {
	return markup.El(headingTag(c.Props), nil, markup.Text(c.Props.String("content")))
}

// renderInertButton never navigates; the editor surfaces only show it.
func renderInertButton(c domain.Component) *html.Node {
	return markup.El("button", []markup.Attr{
		markup.A("type", "button"),
		markup.A("class", "site-button"),
		markup.A("data-link", c.Props.String("link")),
	}, markup.Text(c.Props.String("text")))
}

// renderLinkButton opens the link in a new browsing context when activated.
func renderLinkButton(c domain.Component) *html.Node {
	return markup.El("a", []markup.Attr{
		markup.A("class", "site-button"),
		markup.A("role", "button"),
		markup.A("href", c.Props.String("link")),
		markup.A("target", "_blank"),
		markup.A("rel", "noopener noreferrer"),
	}, markup.Text(c.Props.String("text")))
}

// renderEditorImage shows a placeholder while src is empty.
func renderEditorImage(c domain.Component) *html.Node {
	if c.Props.String("src") == "" {
		return markup.El("div", []markup.Attr{markup.A("class", "image-placeholder")},
			markup.El("div", []markup.Attr{markup.A("class", "image-placeholder-icon")}),
			markup.El("p", nil, markup.Text("No image")),
		)
	}
	return renderImage(c)
}

// renderImage binds src and alt directly; an empty src is kept as-is.
func renderImage(c domain.Component) *html.Node {
	return markup.El("img", []markup.Attr{
		markup.A("src", c.Props.String("src")),
		markup.A("alt", c.Props.String("alt")),
	})
}

func renderSection(c domain.Component) *html.Node {
	return markup.El("section", []markup.Attr{markup.A("class", "site-section")},
		markup.El("h3", nil, markup.Text(c.Props.String("title"))),
		markup.El("p", nil, markup.Text(c.Props.String("content"))),
	)
}

func renderInertForm(c domain.Component) *html.Node {
	return formBody(c, false)
}

func renderForm(c domain.Component) *html.Node {
	return formBody(c, true)
}

// formBody renders the title and one labelled input per field. "message"
// gets a textarea and "email" an email input. Unless submittable, the submit
// button is a plain button so the form never submits.
func formBody(c domain.Component, submittable bool) *html.Node {
	form := markup.El("form", []markup.Attr{markup.A("class", "site-form")})
	for _, field := range c.Props.Strings("fields") {
		var input *html.Node
		placeholder := "Enter your " + field
		switch field {
		case "message":
			input = markup.El("textarea", []markup.Attr{
				markup.A("name", field),
				markup.A("rows", "4"),
				markup.A("placeholder", placeholder),
			})
		default:
			typ := "text"
			if field == "email" {
				typ = "email"
			}
			input = markup.El("input", []markup.Attr{
				markup.A("type", typ),
				markup.A("name", field),
				markup.A("placeholder", placeholder),
			})
		}
		form.AppendChild(markup.El("div", []markup.Attr{markup.A("class", "form-field")},
			markup.El("label", nil, markup.Text(field)),
			input,
		))
	}

	submitType := "button"
	if submittable {
		submitType = "submit"
	}
	form.AppendChild(markup.El("button", []markup.Attr{markup.A("type", submitType)}, markup.Text("Submit")))

	return markup.El("div", []markup.Attr{markup.A("class", "site-form-wrapper")},
		markup.El("h3", nil, markup.Text(c.Props.String("title"))),
		form,
	)
}

// UnknownBody is the placeholder rendered for kinds missing from the registry.
func UnknownBody(kind domain.Kind) *html.Node {
	return markup.El("div", []markup.Attr{
		markup.A("class", "unknown-component"),
		markup.A("data-kind", string(kind)),
	}, markup.Text("Unknown component: "+string(kind)))
}
