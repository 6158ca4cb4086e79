// Package markup builds HTML node trees and renders them.
//
// All renderers (canvas, flow preview, static export) construct
// *html.Node trees with these helpers and serialize them with
// html.Render, so escaping of text and attribute values is uniform.
package markup

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is a single attribute; attributes render in the order given.
type Attr = html.Attribute

// A returns an attribute.
func A(key, val string) Attr {
	return Attr{Key: key, Val: val}
}

// El builds an element node. Nil children are skipped.
func El(tag string, attrs []Attr, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// Text builds a text node. The content is escaped on render.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Newline is a whitespace text node used to keep documents readable.
func Newline() *html.Node {
	return Text("\n")
}

// Document wraps children in a document node preceded by <!DOCTYPE html>.
func Document(children ...*html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(Newline())
	for _, c := range children {
		if c != nil {
			doc.AppendChild(c)
		}
	}
	return doc
}

// Page builds a complete HTML document with the usual charset and viewport
// meta tags, a title and an optional inline stylesheet.
func Page(title, css string, body ...*html.Node) *html.Node {
	head := El("head", nil,
		Newline(),
		El("meta", []Attr{A("charset", "UTF-8")}),
		Newline(),
		El("meta", []Attr{A("name", "viewport"), A("content", "width=device-width, initial-scale=1.0")}),
		Newline(),
		El("title", nil, Text(title)),
		Newline(),
	)
	if css != "" {
		head.AppendChild(El("style", nil, Text(css)))
		head.AppendChild(Newline())
	}
	bodyEl := El("body", nil, Newline())
	for _, b := range body {
		if b == nil {
			continue
		}
		bodyEl.AppendChild(b)
		bodyEl.AppendChild(Newline())
	}
	return Document(El("html", []Attr{A("lang", "en")}, Newline(), head, Newline(), bodyEl, Newline()), Newline())
}

// Render serializes a node tree.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Px formats a pixel length ("12px", "12.5px").
func Px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// KebabCase converts a camel-case style key to its CSS name
// (backgroundColor -> background-color). Every upper-case letter becomes
// a hyphen followed by its lower-case form.
func KebabCase(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Decl is one style declaration.
type Decl struct {
	Key   string
	Value string
}

// StyleString renders a style map as "key: value;" pairs joined by a space.
// Keys are kebab-cased and sorted so the output is stable.
// Trailing declarations are appended in order after the map entries and
// override map entries with the same CSS name.
func StyleString(styles map[string]string, trailing ...Decl) string {
	override := make(map[string]bool, len(trailing))
	for _, d := range trailing {
		override[KebabCase(d.Key)] = true
	}

	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(trailing))
	for _, k := range keys {
		name := KebabCase(k)
		if override[name] {
			continue
		}
		parts = append(parts, name+": "+styles[k]+";")
	}
	for _, d := range trailing {
		parts = append(parts, KebabCase(d.Key)+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}
