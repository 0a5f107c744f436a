// Package view holds the in-memory host page the widgets draw into.
//
// The page is parsed once per dashboard into an HTML node tree. Widgets find
// their anchors by id, mutate nodes in place, and the tree (or a fragment of
// it) is rendered back to HTML for the browser.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrAnchorNotFound = errors.New("view anchor not found")

// Document is a parsed host page.
type Document struct {
	root *html.Node
}

// Parse reads a host page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse host page: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for in-memory pages.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ByID returns the element with the given id.
func (d *Document) ByID(id string) (*Element, bool) {
	n := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if n == nil {
		return nil, false
	}
	return &Element{n: n}, true
}

// Require is ByID that fails with ErrAnchorNotFound.
func (d *Document) Require(id string) (*Element, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrAnchorNotFound)
	}
	el, ok := d.ByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrAnchorNotFound, id)
	}
	return el, nil
}

// FindByClass returns every element carrying the class, in document order.
func (d *Document) FindByClass(class string) []*Element {
	return (&Element{n: d.root}).FindByClass(class)
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	n := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if n == nil {
		return nil
	}
	return &Element{n: n}
}

// Render writes the whole page.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Element wraps one element node of a Document.
type Element struct {
	n *html.Node
}

func (e *Element) Tag() string { return e.n.Data }

func (e *Element) ID() string { return attr(e.n, "id") }

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(key string) string { return attr(e.n, key) }

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i := range e.n.Attr {
		if e.n.Attr[i].Namespace == "" && e.n.Attr[i].Key == key {
			e.n.Attr[i].Val = val
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops an attribute if present.
func (e *Element) RemoveAttr(key string) {
	out := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	e.n.Attr = out
}

func (e *Element) Classes() []string { return strings.Fields(e.Attr("class")) }

func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.TrimSpace(e.Attr("class")+" "+class))
}

func (e *Element) RemoveClass(class string) {
	var keep []string
	for _, c := range e.Classes() {
		if c != class {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(keep, " "))
}

// Style returns a single inline style property.
func (e *Element) Style(prop string) string {
	for _, decl := range strings.Split(e.Attr("style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == prop {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// SetStyle sets one inline style property, keeping the others.
func (e *Element) SetStyle(prop, val string) {
	var decls []string
	replaced := false
	for _, decl := range strings.Split(e.Attr("style"), ";") {
		k, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == prop {
			decls = append(decls, prop+": "+val)
			replaced = true
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !replaced {
		decls = append(decls, prop+": "+val)
	}
	e.SetAttr("style", strings.Join(decls, "; "))
}

func (e *Element) Show() { e.SetStyle("display", "block") }

func (e *Element) Hide() { e.SetStyle("display", "none") }

// Visible reports whether the element is not hidden by an inline display: none.
func (e *Element) Visible() bool { return e.Style("display") != "none" }

// Clear removes every child node.
func (e *Element) Clear() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

// Append creates a child element with the given tag and classes.
func (e *Element) Append(tag string, classes ...string) *Element {
	child := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	e.n.AppendChild(child)
	el := &Element{n: child}
	for _, c := range classes {
		el.AddClass(c)
	}
	return el
}

// AppendText adds a text node; it is escaped on render.
func (e *Element) AppendText(s string) {
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(s string) {
	e.Clear()
	e.AppendText(s)
}

// Text concatenates every descendant text node.
func (e *Element) Text() string {
	var b strings.Builder
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{n: c})
		}
	}
	return out
}

// FindByClass searches the subtree, including e itself.
func (e *Element) FindByClass(class string) []*Element {
	var out []*Element
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			el := &Element{n: n}
			if el.HasClass(class) {
				out = append(out, el)
			}
		}
		return true
	})
	return out
}

// FindByTag searches the subtree for elements with the tag.
func (e *Element) FindByTag(tag string) []*Element {
	var out []*Element
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, &Element{n: n})
		}
		return true
	})
	return out
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other.n; n != nil; n = n.Parent {
		if n == e.n {
			return true
		}
	}
	return false
}

// Render writes the element and its subtree.
func (e *Element) Render(w io.Writer) error {
	return html.Render(w, e.n)
}

// HTML renders the element to a string.
func (e *Element) HTML() (string, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
