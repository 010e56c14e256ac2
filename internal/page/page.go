// Package page wraps golang.org/x/net/html documents so widgets can find
// their mount points by data-role attribute and write rendered fragments
// back into the tree.
package page

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("page: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render serializes the document back to HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("page: render: %w", err)
	}
	return nil
}

// HTML returns the serialized document.
func (d *Document) HTML() (string, error) {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FindRole returns the first element with data-role=role, or nil when the
// page carries no such mount point.
func (d *Document) FindRole(role string) *Element {
	node := findRole(d.root, role)
	if node == nil {
		return nil
	}
	return &Element{node: node}
}

// Body returns the document body element.
func (d *Document) Body() *Element {
	node := findElement(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if node == nil {
		return nil
	}
	return &Element{node: node}
}

// Element is a node within a Document.
type Element struct {
	node *html.Node
}

func findRole(n *html.Node, role string) *html.Node {
	return findElement(n, func(candidate *html.Node) bool {
		return attr(candidate, "data-role") == role
	})
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// FindRole returns the first descendant with data-role=role, or nil.
func (e *Element) FindRole(role string) *Element {
	for child := e.node.FirstChild; child != nil; child = child.NextSibling {
		if found := findRole(child, role); found != nil {
			return &Element{node: found}
		}
	}
	return nil
}

// FindRoleAll returns every descendant with data-role=role in document order.
func (e *Element) FindRoleAll(role string) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && attr(n, "data-role") == role {
			out = append(out, &Element{node: n})
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := e.node.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return out
}

// CountRole counts descendants with data-role=role.
func (e *Element) CountRole(role string) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && attr(n, "data-role") == role {
			count++
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := e.node.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return count
}

func (e *Element) removeChildren() {
	for e.node.FirstChild != nil {
		e.node.RemoveChild(e.node.FirstChild)
	}
}

// SetHTML replaces the element's children with the parsed fragment.
func (e *Element) SetHTML(fragment string) error {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return fmt.Errorf("page: parse fragment: %w", err)
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	e.removeChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Text returns the element's concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(e.node)
	return b.String()
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	return attr(e.node, name)
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

func (e *Element) classes() []string {
	return strings.Fields(e.Attr("class"))
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends a class if absent.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	classes := append(e.classes(), name)
	e.SetAttr("class", strings.Join(classes, " "))
}

// RemoveClass deletes a class if present.
func (e *Element) RemoveClass(name string) {
	classes := e.classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != name {
			kept = append(kept, c)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass adds or removes a class.
func (e *Element) ToggleClass(name string, on bool) {
	if on {
		e.AddClass(name)
	} else {
		e.RemoveClass(name)
	}
}
