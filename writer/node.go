package writer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XMLHeader starts every XML part.
const XMLHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\r\n"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with entities.
func Escape(s string) string { return escaper.Replace(s) }

// Attr is one attribute. Attributes are written in the order they were set.
type Attr struct {
	Name  string
	Value string
}

// Node is an element in a part under construction. Text and attribute values
// are stored unescaped and escaped once when the tree is flattened.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
	hasText  bool
	raw      string
}

// El creates an element.
func El(name string, children ...*Node) *Node {
	return (&Node{Name: name}).Add(children...)
}

// TextEl creates an element holding character data.
func TextEl(name, text string) *Node {
	return &Node{Name: name, Text: text, hasText: true}
}

// Raw wraps pre-built markup that is copied verbatim.
func Raw(markup string) *Node { return &Node{raw: markup} }

// Set appends an attribute.
func (n *Node) Set(name string, value interface{}) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: formatValue(value)})
	return n
}

// SetIf appends an attribute when cond holds.
func (n *Node) SetIf(cond bool, name string, value interface{}) *Node {
	if cond {
		n.Set(name, value)
	}
	return n
}

// Add appends children, skipping nil ones.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the first descendant (depth first, self included) with the name.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every descendant with the name in document order.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		if x.Name == name {
			out = append(out, x)
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// WriteTo flattens the tree to w.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	n.write(cw)
	return cw.n, cw.err
}

func (n *Node) write(w *countingWriter) {
	if n.raw != "" {
		w.WriteString(n.raw)
		return
	}
	w.WriteString("<")
	w.WriteString(n.Name)
	for _, a := range n.Attrs {
		w.WriteString(" ")
		w.WriteString(a.Name)
		w.WriteString("=\"")
		w.WriteString(Escape(a.Value))
		w.WriteString("\"")
	}
	if len(n.Children) == 0 && !n.hasText {
		w.WriteString("/>")
		return
	}
	w.WriteString(">")
	if n.hasText {
		w.WriteString(Escape(n.Text))
	}
	for _, c := range n.Children {
		c.write(w)
	}
	w.WriteString("</")
	w.WriteString(n.Name)
	w.WriteString(">")
}

// String returns the flattened markup without the XML header.
func (n *Node) String() string {
	var buf bytes.Buffer
	_, _ = n.WriteTo(&buf)
	return buf.String()
}

// Document renders root as a complete part.
func Document(root *Node) []byte {
	var buf bytes.Buffer
	buf.WriteString(XMLHeader)
	_, _ = root.WriteTo(&buf)
	return buf.Bytes()
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	n, err := io.WriteString(c.w, s)
	c.n += int64(n)
	c.err = err
}
