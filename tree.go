package z64bank

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Element is one node of a bank's text form: a named tag with ordered
// attributes and ordered children. The text schema is a direct projection
// of the binary layout, so child order is meaningful and preserved.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// Attr is a single name="value" attribute.
type Attr struct {
	Name  string
	Value string
}

// NewElement returns an element with the given tag name.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// SetAttr appends an attribute, or replaces it if one with the same name is
// already present.
func (el *Element) SetAttr(name, value string) {
	for i := range el.Attrs {
		if el.Attrs[i].Name == name {
			el.Attrs[i].Value = value
			return
		}
	}
	el.Attrs = append(el.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the value of the named attribute.
func (el *Element) Attr(name string) (string, bool) {
	for _, a := range el.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Add appends child elements.
func (el *Element) Add(children ...*Element) {
	el.Children = append(el.Children, children...)
}

// Child returns the first child with the given tag name, or nil.
func (el *Element) Child(name string) *Element {
	for _, c := range el.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all children with the given tag name, in order.
func (el *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range el.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// MarshalTree serializes a tree as indented XML. Output is deterministic:
// the same tree always yields the same bytes.
func MarshalTree(root *Element) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeElement(enc, root); err != nil {
		return nil, fmt.Errorf("marshal text tree: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("marshal text tree: %w", err)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeElement(enc *xml.Encoder, el *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: el.Name}}
	for _, a := range el.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range el.Children {
		if err := encodeElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// UnmarshalTree parses XML into a tree. Comments, processing instructions,
// and text content are skipped; only elements and their attributes carry
// meaning in the bank schema.
func UnmarshalTree(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse text tree: %v: %w", err, ErrSchemaMismatch)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := NewElement(t.Name.Local)
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: %w", ErrSchemaMismatch)
				}
				root = el
			} else {
				stack[len(stack)-1].Add(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element: %w", ErrSchemaMismatch)
	}
	return root, nil
}
