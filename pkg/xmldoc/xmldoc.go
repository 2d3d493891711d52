// Package xmldoc builds small XML documents in memory and writes them once.
//
// Documents are mutable trees of [Element]s. Children keep insertion order.
// [Document.Encode] writes the XML declaration, an optional xml-stylesheet
// processing instruction on the second line, then the tree indented with
// tabs. Free text added with [Element.AppendCDATA] is written as CDATA so
// markup in tooltips survives unescaped.
package xmldoc

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Element is one XML element with either text or child elements.
type Element struct {
	Name     string
	Text     string
	CDATA    bool
	Children []*Element
}

// NewElement creates an empty element.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// Append adds an empty child element and returns it.
func (e *Element) Append(name string) *Element {
	child := NewElement(name)
	e.Children = append(e.Children, child)
	return child
}

// AppendText adds a child holding escaped text.
func (e *Element) AppendText(name, text string) *Element {
	child := e.Append(name)
	child.Text = text
	return child
}

// AppendCDATA adds a child holding text written as a CDATA section.
func (e *Element) AppendCDATA(name, text string) *Element {
	child := e.AppendText(name, text)
	child.CDATA = true
	return child
}

// Find returns the first direct child with the given name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns the direct children with the given name.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of child names, returning nil if any link is missing.
func (e *Element) Path(names ...string) *Element {
	cur := e
	for _, n := range names {
		if cur = cur.Find(n); cur == nil {
			return nil
		}
	}
	return cur
}

// Document is an XML document with a single root element.
type Document struct {
	Root *Element
}

// New creates a document with an empty root element.
func New(root string) *Document {
	return &Document{Root: NewElement(root)}
}

// Encode writes the document. A non-empty stylesheet adds an
// xml-stylesheet processing instruction as the second line.
func (d *Document) Encode(w io.Writer, stylesheet string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if stylesheet != "" {
		bw.WriteString(`<?xml-stylesheet type="text/xsl" href="`)
		xml.EscapeText(bw, []byte(stylesheet))
		bw.WriteString(`"?>` + "\n")
	}
	if d.Root != nil {
		if err := writeElement(bw, d.Root, 0); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save encodes the document to path, creating parent directories.
func (d *Document) Save(path, stylesheet string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf, stylesheet); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func writeElement(w *bufio.Writer, e *Element, depth int) error {
	if e.Name == "" {
		return fmt.Errorf("xmldoc: element without a name")
	}
	indent := strings.Repeat("\t", depth)
	w.WriteString(indent + "<" + e.Name)

	switch {
	case len(e.Children) > 0:
		w.WriteString(">\n")
		for _, c := range e.Children {
			if err := writeElement(w, c, depth+1); err != nil {
				return err
			}
		}
		w.WriteString(indent + "</" + e.Name + ">\n")
	case e.Text != "" && e.CDATA:
		w.WriteString(">")
		writeCDATA(w, e.Text)
		w.WriteString("</" + e.Name + ">\n")
	case e.Text != "":
		w.WriteString(">")
		if err := xml.EscapeText(w, []byte(e.Text)); err != nil {
			return err
		}
		w.WriteString("</" + e.Name + ">\n")
	default:
		w.WriteString("/>\n")
	}
	return nil
}

// writeCDATA splits any "]]>" across two sections. Characters XML cannot
// carry become U+FFFD.
func writeCDATA(w *bufio.Writer, text string) {
	text = strings.Map(xmlChar, strings.ToValidUTF8(text, "\uFFFD"))
	w.WriteString("<![CDATA[")
	w.WriteString(strings.ReplaceAll(text, "]]>", "]]]]><![CDATA[>"))
	w.WriteString("]]>")
}

// xmlChar maps runes outside the XML Char production to U+FFFD.
func xmlChar(r rune) rune {
	switch {
	case r == '\t', r == '\n', r == '\r',
		r >= 0x20 && r <= 0xD7FF,
		r >= 0xE000 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0x10FFFF:
		return r
	}
	return '\uFFFD'
}

// Decode reads a document written by Encode. Processing instructions are
// skipped; whitespace-only text between elements is dropped.
func Decode(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	doc := &Document{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := NewElement(t.Name.Local)
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("xmldoc: multiple root elements")
				}
				doc.Root = e
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 || strings.TrimSpace(string(t)) == "" {
				continue
			}
			top := stack[len(stack)-1]
			top.Text += string(t)
		}
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("xmldoc: no root element")
	}
	return doc, nil
}

// Load decodes the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Stylesheet reads the href of the xml-stylesheet instruction from an
// encoded document, or "" if there is none.
func Stylesheet(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target != "xml-stylesheet" {
				continue
			}
			_, rest, ok := strings.Cut(string(t.Inst), `href="`)
			if !ok {
				return "", nil
			}
			href, _, _ := strings.Cut(rest, `"`)
			return href, nil
		case xml.StartElement:
			return "", nil
		}
	}
}
