package bookio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// linkTextTags may appear inside a link title. Any other tag ends a link
// whose closing </a> is missing.
var linkTextTags = map[string]bool{
	"abbr": true, "b": true, "big": true, "br": true, "cite": true,
	"code": true, "em": true, "font": true, "i": true, "img": true,
	"mark": true, "nobr": true, "q": true, "s": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "tt": true,
	"u": true, "wbr": true,
}

const (
	docTag  = "#document"
	textTag = "#text"
	noNode  = -1
)

// Node is an element or text node of a parsed document. Nodes refer to each
// other by their index in the owning Tree.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Parent   int
	Children []int
}

// Attr returns the value of the attribute named key, which must be lowercase.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// IsElement reports whether n is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n.Tag == tag
}

// Tree is a parsed document. Index 0 is the document root.
type Tree struct {
	nodes []Node
}

// ParseTree parses r leniently, the way browsers do, and returns the
// resulting node tree. Tag and attribute names are lowercase. A link left
// open ends at the next tag that cannot be part of its title.
func ParseTree(r io.Reader) (*Tree, error) {
	src, err := closeOpenLinks(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc, err := html.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	t := &Tree{}
	t.add(doc, noNode)

	return t, nil
}

// closeOpenLinks copies the markup in r unchanged, except that an <a> still
// open when a block tag such as <dd>, <dt> or <h3> starts is closed first.
// Otherwise the parser repeats the link around the text that follows it.
func closeOpenLinks(r io.Reader) (io.Reader, error) {
	var buf bytes.Buffer

	z := html.NewTokenizer(r)
	open := false

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}

			return &buf, nil
		}

		raw := bytes.Clone(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if open && (tag == "a" || !linkTextTags[tag]) {
				buf.WriteString("</a>")
				open = false
			}
			if tag == "a" && tt == html.StartTagToken {
				open = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "a":
				open = false
			case open && !linkTextTags[tag]:
				buf.WriteString("</a>")
				open = false
			}
		}

		buf.Write(raw)
	}
}

func (t *Tree) add(n *html.Node, parent int) {
	var node Node

	switch n.Type {
	case html.DocumentNode:
		node.Tag = docTag
	case html.ElementNode:
		node.Tag = n.Data
		node.Attrs = make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			node.Attrs[strings.ToLower(a.Key)] = a.Val
		}
	case html.TextNode:
		node.Tag = textTag
		node.Text = n.Data
	default:
		return
	}

	node.Parent = parent
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node)

	if parent != noNode {
		t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.add(c, idx)
	}
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node {
	return &t.nodes[i]
}

// Elements returns the indexes of all elements with the given tag, in
// document order.
func (t *Tree) Elements(tag string) []int {
	var out []int
	for i := range t.nodes {
		if t.nodes[i].Tag == tag {
			out = append(out, i)
		}
	}

	return out
}

// Text returns the concatenated text beneath node i, trimmed.
func (t *Tree) Text(i int) string {
	var sb strings.Builder
	t.text(i, &sb)

	return strings.TrimSpace(sb.String())
}

func (t *Tree) text(i int, sb *strings.Builder) {
	n := &t.nodes[i]
	if n.Tag == textTag {
		sb.WriteString(n.Text)
		return
	}

	for _, c := range n.Children {
		t.text(c, sb)
	}
}

// Ancestor returns the nearest ancestor of i with the given tag. The search
// gives up at any ancestor whose tag is in stop.
func (t *Tree) Ancestor(i int, tag string, stop ...string) (int, bool) {
	for p := t.nodes[i].Parent; p != noNode; p = t.nodes[p].Parent {
		pt := t.nodes[p].Tag
		if pt == tag {
			return p, true
		}

		for _, s := range stop {
			if pt == s {
				return noNode, false
			}
		}
	}

	return noNode, false
}

// PrevElement returns the nearest preceding sibling of i that is an element.
func (t *Tree) PrevElement(i int) (int, bool) {
	return t.siblingElement(i, -1)
}

// NextElement returns the nearest following sibling of i that is an element.
func (t *Tree) NextElement(i int) (int, bool) {
	return t.siblingElement(i, 1)
}

func (t *Tree) siblingElement(i, step int) (int, bool) {
	p := t.nodes[i].Parent
	if p == noNode {
		return noNode, false
	}

	siblings := t.nodes[p].Children
	pos := -1
	for j, c := range siblings {
		if c == i {
			pos = j
			break
		}
	}

	for j := pos + step; j >= 0 && j < len(siblings); j += step {
		if t.nodes[siblings[j]].Tag != textTag {
			return siblings[j], true
		}
	}

	return noNode, false
}

// Find returns the first descendant of i, depth first, with the given tag.
func (t *Tree) Find(i int, tag string) (int, bool) {
	for _, c := range t.nodes[i].Children {
		if t.nodes[c].Tag == tag {
			return c, true
		}

		if f, ok := t.Find(c, tag); ok {
			return f, true
		}
	}

	return noNode, false
}
