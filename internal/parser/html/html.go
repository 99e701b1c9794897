package html

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parser parses editor markup into a tree that keeps parent links.
type Parser struct{}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{Root: convertNode(node, nil)}, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   n.Attr,
		Parent: parent,
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child := convertNode(c, node)
		if node.LastChild == nil {
			node.FirstChild = child
		} else {
			node.LastChild.NextSibling = child
			child.PrevSibling = node.LastChild
		}
		node.LastChild = child
	}
	return node
}

// Body returns the <body> element, or the root when there is none.
func (d *Document) Body() *Node {
	var find func(n *Node) *Node
	find = func(n *Node) *Node {
		if n.IsElement("body") {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if b := find(c); b != nil {
				return b
			}
		}
		return nil
	}
	if b := find(d.Root); b != nil {
		return b
	}
	return d.Root
}

// IsElement reports whether n is an element with one of the given tags. With
// no tags it reports whether n is an element at all.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(n.Data, t) {
			return true
		}
	}
	return false
}

// AttrValue returns the value of the named attribute.
func (n *Node) AttrValue(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether the class attribute contains class.
func (n *Node) HasClass(class string) bool {
	v, ok := n.AttrValue("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the concatenated text of n and its descendants.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
