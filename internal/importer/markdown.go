package importer

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gompdf/livepage/internal/document"
)

// MarkdownImporter parses CommonMark with goldmark.
type MarkdownImporter struct{}

func (MarkdownImporter) Import(r io.Reader) ([]document.Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []document.Block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = appendMarkdown(blocks, n, src, document.KindParagraph)
	}
	return blocks, nil
}

func appendMarkdown(blocks []document.Block, n ast.Node, src []byte, kind document.Kind) []document.Block {
	switch node := n.(type) {
	case *ast.Heading:
		return append(blocks, document.Block{Kind: document.KindHeading, Level: node.Level, Text: inlineText(n, src)})
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return append(blocks, document.Block{Kind: document.KindCode, Text: codeText(n, src)})
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			blocks = appendMarkdown(blocks, c, src, document.KindBlockquote)
		}
		return blocks
	case *ast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			t := inlineText(item, src)
			if t == "" {
				continue
			}
			blocks = append(blocks, document.Block{Kind: document.KindListItem, Ordered: node.IsOrdered(), Text: t})
		}
		return blocks
	case *ast.Paragraph, *ast.TextBlock:
		if t := inlineText(n, src); t != "" {
			return append(blocks, document.Block{Kind: kind, Text: t})
		}
	}
	return blocks
}

// inlineText flattens every inline descendant of n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
			if c.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
		}
	}
	walk(n)
	return collapse(buf.String())
}

func codeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}
