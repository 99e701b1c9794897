package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/gompdf/livepage/internal/document"
)

// DOCXImporter reads Word documents. Paragraph styles decide the block kind.
type DOCXImporter struct{}

func (DOCXImporter) Import(r io.Reader) ([]document.Block, error) {
	// go-docx needs random access to the zip archive
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []document.Block
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		b := docxBlock(para)
		if b.Kind == document.KindCode {
			b.Text = strings.Trim(docxText(para), "\n")
		} else {
			b.Text = collapse(docxText(para))
		}
		if b.Text == "" {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func docxBlock(para *docx.Paragraph) document.Block {
	props := para.Properties
	if props == nil {
		return document.Block{Kind: document.KindParagraph}
	}
	if props.NumProperties != nil {
		return document.Block{Kind: document.KindListItem}
	}
	if props.Style == nil {
		return document.Block{Kind: document.KindParagraph}
	}
	style := strings.ToLower(strings.ReplaceAll(props.Style.Val, " ", ""))
	switch {
	case strings.HasPrefix(style, "heading") && len(style) == len("heading")+1:
		level := int(style[len(style)-1] - '0')
		if level >= 1 && level <= 6 {
			return document.Block{Kind: document.KindHeading, Level: level}
		}
	case style == "title":
		return document.Block{Kind: document.KindHeading, Level: 1}
	case style == "quote" || style == "intensequote":
		return document.Block{Kind: document.KindBlockquote}
	case strings.HasPrefix(style, "listparagraph"):
		return document.Block{Kind: document.KindListItem}
	case style == "code" || style == "htmlpreformatted":
		return document.Block{Kind: document.KindCode}
	}
	return document.Block{Kind: document.KindParagraph}
}

func docxText(para *docx.Paragraph) string {
	var buf strings.Builder
	writeRun := func(run *docx.Run) {
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			case *docx.BarterRabbet:
				buf.WriteByte('\n')
			}
		}
	}
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(c)
		case *docx.Hyperlink:
			writeRun(&c.Run)
		}
	}
	return buf.String()
}
