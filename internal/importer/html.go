package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gompdf/livepage/internal/document"
)

const blockSelector = "h1,h2,h3,h4,h5,h6,p,li,pre,blockquote"

// HTMLImporter keeps the block level elements of an HTML page. Break widgets
// from a previous export are dropped.
type HTMLImporter struct{}

func (HTMLImporter) Import(r io.Reader) ([]document.Block, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("." + document.BreakClass + ",script,style,nav,header,footer").Remove()

	var blocks []document.Block
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// the outermost block owns the text of anything nested in it
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		tag := goquery.NodeName(s)
		b := document.Block{Kind: document.KindParagraph, Text: collapse(s.Text())}
		switch tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.Kind = document.KindHeading
			b.Level = int(tag[1] - '0')
		case "blockquote":
			b.Kind = document.KindBlockquote
		case "pre":
			b.Kind = document.KindCode
			b.Text = strings.Trim(s.Text(), "\n")
		case "li":
			b.Kind = document.KindListItem
			b.Ordered = s.Parent().Is("ol")
		}
		if b.Text == "" && b.Kind != document.KindParagraph {
			return
		}
		blocks = append(blocks, b)
	})
	return blocks, nil
}
