package document

import (
	"bytes"
	"sort"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BreakClass is the class attribute given to rendered break widgets.
const BreakClass = "page-break"

// HTML serializes the document. Break widgets are rendered at the given
// positions: a <div> between blocks, or an inline <span> inside a block.
func (d *Document) HTML(breaks []int) string {
	widgets := append([]int(nil), breaks...)
	sort.Ints(widgets)

	root := &html.Node{Type: html.DocumentNode}
	var list *html.Node
	next := 0

	for i, blk := range d.blocks {
		start := d.starts[i]
		for next < len(widgets) && widgets[next] <= start {
			root.AppendChild(widgetNode("div", widgets[next]))
			list = nil
			next++
		}

		el := &html.Node{Type: html.ElementNode, Data: blk.Tag(), DataAtom: atom.Lookup([]byte(blk.Tag()))}
		runes := []rune(blk.Text)
		cs := start + 1
		written := 0
		for next < len(widgets) && widgets[next] <= cs+len(runes) {
			at := widgets[next] - cs
			if at > written {
				el.AppendChild(&html.Node{Type: html.TextNode, Data: string(runes[written:at])})
				written = at
			}
			el.AppendChild(widgetNode("span", widgets[next]))
			next++
		}
		if written < len(runes) {
			el.AppendChild(&html.Node{Type: html.TextNode, Data: string(runes[written:])})
		}

		if blk.Kind != KindListItem {
			root.AppendChild(el)
			list = nil
			continue
		}
		tag := "ul"
		if blk.Ordered {
			tag = "ol"
		}
		if list == nil || list.Data != tag {
			list = &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
			root.AppendChild(list)
		}
		list.AppendChild(el)
	}
	for ; next < len(widgets); next++ {
		root.AppendChild(widgetNode("div", widgets[next]))
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		// rendering an in-memory tree into a buffer cannot fail
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func widgetNode(tag string, pos int) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr: []html.Attribute{
			{Key: "class", Val: BreakClass},
			{Key: "contenteditable", Val: "false"},
			{Key: "data-pos", Val: strconv.Itoa(pos)},
		},
	}
}
