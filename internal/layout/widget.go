package layout

import (
	"github.com/gompdf/livepage/internal/parser/html"
)

// WidgetBox is a rendered page break. It is a replaced element: it has no
// content of its own and a fixed height equal to the break overhead.
type WidgetBox struct {
	Node *html.Node
	// Pos is the document position the break is anchored at.
	Pos int
	// Inline is set when the widget splits the text of a block.
	Inline bool
	// Page is the 1-based number of the page that begins below the widget.
	Page int

	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b *WidgetBox) GetX() float64       { return b.X }
func (b *WidgetBox) GetY() float64       { return b.Y }
func (b *WidgetBox) GetWidth() float64   { return b.Width }
func (b *WidgetBox) GetHeight() float64  { return b.Height }
func (b *WidgetBox) GetNode() *html.Node { return b.Node }
