package layout

import (
	"github.com/gompdf/livepage/internal/parser/html"
	"github.com/gompdf/livepage/internal/style"
)

// BlockBox represents a laid out document block, or a list container
// holding list item blocks.
type BlockBox struct {
	Node  *html.Node
	Style style.ComputedStyle
	// Index is the document block index, or -1 for list containers.
	Index int
	// Marker is the bullet or number drawn before a list item.
	Marker string

	X             float64
	Y             float64
	Width         float64
	Height        float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	PaddingTop    float64
	PaddingRight  float64
	PaddingBottom float64
	PaddingLeft   float64
	BorderTop     float64
	BorderRight   float64
	BorderBottom  float64
	BorderLeft    float64

	Lines    []*LineBox
	Widgets  []*WidgetBox
	Children []*BlockBox
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle, index int) *BlockBox {
	return &BlockBox{
		Node:  node,
		Style: computedStyle,
		Index: index,
	}
}

// parseBoxModel resolves margin, padding and border widths against the
// containing width.
func (b *BlockBox) parseBoxModel(containerWidth float64) {
	st := b.Style
	b.MarginTop = st.Length("margin-top", containerWidth, 0)
	b.MarginRight = st.Length("margin-right", containerWidth, 0)
	b.MarginBottom = st.Length("margin-bottom", containerWidth, 0)
	b.MarginLeft = st.Length("margin-left", containerWidth, 0)

	b.PaddingTop = st.Length("padding-top", containerWidth, 0)
	b.PaddingRight = st.Length("padding-right", containerWidth, 0)
	b.PaddingBottom = st.Length("padding-bottom", containerWidth, 0)
	b.PaddingLeft = st.Length("padding-left", containerWidth, 0)

	b.BorderTop = st.Length("border-top-width", containerWidth, 0)
	b.BorderRight = st.Length("border-right-width", containerWidth, 0)
	b.BorderBottom = st.Length("border-bottom-width", containerWidth, 0)
	b.BorderLeft = st.Length("border-left-width", containerWidth, 0)
}

// ContentX is the left edge of the content box.
func (b *BlockBox) ContentX() float64 {
	return b.X + b.BorderLeft + b.PaddingLeft
}

// ContentWidth is the width of the content box.
func (b *BlockBox) ContentWidth() float64 {
	w := b.Width - b.BorderLeft - b.PaddingLeft - b.PaddingRight - b.BorderRight
	if w < 0 {
		return 0
	}
	return w
}

// GetX returns the x position of the border box
func (b *BlockBox) GetX() float64 { return b.X }

// GetY returns the y position of the border box
func (b *BlockBox) GetY() float64 { return b.Y }

// GetWidth returns the width of the border box
func (b *BlockBox) GetWidth() float64 { return b.Width }

// GetHeight returns the height of the border box
func (b *BlockBox) GetHeight() float64 { return b.Height }

// GetNode returns the HTML node associated with this box
func (b *BlockBox) GetNode() *html.Node { return b.Node }

// Tag returns the element name of the block.
func (b *BlockBox) Tag() string {
	if b.Node == nil {
		return ""
	}
	return b.Node.Data
}
