package layout

import (
	"github.com/gompdf/livepage/internal/parser/html"
)

// Box is a rectangle in the vertical flow of the view, in view coordinates.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	GetNode() *html.Node
}

// Font selects a core PDF font at a pixel size.
type Font struct {
	Family string
	Style  string
	Size   float64
}
