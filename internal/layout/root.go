package layout

import (
	"sort"

	"github.com/gompdf/livepage/internal/pagination"
)

// Root is a laid out document. It satisfies pagination.Layout and is only
// valid for the document and break set it was computed from.
type Root struct {
	Geometry pagination.Geometry
	// Blocks are the top level blocks and list containers in flow order.
	Blocks  []*BlockBox
	Widgets []*WidgetBox

	rows          []Box
	widgets       map[int]*WidgetBox
	contentBottom float64
	height        float64
}

var _ pagination.Layout = (*Root)(nil)

func (r *Root) addWidget(w *WidgetBox) {
	r.Widgets = append(r.Widgets, w)
	r.widgets[w.Pos] = w
	r.rows = append(r.rows, w)
}

// Height is the total height of the view including the top and bottom page
// margins.
func (r *Root) Height() float64 {
	return r.height
}

// Lines returns every line in flow order.
func (r *Root) Lines() []*LineBox {
	var out []*LineBox
	for _, row := range r.rows {
		if lb, ok := row.(*LineBox); ok {
			out = append(out, lb)
		}
	}
	return out
}

// PositionAt hit tests a view coordinate. Inside a line it returns the
// nearest character boundary, inside a widget the widget's position, and in
// the space between two rows the position at the start of the lower one.
// Points above the first row or below the last one have no position.
func (r *Root) PositionAt(x, y float64) (int, bool) {
	if len(r.rows) == 0 {
		return 0, false
	}
	i := sort.Search(len(r.rows), func(i int) bool {
		row := r.rows[i]
		return row.GetY()+row.GetHeight() > y
	})
	if i == len(r.rows) {
		return 0, false
	}
	row := r.rows[i]
	if y < row.GetY() && i == 0 {
		return 0, false
	}
	inside := y >= row.GetY()
	switch b := row.(type) {
	case *WidgetBox:
		return b.Pos, true
	case *LineBox:
		if inside {
			return b.PositionAt(x), true
		}
		return b.Start, true
	}
	return 0, false
}

// MarkerOffset returns the top of the break widget anchored at pos.
func (r *Root) MarkerOffset(pos int) (float64, bool) {
	w, ok := r.widgets[pos]
	if !ok {
		return 0, false
	}
	return w.Y, true
}

// Widget returns the break widget anchored at pos.
func (r *Root) Widget(pos int) (*WidgetBox, bool) {
	w, ok := r.widgets[pos]
	return w, ok
}
