package layout

// Page is one printed page cut out of the view. Line coordinates stay in view
// space; subtract Top to get page coordinates.
type Page struct {
	Number int
	Top    float64
	Width  float64
	Height float64
	Lines  []*LineBox
}

// Pages distributes the laid out lines onto pages. Page 1 starts at the top
// of the view and every break widget starts a new page whose content area
// begins right below the widget.
func (r *Root) Pages() []*Page {
	g := r.Geometry
	pages := []*Page{{Number: 1, Width: g.PageWidth, Height: g.PageHeight}}
	for i, w := range r.Widgets {
		pages = append(pages, &Page{
			Number: i + 2,
			Top:    w.Y + w.Height - g.Margin,
			Width:  g.PageWidth,
			Height: g.PageHeight,
		})
	}

	current := 0
	for _, lb := range r.Lines() {
		for current+1 < len(pages) && lb.Y >= r.Widgets[current].Y+r.Widgets[current].Height {
			current++
		}
		pages[current].Lines = append(pages[current].Lines, lb)
	}
	return pages
}
