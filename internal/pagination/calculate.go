package pagination

import (
	"log/slog"
)

// Layout is a measurement of the rendered view. It is only valid for the
// frame it was taken in and must not be kept across document changes.
type Layout interface {
	// Height is the total rendered height of the view.
	Height() float64
	// PositionAt maps a view coordinate to the nearest document insertion
	// point. ok is false when there is no content at that location.
	PositionAt(x, y float64) (pos int, ok bool)
	// MarkerOffset returns the rendered top of the break marker at pos.
	MarkerOffset(pos int) (y float64, ok bool)
}

// Candidate is a proposed break together with the vertical offset that
// produced it.
type Candidate struct {
	Pos    int
	Offset float64
}

// Calculate derives break candidates from a measured layout. It walks the
// slots where page content areas end and hit tests each of them; slots that
// resolve to no position are skipped. At most MaxPages-1 breaks are returned.
func Calculate(g Geometry, l Layout, log *slog.Logger) []Candidate {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if g.ContentHeight <= 0 {
		log.Warn("content height is not positive, relying on page cap",
			"content_height", g.ContentHeight, "max_pages", g.MaxPages)
	}

	height := l.Height()
	if height < g.ContentHeight {
		return nil
	}

	stride := g.Stride()
	if stride <= 0 {
		log.Warn("break stride is not positive, skipping pagination",
			"stride", stride, "content_height", g.ContentHeight, "overhead", g.BreakOverhead())
		return nil
	}

	maxBreaks := g.MaxPages - 1
	if maxBreaks < 0 {
		maxBreaks = 0
	}

	x := g.Margin + g.Inset
	last := -1
	var out []Candidate
	for y := g.FirstBreak(); y < height; y += stride {
		if len(out) >= maxBreaks {
			log.Debug("page cap reached", "max_pages", g.MaxPages, "offset", y, "height", height)
			break
		}
		pos, ok := l.PositionAt(x, y)
		if !ok || pos <= last {
			continue
		}
		out = append(out, Candidate{Pos: pos, Offset: y})
		last = pos
	}
	return out
}
