package pagination

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned by Geometry.Validate.
var ErrInvalidGeometry = errors.New("invalid page geometry")

// PageSize represents a standard page size in CSS pixels (96 per inch)
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in CSS pixels
var (
	PageSizeLetter = PageSize{Width: 816, Height: 1056, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 816, Height: 1344, Name: "Legal"}
	PageSizeA4     = PageSize{Width: 793.7, Height: 1122.5, Name: "A4"}
	PageSizeA5     = PageSize{Width: 559.4, Height: 793.7, Name: "A5"}
)

const (
	// DefaultMargin is one inch.
	DefaultMargin = 96
	// DefaultGutter is the gap drawn between two pages on screen.
	DefaultGutter = 20
	// DefaultMaxPages bounds a single pass.
	DefaultMaxPages = 100
	// DefaultInset keeps hit tests clear of the left margin.
	DefaultInset = 4
)

// Geometry describes the printed page and how breaks are drawn on screen.
// It is a value type configured once per session.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	// ContentHeight defaults to PageHeight-2*Margin but can be calibrated
	// independently to compensate for screen/print font differences.
	ContentHeight float64
	Gutter        float64
	MaxPages      int
	// Inset is the horizontal distance from the left margin at which break
	// slots are hit tested.
	Inset float64
}

// NewGeometry derives a geometry from a page size, uniform margin and gutter.
func NewGeometry(size PageSize, margin, gutter float64) Geometry {
	return Geometry{
		PageWidth:     size.Width,
		PageHeight:    size.Height,
		Margin:        margin,
		ContentHeight: size.Height - 2*margin,
		Gutter:        gutter,
		MaxPages:      DefaultMaxPages,
		Inset:         DefaultInset,
	}
}

// DefaultGeometry is US-Letter with one inch margins.
func DefaultGeometry() Geometry {
	return NewGeometry(PageSizeLetter, DefaultMargin, DefaultGutter)
}

// BreakOverhead is the vertical space a rendered break consumes: the bottom
// margin of one page, the gutter, and the top margin of the next.
func (g Geometry) BreakOverhead() float64 {
	return 2*g.Margin + g.Gutter
}

// FirstBreak is the offset from the top of the view at which the first page's
// content area ends.
func (g Geometry) FirstBreak() float64 {
	return g.Margin + g.ContentHeight
}

// Stride is the distance between consecutive break slots.
func (g Geometry) Stride() float64 {
	return g.BreakOverhead() + g.ContentHeight
}

// ContentWidth is the horizontal space available to text.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// Validate checks the geometry invariants.
func (g Geometry) Validate() error {
	if g.PageHeight <= 0 || g.PageWidth <= 0 {
		return fmt.Errorf("%w: page size %.1fx%.1f", ErrInvalidGeometry, g.PageWidth, g.PageHeight)
	}
	if g.Margin < 0 {
		return fmt.Errorf("%w: negative margin %.1f", ErrInvalidGeometry, g.Margin)
	}
	if g.ContentHeight <= 0 {
		return fmt.Errorf("%w: content height %.1f must be positive", ErrInvalidGeometry, g.ContentHeight)
	}
	if g.BreakOverhead() <= 0 {
		return fmt.Errorf("%w: break overhead %.1f must be positive", ErrInvalidGeometry, g.BreakOverhead())
	}
	if g.ContentWidth() <= 0 {
		return fmt.Errorf("%w: margins leave no content width", ErrInvalidGeometry)
	}
	if g.MaxPages < 1 {
		return fmt.Errorf("%w: max pages %d", ErrInvalidGeometry, g.MaxPages)
	}
	return nil
}
