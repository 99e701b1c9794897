package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gompdf/livepage/internal/loop"
	"github.com/gompdf/livepage/internal/pagination"
)

// Options represents configuration options for an editing session. Lengths
// are CSS pixels (96 per inch).
type Options struct {
	// Page dimensions
	PageWidth  float64
	PageHeight float64
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Margin is applied on all four sides of every page.
	Margin float64
	// Gutter is the gap drawn between two pages on screen.
	Gutter float64
	// ContentHeight overrides PageHeight-2*Margin when positive. It
	// calibrates the usable page height independently of the page size.
	ContentHeight float64
	// MaxPages bounds the number of pages a single pass may produce.
	MaxPages int
	// Inset is how far right of the margin break slots are hit tested.
	Inset float64

	// Timing of the pagination loop
	Debounce      time.Duration
	InitialDelay  time.Duration
	FrameInterval time.Duration
	// StaleSlack is how far, in pixels, a candidate may sit below the
	// displayed break it would replace before it is treated as stale.
	StaleSlack float64

	Debug  bool
	Logger *slog.Logger

	// Resource paths searched for stylesheets and documents
	ResourcePaths []string
	// Stylesheet is CSS applied over the editor stylesheet.
	Stylesheet string
	// StylesheetURLs are loaded and applied after Stylesheet.
	StylesheetURLs []string

	// Document metadata used for PDF export
	Title       string
	Author      string
	Subject     string
	Keywords    string
	PageNumbers bool

	// StorePath enables autosave to a SQLite database. Name is the key the
	// document is saved under.
	StorePath string
	Name      string
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// MaxSettlePasses bounds Session.Settle.
const MaxSettlePasses = 10

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// US Letter, one inch margins
		PageWidth:       pagination.PageSizeLetter.Width,
		PageHeight:      pagination.PageSizeLetter.Height,
		PageOrientation: PageOrientationPortrait,
		Margin:          pagination.DefaultMargin,
		Gutter:          pagination.DefaultGutter,
		MaxPages:        pagination.DefaultMaxPages,

		Debounce:      pagination.DefaultDebounce,
		InitialDelay:  pagination.DefaultInitialDelay,
		FrameInterval: loop.DefaultFrameInterval,
		StaleSlack:    pagination.DefaultStaleSlack,

		Name: "default",
	}
}

// Geometry derives the page geometry, honoring the orientation.
func (o Options) Geometry() pagination.Geometry {
	width, height := o.PageWidth, o.PageHeight
	switch o.PageOrientation {
	case PageOrientationLandscape:
		if width < height {
			width, height = height, width
		}
	case PageOrientationPortrait, "":
		if width > height {
			width, height = height, width
		}
	}
	g := pagination.NewGeometry(pagination.PageSize{Width: width, Height: height}, o.Margin, o.Gutter)
	if o.ContentHeight > 0 {
		g.ContentHeight = o.ContentHeight
	}
	if o.MaxPages > 0 {
		g.MaxPages = o.MaxPages
	}
	if o.Inset > 0 {
		g.Inset = o.Inset
	}
	return g
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargin sets the page margin
func WithMargin(margin float64) Option {
	return func(o *Options) {
		o.Margin = margin
	}
}

// WithGutter sets the on-screen gap between pages
func WithGutter(gutter float64) Option {
	return func(o *Options) {
		o.Gutter = gutter
	}
}

// WithContentHeight calibrates the usable page height
func WithContentHeight(height float64) Option {
	return func(o *Options) {
		o.ContentHeight = height
	}
}

// WithMaxPages bounds the number of pages
func WithMaxPages(n int) Option {
	return func(o *Options) {
		o.MaxPages = n
	}
}

// WithInset sets the horizontal hit test inset
func WithInset(inset float64) Option {
	return func(o *Options) {
		o.Inset = inset
	}
}

// WithDebounce sets how long editing must pause before a pass runs
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.Debounce = d
	}
}

// WithInitialDelay sets the delay before the first pass
func WithInitialDelay(d time.Duration) Option {
	return func(o *Options) {
		o.InitialDelay = d
	}
}

// WithFrameInterval sets the frame tick commits wait for
func WithFrameInterval(d time.Duration) Option {
	return func(o *Options) {
		o.FrameInterval = d
	}
}

// WithStaleSlack sets how far below a displayed break a candidate may sit
// before it is treated as stale
func WithStaleSlack(slack float64) Option {
	return func(o *Options) {
		o.StaleSlack = slack
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithStylesheet sets CSS applied over the editor stylesheet
func WithStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.Stylesheet = stylesheet
	}
}

// WithStylesheetURL adds a stylesheet to load
func WithStylesheetURL(url string) Option {
	return func(o *Options) {
		o.StylesheetURLs = append(o.StylesheetURLs, url)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithPageNumbers prints page numbers on exported pages
func WithPageNumbers(on bool) Option {
	return func(o *Options) {
		o.PageNumbers = on
	}
}

// WithAutosave saves the document to the database at path under name
func WithAutosave(path, name string) Option {
	return func(o *Options) {
		o.StorePath = path
		if name != "" {
			o.Name = name
		}
	}
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(pagination.PageSizeA4.Width, pagination.PageSizeA4.Height)
}

// WithPageSizeA5 sets the page size to A5
func WithPageSizeA5() Option {
	return WithPageSize(pagination.PageSizeA5.Width, pagination.PageSizeA5.Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(pagination.PageSizeLetter.Width, pagination.PageSizeLetter.Height)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(pagination.PageSizeLegal.Width, pagination.PageSizeLegal.Height)
}

// PageSizeByName resolves letter, legal, a4 and a5, case-insensitively.
func PageSizeByName(name string) (pagination.PageSize, bool) {
	for _, s := range []pagination.PageSize{
		pagination.PageSizeLetter, pagination.PageSizeLegal, pagination.PageSizeA4, pagination.PageSizeA5,
	} {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return pagination.PageSize{}, false
}
