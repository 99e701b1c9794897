package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/pagination"
	"github.com/gompdf/livepage/internal/parser/css"
	"github.com/gompdf/livepage/internal/parser/html"
	"github.com/gompdf/livepage/internal/style"
)

// ErrBlockMismatch is returned when the rendered markup does not contain one
// element per document block.
var ErrBlockMismatch = errors.New("layout: markup does not match document blocks")

// Options represents options for the layout engine
type Options struct {
	Geometry pagination.Geometry
	// Stylesheet is an optional author stylesheet applied over the editor
	// stylesheet.
	Stylesheet *css.Stylesheet
	Measurer   *Measurer
	Logger     *slog.Logger
}

// Engine lays out documents the way the editor view renders them: one page
// wide column of blocks with break widgets drawn between pages.
type Engine struct {
	options Options
	styles  *style.StyleEngine
	measure *Measurer
	log     *slog.Logger
}

// NewEngine creates a new layout engine
func NewEngine(options Options) *Engine {
	e := &Engine{
		options: options,
		styles:  style.NewStyleEngine(),
		measure: options.Measurer,
		log:     options.Logger,
	}
	if options.Stylesheet != nil {
		e.styles.AddStylesheet(options.Stylesheet)
	}
	if e.measure == nil {
		e.measure = DefaultMeasurer()
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e
}

// Geometry returns the page geometry the engine lays out for.
func (e *Engine) Geometry() pagination.Geometry {
	return e.options.Geometry
}

// flow tracks the vertical cursor while blocks are stacked.
type flow struct {
	y       float64
	pending float64 // collapsed margin not yet applied
	index   int     // next document block
}

func (f *flow) advance(margin float64) {
	f.y += max(f.pending, margin)
	f.pending = 0
}

// Layout renders doc with break widgets at breaks and lays out the result.
func (e *Engine) Layout(doc *document.Document, breaks []int) (*Root, error) {
	markup := doc.HTML(breaks)
	parsed, err := html.NewParser().ParseString(markup)
	if err != nil {
		return nil, err
	}
	styles := e.styles.ComputeStyles(parsed)

	g := e.options.Geometry
	root := &Root{
		Geometry: g,
		widgets:  make(map[int]*WidgetBox),
	}
	f := &flow{y: g.Margin}
	body := parsed.Body()
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if err := e.layoutNode(root, n, styles, doc, f, g.Margin, g.ContentWidth(), nil); err != nil {
			return nil, err
		}
	}
	if f.index != doc.BlockCount() {
		return nil, fmt.Errorf("%w: laid out %d of %d blocks", ErrBlockMismatch, f.index, doc.BlockCount())
	}
	root.contentBottom = f.y
	root.height = f.y + f.pending + g.Margin
	for i, w := range root.Widgets {
		w.Page = i + 2
	}
	e.log.Debug("layout complete",
		"blocks", doc.BlockCount(),
		"rows", len(root.rows),
		"widgets", len(root.Widgets),
		"height", root.height)
	return root, nil
}

func (e *Engine) layoutNode(root *Root, n *html.Node, styles map[*html.Node]style.ComputedStyle, doc *document.Document, f *flow, x, width float64, list *BlockBox) error {
	if !n.IsElement() {
		return nil
	}
	g := e.options.Geometry

	if n.HasClass(document.BreakClass) {
		pos, err := widgetPos(n)
		if err != nil {
			return err
		}
		f.advance(0)
		w := &WidgetBox{Node: n, Pos: pos, X: 0, Y: f.y, Width: g.PageWidth, Height: g.BreakOverhead()}
		root.addWidget(w)
		f.y += w.Height
		return nil
	}

	b := NewBlockBox(n, styles[n], -1)
	b.parseBoxModel(width)
	b.X = x + b.MarginLeft
	b.Width = width - b.MarginLeft - b.MarginRight

	if n.IsElement("ul", "ol") {
		f.pending = max(f.pending, b.MarginTop)
		b.Y = f.y + f.pending
		ordinal := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !c.IsElement("li") {
				if err := e.layoutNode(root, c, styles, doc, f, b.ContentX(), b.ContentWidth(), nil); err != nil {
					return err
				}
				continue
			}
			ordinal++
			if err := e.layoutNode(root, c, styles, doc, f, b.ContentX(), b.ContentWidth(), b); err != nil {
				return err
			}
			item := b.Children[len(b.Children)-1]
			item.Marker = "•"
			if n.IsElement("ol") {
				item.Marker = strconv.Itoa(ordinal) + "."
			}
		}
		b.Height = f.y - b.Y
		f.pending = max(f.pending, b.MarginBottom)
		root.Blocks = append(root.Blocks, b)
		return nil
	}

	if f.index >= doc.BlockCount() {
		return fmt.Errorf("%w: extra <%s> element", ErrBlockMismatch, n.Data)
	}
	b.Index = f.index
	f.index++
	f.advance(b.MarginTop)
	b.Y = f.y
	e.layoutBlock(root, b, doc.ContentStart(b.Index))
	f.y = b.Y + b.Height
	f.pending = b.MarginBottom

	if list != nil {
		list.Children = append(list.Children, b)
	} else {
		root.Blocks = append(root.Blocks, b)
	}
	return nil
}

// layoutBlock wraps the text of a block into lines, placing inline widgets
// between them. Positions count from contentStart.
func (e *Engine) layoutBlock(root *Root, b *BlockBox, contentStart int) {
	g := e.options.Geometry
	fam, fs := b.Style.Font()
	font := Font{Family: fam, Style: fs, Size: b.Style.FontSize()}
	lineHeight := b.Style.LineHeight()
	width := func(r rune) float64 { return e.measure.RuneWidth(r, font) }

	y := b.Y + b.BorderTop + b.PaddingTop
	x := b.ContentX()
	maxWidth := b.ContentWidth()
	pos := contentStart

	var runs []string
	var widgets []*html.Node
	var text []rune
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.IsElement() && c.HasClass(document.BreakClass) {
			runs = append(runs, string(text))
			widgets = append(widgets, c)
			text = text[:0]
			continue
		}
		text = append(text, []rune(c.Text())...)
	}
	runs = append(runs, string(text))

	for i, run := range runs {
		runes := []rune(run)
		if len(runes) > 0 || len(widgets) == 0 {
			for _, sp := range wrap(runes, maxWidth, width) {
				line := runes[sp.from:sp.to]
				if n := len(line); n > 0 && line[n-1] == '\n' {
					line = line[:n-1]
				}
				offsets := make([]float64, len(line)+1)
				for k, r := range line {
					offsets[k+1] = offsets[k] + width(r)
				}
				lb := &LineBox{
					Block:   b,
					Style:   b.Style,
					Font:    font,
					First:   len(b.Lines) == 0,
					X:       x,
					Y:       y,
					Width:   offsets[len(line)],
					Height:  lineHeight,
					Text:    string(line),
					Start:   pos + sp.from,
					Offsets: offsets,
				}
				b.Lines = append(b.Lines, lb)
				root.rows = append(root.rows, lb)
				y += lineHeight
			}
		}
		pos += len(runes)
		if i < len(widgets) {
			wp, err := widgetPos(widgets[i])
			if err != nil {
				wp = pos
			}
			w := &WidgetBox{Node: widgets[i], Pos: wp, Inline: true, X: 0, Y: y, Width: g.PageWidth, Height: g.BreakOverhead()}
			b.Widgets = append(b.Widgets, w)
			root.addWidget(w)
			y += w.Height
		}
	}
	b.Height = y + b.PaddingBottom + b.BorderBottom - b.Y
}

func widgetPos(n *html.Node) (int, error) {
	v, _ := n.AttrValue("data-pos")
	pos, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("layout: break widget without position: %w", err)
	}
	return pos, nil
}
