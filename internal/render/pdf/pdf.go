// Package pdf prints laid out documents, one PDF page per visual page of the
// editor view.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"codeberg.org/go-pdf/fpdf"
	pdfreader "github.com/ledongthuc/pdf"

	"github.com/gompdf/livepage/internal/layout"
	"github.com/gompdf/livepage/internal/style"
)

// PxToPt converts CSS pixels to PDF points.
const PxToPt = 72.0 / 96.0

// Renderer handles rendering to PDF
type Renderer struct {
	// RenderBackgrounds controls whether block backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether block borders are painted
	RenderBorders bool
	// DebugDrawBoxes outlines every line box
	DebugDrawBoxes bool

	log *slog.Logger
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// PageNumbers prints "n / total" centered in the bottom margin.
	PageNumbers bool
}

// NewRenderer creates a new PDF renderer
func NewRenderer(log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		RenderBackgrounds: true,
		RenderBorders:     true,
		log:               log.With("component", "pdf"),
	}
}

// Render writes root as a PDF document to w.
func (r *Renderer) Render(root *layout.Root, w io.Writer, options RenderOptions) error {
	g := root.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.PageWidth * PxToPt, Ht: g.PageHeight * PxToPt},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pages := root.Pages()
	for _, page := range pages {
		pdf.AddPage()
		for _, lb := range page.Lines {
			r.renderLine(pdf, tr, lb, page.Top)
		}
		if options.PageNumbers {
			r.renderPageNumber(pdf, root, page.Number, len(pages))
		}
	}
	r.log.Debug("rendered pdf", "pages", len(pages))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// RenderFile renders root to outputPath, creating its directory if needed.
func (r *Renderer) RenderFile(root *layout.Root, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := r.Render(root, f, options); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// renderLine draws one line and the part of its block's decoration beside it.
// top is the view offset of the page the line is printed on.
func (r *Renderer) renderLine(pdf *fpdf.Fpdf, tr func(string) string, lb *layout.LineBox, top float64) {
	b := lb.Block
	y := lb.Y - top

	if b != nil {
		decoTop, decoBottom := y, y+lb.Height
		if lb.First {
			decoTop -= b.PaddingTop
		}
		if n := len(b.Lines); n > 0 && b.Lines[n-1] == lb {
			decoBottom += b.PaddingBottom
		}
		if bg, ok := style.ParseColor(b.Style.Value("background-color")); ok && r.RenderBackgrounds {
			pdf.SetFillColor(bg[0], bg[1], bg[2])
			pdf.Rect(b.X*PxToPt, decoTop*PxToPt, b.Width*PxToPt, (decoBottom-decoTop)*PxToPt, "F")
		}
		if b.BorderLeft > 0 && r.RenderBorders {
			c := b.Style.Color("border-left-color", [3]int{204, 204, 204})
			pdf.SetFillColor(c[0], c[1], c[2])
			pdf.Rect(b.X*PxToPt, decoTop*PxToPt, b.BorderLeft*PxToPt, (decoBottom-decoTop)*PxToPt, "F")
		}
	}

	size := lb.Font.Size
	color := lb.Style.Color("color", [3]int{0, 0, 0})
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.SetFont(lb.Font.Family, lb.Font.Style, size*PxToPt)

	// half leading above an ascent of 0.8em
	baseline := y + (lb.Height-size)/2 + 0.8*size

	if lb.First && b != nil && b.Marker != "" {
		pdf.SetFont(lb.Font.Family, "", size*PxToPt)
		markerWidth := pdf.GetStringWidth(tr(b.Marker)) / PxToPt
		pdf.Text((lb.X-markerWidth-size*0.4)*PxToPt, baseline*PxToPt, tr(b.Marker))
		pdf.SetFont(lb.Font.Family, lb.Font.Style, size*PxToPt)
	}
	if lb.Text != "" {
		pdf.Text(lb.X*PxToPt, baseline*PxToPt, tr(lb.Text))
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.1)
		pdf.Rect(lb.X*PxToPt, y*PxToPt, lb.Width*PxToPt, lb.Height*PxToPt, "D")
	}
}

func (r *Renderer) renderPageNumber(pdf *fpdf.Fpdf, root *layout.Root, n, total int) {
	g := root.Geometry
	label := fmt.Sprintf("%d / %d", n, total)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetFont("Helvetica", "", 9)
	w := pdf.GetStringWidth(label)
	pdf.Text((g.PageWidth*PxToPt-w)/2, (g.PageHeight-g.Margin/2)*PxToPt, label)
}

// CountPages returns the number of pages in a PDF document.
func CountPages(data []byte) (int, error) {
	rd, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return rd.NumPage(), nil
}

// PageText extracts the plain text of every page.
func PageText(data []byte) ([]string, error) {
	rd, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	out := make([]string, 0, rd.NumPage())
	for i := 1; i <= rd.NumPage(); i++ {
		p := rd.Page(i)
		if p.V.IsNull() {
			out = append(out, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		out = append(out, text)
	}
	return out, nil
}
