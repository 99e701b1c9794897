package layout

import (
	"sync"

	"codeberg.org/go-pdf/fpdf"
)

// Singleton PDF instance for text measurement using go-pdf/fpdf metrics
var (
	measureOnce sync.Once
	measurer    *Measurer
)

// Measurer measures text with the metrics of the core PDF fonts, so the view
// wraps lines the same way the exported PDF does. It is safe for concurrent
// use.
type Measurer struct {
	mu        sync.Mutex
	pdf       *fpdf.Fpdf
	translate func(string) string
	cache     map[Font]map[rune]float64
}

// NewMeasurer creates a measurer backed by its own fpdf instance.
func NewMeasurer() *Measurer {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetFont("Helvetica", "", 12)
	return &Measurer{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		cache:     make(map[Font]map[rune]float64),
	}
}

// DefaultMeasurer returns the process wide measurer.
func DefaultMeasurer() *Measurer {
	measureOnce.Do(func() { measurer = NewMeasurer() })
	return measurer
}

// RuneWidth returns the advance of r. Runes outside the cp1252 code page get
// half an em.
func (m *Measurer) RuneWidth(r rune, font Font) float64 {
	if font.Size <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	widths, ok := m.cache[font]
	if !ok {
		widths = make(map[rune]float64)
		m.cache[font] = widths
	}
	if w, ok := widths[r]; ok {
		return w
	}
	w := m.measure(r, font)
	widths[r] = w
	return w
}

func (m *Measurer) measure(r rune, font Font) float64 {
	if r < 0x20 {
		return 0
	}
	s := string(r)
	if r >= 0x80 {
		s = m.translate(s)
		if s == "." {
			return font.Size / 2
		}
	}
	m.pdf.SetFont(font.Family, font.Style, font.Size)
	return m.pdf.GetStringWidth(s)
}

// Width returns the advance of s.
func (m *Measurer) Width(s string, font Font) float64 {
	w := 0.0
	for _, r := range s {
		w += m.RuneWidth(r, font)
	}
	return w
}
