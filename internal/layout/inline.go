package layout

import (
	"github.com/gompdf/livepage/internal/parser/html"
	"github.com/gompdf/livepage/internal/style"
)

// LineBox is one line of wrapped text.
type LineBox struct {
	Block *BlockBox
	Style style.ComputedStyle
	Font  Font
	// First is set on the first line of its block.
	First bool

	X      float64
	Y      float64
	Width  float64
	Height float64
	Text   string

	// Start is the document position before the first character.
	Start int
	// Offsets holds the x offset, relative to X, of every character boundary:
	// Offsets[i] is the boundary at document position Start+i.
	Offsets []float64
}

// GetX returns the x position of the line
func (b *LineBox) GetX() float64 { return b.X }

// GetY returns the y position of the line
func (b *LineBox) GetY() float64 { return b.Y }

// GetWidth returns the width of the line box
func (b *LineBox) GetWidth() float64 { return b.Width }

// GetHeight returns the height of the line
func (b *LineBox) GetHeight() float64 { return b.Height }

// GetNode returns the node of the block the line belongs to
func (b *LineBox) GetNode() *html.Node {
	if b.Block == nil {
		return nil
	}
	return b.Block.Node
}

// End is the document position after the last character.
func (b *LineBox) End() int {
	return b.Start + len(b.Offsets) - 1
}

// PositionAt returns the character boundary nearest to x.
func (b *LineBox) PositionAt(x float64) int {
	rel := x - b.X
	best, bestDist := 0, -1.0
	for i, off := range b.Offsets {
		d := off - rel
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return b.Start + best
}

// span is a range [from, to) of runes that forms one line.
type span struct{ from, to int }

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// wrap breaks runes into lines no wider than maxWidth. Lines break after
// whitespace; a word wider than maxWidth is broken between characters. A
// newline always ends its line and is kept as the last rune of that line.
// Empty input yields a single empty line.
func wrap(runes []rune, maxWidth float64, width func(rune) float64) []span {
	var lines []span
	start, w := 0, 0.0
	i := 0
	for i < len(runes) {
		if runes[i] == '\n' {
			lines = append(lines, span{start, i + 1})
			start, w = i+1, 0
			i++
			continue
		}
		j := i
		ww := 0.0
		for j < len(runes) && !isBlank(runes[j]) && runes[j] != '\n' {
			ww += width(runes[j])
			j++
		}
		k := j
		sw := 0.0
		for k < len(runes) && isBlank(runes[k]) {
			sw += width(runes[k])
			k++
		}

		if w > 0 && w+ww > maxWidth && j > i {
			lines = append(lines, span{start, i})
			start, w = i, 0
		}
		if w == 0 && ww > maxWidth {
			cw := 0.0
			for c := i; c < j; c++ {
				rw := width(runes[c])
				if cw > 0 && cw+rw > maxWidth {
					lines = append(lines, span{start, c})
					start, cw = c, 0
				}
				cw += rw
			}
			w = cw
		} else {
			w += ww
		}
		w += sw
		i = k
	}
	if start < len(runes) || len(lines) == 0 || runes[len(runes)-1] == '\n' {
		lines = append(lines, span{start, len(runes)})
	}
	return lines
}
