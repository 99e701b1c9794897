package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidPosition is returned when a position does not address a valid
// location for the requested operation.
var ErrInvalidPosition = errors.New("invalid document position")

// Kind identifies the type of a block
type Kind string

const (
	KindParagraph  Kind = "paragraph"
	KindHeading    Kind = "heading"
	KindBlockquote Kind = "blockquote"
	KindCode       Kind = "code"
	KindListItem   Kind = "list_item"
)

// Block is a single top-level textblock of the document
type Block struct {
	Kind    Kind
	Level   int  // heading level, 1-6
	Ordered bool // list items only
	Text    string
}

// Len returns the number of characters in the block
func (b Block) Len() int {
	return utf8.RuneCountInString(b.Text)
}

// Size returns the number of positions the block occupies, including its
// opening and closing boundaries.
func (b Block) Size() int {
	return b.Len() + 2
}

// Tag returns the HTML element name used for the block.
func (b Block) Tag() string {
	switch b.Kind {
	case KindHeading:
		level := b.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return fmt.Sprintf("h%d", level)
	case KindBlockquote:
		return "blockquote"
	case KindCode:
		return "pre"
	case KindListItem:
		return "li"
	default:
		return "p"
	}
}

// Document is an immutable sequence of blocks addressed by integer positions.
//
// Block i opens at position start(i). Its characters live between start(i)+1
// and start(i)+1+Len, and the block closes one position later, which is where
// block i+1 opens.
type Document struct {
	blocks []Block
	starts []int
	size   int
}

// New creates a document from blocks. An empty slice yields a document with a
// single empty paragraph, since an editor always has somewhere to type.
func New(blocks []Block) *Document {
	if len(blocks) == 0 {
		blocks = []Block{{Kind: KindParagraph}}
	}
	d := &Document{
		blocks: make([]Block, len(blocks)),
		starts: make([]int, len(blocks)),
	}
	copy(d.blocks, blocks)
	pos := 0
	for i, b := range d.blocks {
		if b.Kind == "" {
			d.blocks[i].Kind = KindParagraph
		}
		d.starts[i] = pos
		pos += b.Size()
	}
	d.size = pos
	return d
}

// FromText builds a document with one paragraph per blank-line separated chunk.
func FromText(text string) *Document {
	var blocks []Block
	for _, chunk := range strings.Split(text, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		blocks = append(blocks, Block{Kind: KindParagraph, Text: strings.Join(strings.Fields(chunk), " ")})
	}
	return New(blocks)
}

// Size returns the size of the document's position space.
func (d *Document) Size() int {
	return d.size
}

// BlockCount returns the number of blocks
func (d *Document) BlockCount() int {
	return len(d.blocks)
}

// Block returns the block at index i.
func (d *Document) Block(i int) Block {
	return d.blocks[i]
}

// Blocks returns a copy of the document's blocks.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// BlockStart returns the position at which block i opens.
func (d *Document) BlockStart(i int) int {
	return d.starts[i]
}

// ContentStart returns the first inline position of block i.
func (d *Document) ContentStart(i int) int {
	return d.starts[i] + 1
}

// ResolvedPos describes where a position falls in the document.
type ResolvedPos struct {
	Pos   int
	Index int // index of the block containing or following the position
	// Offset is the character offset inside the block, or -1 when the
	// position sits on a block boundary.
	Offset int
}

// Inline reports whether the position is inside a block's text.
func (r ResolvedPos) Inline() bool {
	return r.Offset >= 0
}

// Resolve locates pos in the block structure.
func (d *Document) Resolve(pos int) (ResolvedPos, error) {
	if pos < 0 || pos > d.size {
		return ResolvedPos{}, fmt.Errorf("%w: %d outside [0, %d]", ErrInvalidPosition, pos, d.size)
	}
	lo, hi := 0, len(d.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.starts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if pos == d.size {
		return ResolvedPos{Pos: pos, Index: len(d.blocks), Offset: -1}, nil
	}
	start := d.starts[lo]
	if pos == start {
		return ResolvedPos{Pos: pos, Index: lo, Offset: -1}, nil
	}
	return ResolvedPos{Pos: pos, Index: lo, Offset: pos - start - 1}, nil
}

// resolveInline resolves pos and fails unless it addresses text.
func (d *Document) resolveInline(pos int) (ResolvedPos, error) {
	r, err := d.Resolve(pos)
	if err != nil {
		return r, err
	}
	if !r.Inline() {
		return r, fmt.Errorf("%w: %d is a block boundary", ErrInvalidPosition, pos)
	}
	return r, nil
}

// TextBetween returns the characters between two positions, with blocks
// separated by newlines.
func (d *Document) TextBetween(from, to int) string {
	var b strings.Builder
	for i, blk := range d.blocks {
		cs := d.starts[i] + 1
		ce := cs + blk.Len()
		lo, hi := max(from, cs), min(to, ce)
		if lo > hi || (lo == hi && from != to) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		runes := []rune(blk.Text)
		b.WriteString(string(runes[lo-cs : hi-cs]))
	}
	return b.String()
}

// String returns the plain text of the document.
func (d *Document) String() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n\n")
}

// Equal reports whether both documents have identical blocks.
func (d *Document) Equal(other *Document) bool {
	if d == other {
		return true
	}
	if other == nil || len(d.blocks) != len(other.blocks) {
		return false
	}
	for i := range d.blocks {
		if d.blocks[i] != other.blocks[i] {
			return false
		}
	}
	return true
}
