package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Step is an atomic document change.
type Step interface {
	Apply(d *Document) (*Document, StepMap, error)
}

// ReplaceStep replaces the text between two inline positions. When the range
// crosses blocks, the first block absorbs the tail of the last one.
type ReplaceStep struct {
	From int
	To   int
	Text string
}

func (s ReplaceStep) Apply(d *Document) (*Document, StepMap, error) {
	if s.From > s.To {
		return nil, StepMap{}, fmt.Errorf("%w: replace range %d > %d", ErrInvalidPosition, s.From, s.To)
	}
	from, err := d.resolveInline(s.From)
	if err != nil {
		return nil, StepMap{}, err
	}
	to, err := d.resolveInline(s.To)
	if err != nil {
		return nil, StepMap{}, err
	}

	first := []rune(d.blocks[from.Index].Text)
	last := []rune(d.blocks[to.Index].Text)
	merged := d.blocks[from.Index]
	merged.Text = string(first[:from.Offset]) + s.Text + string(last[to.Offset:])

	blocks := make([]Block, 0, len(d.blocks)-(to.Index-from.Index))
	blocks = append(blocks, d.blocks[:from.Index]...)
	blocks = append(blocks, merged)
	blocks = append(blocks, d.blocks[to.Index+1:]...)

	return New(blocks), StepMap{Start: s.From, OldSize: s.To - s.From, NewSize: utf8.RuneCountInString(s.Text)}, nil
}

// SplitStep splits a block in two at an inline position. Splitting a heading
// yields a paragraph for the second half, like pressing Enter in an editor.
type SplitStep struct {
	Pos int
}

func (s SplitStep) Apply(d *Document) (*Document, StepMap, error) {
	r, err := d.resolveInline(s.Pos)
	if err != nil {
		return nil, StepMap{}, err
	}
	orig := d.blocks[r.Index]
	runes := []rune(orig.Text)

	head := orig
	head.Text = string(runes[:r.Offset])
	tail := orig
	tail.Text = string(runes[r.Offset:])
	if tail.Kind == KindHeading {
		tail = Block{Kind: KindParagraph, Text: tail.Text}
	}

	blocks := make([]Block, 0, len(d.blocks)+1)
	blocks = append(blocks, d.blocks[:r.Index]...)
	blocks = append(blocks, head, tail)
	blocks = append(blocks, d.blocks[r.Index+1:]...)

	return New(blocks), StepMap{Start: s.Pos, OldSize: 0, NewSize: 2}, nil
}

// SetKindStep changes the type of the block containing Pos.
type SetKindStep struct {
	Pos     int
	Kind    Kind
	Level   int
	Ordered bool
}

func (s SetKindStep) Apply(d *Document) (*Document, StepMap, error) {
	r, err := d.resolveInline(s.Pos)
	if err != nil {
		return nil, StepMap{}, err
	}
	blocks := d.Blocks()
	blocks[r.Index].Kind = s.Kind
	blocks[r.Index].Level = s.Level
	blocks[r.Index].Ordered = s.Ordered
	return New(blocks), StepMap{Start: s.Pos}, nil
}

// Transaction accumulates steps against a document along with metadata that
// plugins can read while the transaction is applied.
type Transaction struct {
	before  *Document
	doc     *Document
	steps   []Step
	mapping Mapping
	meta    map[string]any
}

// Tr starts a transaction on d.
func (d *Document) Tr() *Transaction {
	return &Transaction{before: d, doc: d}
}

// Step applies s to the transaction's current document.
func (tr *Transaction) Step(s Step) error {
	next, sm, err := s.Apply(tr.doc)
	if err != nil {
		return err
	}
	tr.doc = next
	tr.steps = append(tr.steps, s)
	tr.mapping = append(tr.mapping, sm)
	return nil
}

// Insert inserts text at pos.
func (tr *Transaction) Insert(pos int, text string) error {
	if text == "" {
		return nil
	}
	return tr.Step(ReplaceStep{From: pos, To: pos, Text: text})
}

// Delete removes the content between from and to.
func (tr *Transaction) Delete(from, to int) error {
	if from == to {
		return nil
	}
	return tr.Step(ReplaceStep{From: from, To: to})
}

// Replace replaces the content between from and to with text.
func (tr *Transaction) Replace(from, to int, text string) error {
	return tr.Step(ReplaceStep{From: from, To: to, Text: text})
}

// Split splits the block at pos.
func (tr *Transaction) Split(pos int) error {
	return tr.Step(SplitStep{Pos: pos})
}

// InsertParagraphs types text at pos, turning each newline into a block split.
func (tr *Transaction) InsertParagraphs(pos int, text string) (int, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			if err := tr.Split(pos); err != nil {
				return pos, err
			}
			pos += 2
		}
		if err := tr.Insert(pos, line); err != nil {
			return pos, err
		}
		pos += utf8.RuneCountInString(line)
	}
	return pos, nil
}

// SetKind changes the type of the block containing pos.
func (tr *Transaction) SetKind(pos int, kind Kind, level int) error {
	return tr.Step(SetKindStep{Pos: pos, Kind: kind, Level: level})
}

// SetMeta attaches metadata to the transaction.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = value
	return tr
}

// Meta returns metadata previously set under key.
func (tr *Transaction) Meta(key string) any {
	return tr.meta[key]
}

// Before returns the document the transaction started from.
func (tr *Transaction) Before() *Document { return tr.before }

// Doc returns the document with all steps applied.
func (tr *Transaction) Doc() *Document { return tr.doc }

// Mapping returns the position mapping of all steps so far.
func (tr *Transaction) Mapping() Mapping { return tr.mapping }

// DocChanged reports whether any step was applied.
func (tr *Transaction) DocChanged() bool { return len(tr.steps) > 0 }
