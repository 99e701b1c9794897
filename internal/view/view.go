// Package view is the live editor view: it owns the current document, feeds
// transactions through its plugins and lays the document out on demand.
package view

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/layout"
	"github.com/gompdf/livepage/internal/pagination"
)

var (
	// ErrDestroyed is returned by operations on a torn down view.
	ErrDestroyed = errors.New("view: destroyed")
	// ErrReentrantDispatch is returned when a transaction is dispatched while
	// another one is being applied.
	ErrReentrantDispatch = errors.New("view: dispatch during update")
	// ErrLayoutStale is returned when the layout is read while a transaction
	// is being applied.
	ErrLayoutStale = errors.New("view: layout read during update")
	// ErrForeignTransaction is returned for transactions that were not started
	// from the view's current document.
	ErrForeignTransaction = errors.New("view: transaction does not start from current document")
)

// Plugin observes transactions and contributes decorations.
type Plugin interface {
	// Apply runs while tr is applied, before the new state is visible.
	Apply(tr *document.Transaction)
	// Update runs once the view reflects tr.
	Update(tr *document.Transaction)
	// Decorations returns positions at which break widgets are drawn.
	Decorations() []int
	Destroy()
}

// View holds the editor state. It is not safe for concurrent use; every call
// must come from the goroutine that owns it.
type View struct {
	doc       *document.Document
	layouter  *layout.Engine
	plugins   []Plugin
	root      *layout.Root
	updating  bool
	destroyed bool
	version   int
	log       *slog.Logger
}

var _ pagination.View = (*View)(nil)

// New creates a view on doc.
func New(doc *document.Document, layouter *layout.Engine, log *slog.Logger) *View {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &View{doc: doc, layouter: layouter, log: log.With("component", "view")}
}

// AddPlugin registers p. Plugins see transactions in registration order.
func (v *View) AddPlugin(p Plugin) {
	v.plugins = append(v.plugins, p)
}

// Doc returns the current document.
func (v *View) Doc() *document.Document {
	return v.doc
}

// Version increments with every dispatched transaction.
func (v *View) Version() int {
	return v.version
}

// Dispatch applies tr to the view.
func (v *View) Dispatch(tr *document.Transaction) error {
	if v.destroyed {
		return ErrDestroyed
	}
	if v.updating {
		return ErrReentrantDispatch
	}
	if tr.Before() != v.doc {
		return ErrForeignTransaction
	}

	v.updating = true
	defer func() { v.updating = false }()

	for _, p := range v.plugins {
		p.Apply(tr)
	}
	v.doc = tr.Doc()
	v.root = nil
	v.version++
	for _, p := range v.plugins {
		p.Update(tr)
	}
	v.log.Debug("transaction applied",
		"version", v.version,
		"doc_changed", tr.DocChanged(),
		"size", v.doc.Size())
	return nil
}

// SetOverlay dispatches an overlay-only transaction carrying set.
func (v *View) SetOverlay(set pagination.BreakSet) error {
	if v.destroyed {
		return ErrDestroyed
	}
	return v.Dispatch(v.doc.Tr().SetMeta(pagination.MetaKey, set))
}

// Decorations merges the decorations of every plugin.
func (v *View) Decorations() []int {
	var out []int
	for _, p := range v.plugins {
		out = append(out, p.Decorations()...)
	}
	sort.Ints(out)
	return out
}

// Layout returns the layout of the current state, computing it if needed.
func (v *View) Layout() (*layout.Root, error) {
	if v.destroyed {
		return nil, ErrDestroyed
	}
	if v.updating {
		return nil, ErrLayoutStale
	}
	if v.root == nil {
		root, err := v.layouter.Layout(v.doc, v.Decorations())
		if err != nil {
			return nil, fmt.Errorf("layout version %d: %w", v.version, err)
		}
		v.root = root
	}
	return v.root, nil
}

// Measure implements pagination.View.
func (v *View) Measure() (pagination.Layout, error) {
	root, err := v.Layout()
	if err != nil {
		return nil, err
	}
	return root, nil
}

// HTML renders the current document with its break widgets.
func (v *View) HTML() string {
	return v.doc.HTML(v.Decorations())
}

// Destroyed reports whether Destroy has been called.
func (v *View) Destroyed() bool {
	return v.destroyed
}

// Destroy tears the view down and its plugins with it.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	for _, p := range v.plugins {
		p.Destroy()
	}
	v.root = nil
}
