package pagination

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gompdf/livepage/internal/document"
)

// MetaKey is the transaction metadata key carrying a committed BreakSet.
const MetaKey = "pagination"

// View is the part of the live editor view the engine depends on.
type View interface {
	// Measure returns the layout of the current frame.
	Measure() (Layout, error)
	// SetOverlay dispatches an overlay-only transaction carrying set under
	// MetaKey.
	SetOverlay(set BreakSet) error
	// Destroyed reports whether the view has been torn down.
	Destroyed() bool
}

// Options represents options for the pagination engine
type Options struct {
	Geometry     Geometry
	Debounce     time.Duration
	InitialDelay time.Duration
	StaleSlack   float64
	Logger       *slog.Logger
}

// DefaultOptions returns US-Letter pagination with the default timings.
func DefaultOptions() Options {
	return Options{
		Geometry:     DefaultGeometry(),
		Debounce:     DefaultDebounce,
		InitialDelay: DefaultInitialDelay,
		StaleSlack:   DefaultStaleSlack,
	}
}

// Engine paginates a live view. It is a view plugin: the view calls Apply
// while a transaction is applied and Update once the view has laid out the
// result. Every method must be called on the view's thread.
type Engine struct {
	options    Options
	view       View
	reconciler *Reconciler
	scheduler  *Scheduler
	log        *slog.Logger
	passes     int
}

// NewEngine creates a pagination engine for view. Timers are created on clock.
func NewEngine(view View, clock Clock, options Options) (*Engine, error) {
	if err := options.Geometry.Validate(); err != nil {
		return nil, err
	}
	log := options.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		options:    options,
		view:       view,
		reconciler: NewReconciler(),
		log:        log.With("component", "pagination"),
	}
	e.scheduler = NewScheduler(clock, options.Debounce, options.InitialDelay, e.runScheduled)
	return e, nil
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.options
}

// Start schedules the initial pass for a freshly loaded document.
func (e *Engine) Start() {
	e.scheduler.Start()
}

// Apply updates the break state for a transaction: committed sets replace the
// displayed one and edits remap it.
func (e *Engine) Apply(tr *document.Transaction) {
	if set, ok := tr.Meta(MetaKey).(BreakSet); ok {
		if e.reconciler.Replace(set) {
			e.log.Info("page breaks committed", "pages", set.PageCount())
		}
		return
	}
	if tr.DocChanged() {
		e.reconciler.Map(tr.Mapping())
	}
}

// Update is called after the view laid out a transaction.
func (e *Engine) Update(tr *document.Transaction) {
	if tr.DocChanged() || tr.Meta(MetaKey) != nil {
		e.scheduler.Touch()
	}
}

// Decorations returns the positions at which break widgets are drawn.
func (e *Engine) Decorations() []int {
	return e.reconciler.Current().Positions()
}

// Destroy cancels any scheduled pass or commit.
func (e *Engine) Destroy() {
	e.scheduler.Stop()
}

// Breaks returns the displayed break set.
func (e *Engine) Breaks() BreakSet {
	return e.reconciler.Current()
}

// PageCount returns the number of pages currently displayed.
func (e *Engine) PageCount() int {
	return e.reconciler.PageCount()
}

// Subscribe registers an observer of break set changes.
func (e *Engine) Subscribe(o Observer) (cancel func()) {
	return e.reconciler.Subscribe(o)
}

// Passes returns how many pipeline passes have run.
func (e *Engine) Passes() int {
	return e.passes
}

// Waiting reports whether a pass or commit is scheduled.
func (e *Engine) Waiting() bool {
	return e.scheduler.Waiting()
}

// pass runs measure, calculate, filter and reconcile once. It never touches
// the displayed set.
func (e *Engine) pass() (BreakSet, bool, error) {
	e.passes++
	if e.view.Destroyed() {
		return BreakSet{}, false, nil
	}
	l, err := e.view.Measure()
	if err != nil {
		return BreakSet{}, false, fmt.Errorf("measure layout: %w", err)
	}
	cands := Calculate(e.options.Geometry, l, e.log)
	kept := FilterStale(cands, e.reconciler.Current(), l, e.options.StaleSlack)
	set, changed := e.reconciler.Reconcile(kept)
	e.log.Debug("pagination pass",
		"pass", e.passes,
		"height", l.Height(),
		"candidates", len(cands),
		"stale", len(cands)-len(kept),
		"changed", changed,
		"pages", set.PageCount(),
	)
	return set, changed, nil
}

func (e *Engine) runScheduled() {
	_, changed, err := e.pass()
	if err != nil {
		e.log.Warn("pagination pass aborted", "error", err)
		return
	}
	if changed {
		e.scheduler.RequestFrame(e.commitPending)
	}
}

func (e *Engine) commitPending() {
	if e.view.Destroyed() {
		return
	}
	set, ok := e.reconciler.Pending()
	if !ok {
		return
	}
	if err := e.view.SetOverlay(set); err != nil {
		e.log.Warn("page break commit failed", "error", err)
	}
}

// Recalculate runs a pass immediately and schedules its commit for the next
// frame. It reports whether the break set is about to change.
func (e *Engine) Recalculate() (bool, error) {
	_, changed, err := e.pass()
	if err != nil {
		return false, err
	}
	if changed {
		e.scheduler.RequestFrame(e.commitPending)
	}
	return changed, nil
}

// Settle runs passes and commits them synchronously until the break set stops
// changing or maxPasses is reached. It must not be called from inside a view
// update. It returns the number of passes run.
func (e *Engine) Settle(maxPasses int) (int, error) {
	for i := 1; i <= maxPasses; i++ {
		set, changed, err := e.pass()
		if err != nil {
			return i, err
		}
		if !changed {
			return i, nil
		}
		if err := e.view.SetOverlay(set); err != nil {
			return i, fmt.Errorf("commit page breaks: %w", err)
		}
	}
	return maxPasses, nil
}
