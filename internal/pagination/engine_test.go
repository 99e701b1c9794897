package pagination

import (
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gompdf/livepage/internal/document"
)

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock is a virtual clock. Timers fire from Advance and frames from
// Frame, both on the calling goroutine.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
	frames []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) RequestFrame(fn func()) Timer {
	t := &fakeTimer{fn: fn}
	c.frames = append(c.frames, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		t := due[0]
		c.now = t.at
		t.fired = true
		t.fn()
	}
	c.now = target
}

func (c *fakeClock) Frame() {
	frames := c.frames
	c.frames = nil
	for _, t := range frames {
		if !t.stopped && !t.fired {
			t.fired = true
			t.fn()
		}
	}
}

// fakeView dispatches overlay transactions straight back into the engine and
// keeps marker offsets in sync with the synthetic layout.
type fakeView struct {
	engine    *Engine
	doc       *document.Document
	layout    *slotLayout
	err       error
	destroyed bool
	commits   int
}

func (v *fakeView) Measure() (Layout, error) {
	if v.err != nil {
		return nil, v.err
	}
	v.layout.markers = map[int]float64{}
	for _, p := range v.engine.Breaks().Positions() {
		v.layout.markers[p] = float64(p)
	}
	return v.layout, nil
}

func (v *fakeView) SetOverlay(set BreakSet) error {
	v.commits++
	v.dispatch(v.doc.Tr().SetMeta(MetaKey, set))
	return nil
}

func (v *fakeView) Destroyed() bool { return v.destroyed }

func (v *fakeView) dispatch(tr *document.Transaction) {
	v.engine.Apply(tr)
	v.doc = tr.Doc()
	v.engine.Update(tr)
}

func (v *fakeView) edit(t *testing.T) {
	t.Helper()
	tr := v.doc.Tr()
	if err := tr.Insert(1, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	v.dispatch(tr)
}

func newTestEngine(t *testing.T, height float64) (*Engine, *fakeView, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	view := &fakeView{doc: document.FromText(strings.Repeat("word ", 1000)), layout: newSlotLayout(height)}
	e, err := NewEngine(view, clock, DefaultOptions())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	view.engine = e
	return e, view, clock
}

func TestNewEngine_RejectsInvalidGeometry(t *testing.T) {
	opts := DefaultOptions()
	opts.Geometry.ContentHeight = -5
	if _, err := NewEngine(&fakeView{}, &fakeClock{}, opts); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestEngine_InitialPassCommitsOnNextFrame(t *testing.T) {
	e, view, clock := newTestEngine(t, 2200)
	e.Start()

	clock.Advance(DefaultInitialDelay - time.Millisecond)
	if e.Passes() != 0 {
		t.Fatal("initial pass ran before its delay")
	}
	clock.Advance(time.Millisecond)
	if e.Passes() != 1 || e.PageCount() != 1 {
		t.Fatalf("passes=%d pages=%d; commit must wait for a frame", e.Passes(), e.PageCount())
	}

	clock.Frame()
	if e.PageCount() != 3 || view.commits != 1 {
		t.Fatalf("pages=%d commits=%d after frame", e.PageCount(), view.commits)
	}
	if got := e.Decorations(); !equalInts(got, []int{960, 2036}) {
		t.Errorf("decorations = %v", got)
	}

	// the commit itself schedules one confirming pass, which must not commit
	clock.Advance(DefaultDebounce)
	clock.Frame()
	if e.Passes() != 2 || view.commits != 1 {
		t.Errorf("passes=%d commits=%d; confirming pass should be a no-op", e.Passes(), view.commits)
	}
	if e.Waiting() {
		t.Error("engine still has work scheduled")
	}
}

func TestEngine_ScenarioC_ShrinkDropsAllBreaks(t *testing.T) {
	e, view, clock := newTestEngine(t, 2200)
	if _, err := e.Settle(5); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if e.PageCount() != 3 {
		t.Fatalf("pages = %d, want 3", e.PageCount())
	}

	view.layout = newSlotLayout(900)
	view.edit(t)
	clock.Advance(DefaultDebounce)
	clock.Frame()
	if e.PageCount() != 1 || e.Breaks().Len() != 0 {
		t.Errorf("pages=%d breaks=%v after shrink", e.PageCount(), e.Breaks().Positions())
	}
}

func TestEngine_ScenarioD_DebouncesBurst(t *testing.T) {
	e, view, clock := newTestEngine(t, 2200)

	view.edit(t)
	clock.Advance(50 * time.Millisecond)
	view.edit(t)
	clock.Advance(DefaultDebounce - time.Millisecond)
	if e.Passes() != 0 {
		t.Fatalf("passes = %d before the window closed", e.Passes())
	}
	clock.Advance(time.Millisecond)
	if e.Passes() != 1 {
		t.Fatalf("passes = %d, want exactly one", e.Passes())
	}
}

func TestEngine_EditsRemapDisplayedBreaks(t *testing.T) {
	e, view, _ := newTestEngine(t, 2200)
	if _, err := e.Settle(5); err != nil {
		t.Fatalf("settle: %v", err)
	}
	var pages []int
	e.Subscribe(ObserverFunc(func(s BreakSet) { pages = append(pages, s.Positions()[0]) }))

	view.edit(t)
	if got := e.Breaks().Positions(); !equalInts(got, []int{961, 2037}) {
		t.Errorf("breaks after insert = %v", got)
	}
	if len(pages) != 1 || pages[0] != 961 {
		t.Errorf("observer saw %v", pages)
	}
}

func TestEngine_DestroyCancelsCommit(t *testing.T) {
	e, view, clock := newTestEngine(t, 2200)
	e.Start()
	clock.Advance(DefaultInitialDelay)

	view.destroyed = true
	e.Destroy()
	clock.Frame()
	if view.commits != 0 || e.PageCount() != 1 {
		t.Errorf("commit ran on a destroyed view: commits=%d", view.commits)
	}

	e.Start()
	clock.Advance(time.Second)
	if e.Passes() != 1 {
		t.Error("stopped engine scheduled another pass")
	}
}

func TestEngine_CommitSkipsTornDownView(t *testing.T) {
	e, view, clock := newTestEngine(t, 2200)
	e.Start()
	clock.Advance(DefaultInitialDelay)
	view.destroyed = true
	clock.Frame()
	if view.commits != 0 {
		t.Error("commit was not guarded")
	}
}

func TestEngine_MeasureFailureKeepsBreaks(t *testing.T) {
	e, view, clock := newTestEngine(t, 2200)
	if _, err := e.Settle(5); err != nil {
		t.Fatalf("settle: %v", err)
	}
	view.err = errors.New("view detached")
	if _, err := e.Recalculate(); err == nil {
		t.Error("recalculate swallowed the measurement error")
	}

	view.edit(t)
	clock.Advance(DefaultDebounce)
	clock.Frame()
	if e.PageCount() != 3 {
		t.Errorf("failed pass changed the displayed set: %d pages", e.PageCount())
	}
}

func TestEngine_SettleIsIdempotent(t *testing.T) {
	e, view, _ := newTestEngine(t, 2200)
	n, err := e.Settle(5)
	if err != nil || n != 2 {
		t.Fatalf("settle = %d, %v; want 2 passes", n, err)
	}
	commits := view.commits
	n, err = e.Settle(5)
	if err != nil || n != 1 || view.commits != commits {
		t.Errorf("second settle = %d passes, %d new commits", n, view.commits-commits)
	}
}
