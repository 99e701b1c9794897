package pagination

import (
	"time"
)

const (
	// DefaultDebounce coalesces bursts of edits into one pass.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultInitialDelay lets the first layout settle after load.
	DefaultInitialDelay = 100 * time.Millisecond
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped it.
	Stop() bool
}

// Clock schedules callbacks on the thread that owns the view. Callbacks never
// run concurrently with each other or with view updates.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
	// RequestFrame runs fn at the next paint tick.
	RequestFrame(fn func()) Timer
}

// Scheduler debounces recalculation and defers commits to the next frame.
type Scheduler struct {
	clock        Clock
	debounce     time.Duration
	initialDelay time.Duration
	run          func()

	timer   Timer
	frame   Timer
	stopped bool
}

// NewScheduler creates a scheduler that invokes run once per debounce window.
func NewScheduler(clock Clock, debounce, initialDelay time.Duration, run func()) *Scheduler {
	return &Scheduler{
		clock:        clock,
		debounce:     debounce,
		initialDelay: initialDelay,
		run:          run,
	}
}

// Start schedules the initial pass.
func (s *Scheduler) Start() {
	s.arm(s.initialDelay)
}

// Touch restarts the debounce window. The pass runs debounce after the most
// recent call.
func (s *Scheduler) Touch() {
	s.arm(s.debounce)
}

func (s *Scheduler) arm(d time.Duration) {
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	var t Timer
	t = s.clock.AfterFunc(d, func() {
		if s.timer == t {
			s.timer = nil
		}
		s.run()
	})
	s.timer = t
}

// RequestFrame schedules fn for the next paint tick, replacing any request
// that has not run yet.
func (s *Scheduler) RequestFrame(fn func()) {
	if s.stopped {
		return
	}
	if s.frame != nil {
		s.frame.Stop()
	}
	var t Timer
	t = s.clock.RequestFrame(func() {
		if s.frame == t {
			s.frame = nil
		}
		fn()
	})
	s.frame = t
}

// Waiting reports whether a pass or a commit is scheduled.
func (s *Scheduler) Waiting() bool {
	return s.timer != nil || s.frame != nil
}

// Stop cancels pending work. The scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.frame != nil {
		s.frame.Stop()
		s.frame = nil
	}
}
