// Package loop runs callbacks one at a time on a single goroutine, the way a
// UI thread does. Timers and frame requests are delivered through the same
// queue, so nothing posted to a Loop ever runs concurrently with anything
// else posted to it.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gompdf/livepage/internal/pagination"
)

// ErrClosed is returned when work is posted to a closed loop.
var ErrClosed = errors.New("loop: closed")

// DefaultFrameInterval approximates a 60Hz paint tick.
const DefaultFrameInterval = 16 * time.Millisecond

const queueSize = 1024

// Loop is a single threaded task queue. It satisfies pagination.Clock.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	once    sync.Once
	frame   time.Duration
	log     *slog.Logger
	running atomic.Bool
}

var _ pagination.Clock = (*Loop)(nil)

// New creates a loop. Run must be called to start processing.
func New(frameInterval time.Duration, log *slog.Logger) *Loop {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
		frame: frameInterval,
		log:   log,
	}
}

// Run processes posted tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("loop: already running")
	}
	defer l.running.Store(false)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop task panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Do runs fn on the loop and waits for its result. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	if err := l.Post(func() { errc <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Close stops the loop. Pending tasks are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

type timer struct {
	t    *time.Timer
	done atomic.Bool
}

// Stop prevents the callback from running. Called from the loop goroutine it
// also cancels a callback that has already been queued but has not run.
func (t *timer) Stop() bool {
	stopped := !t.done.Swap(true)
	t.t.Stop()
	return stopped
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) pagination.Timer {
	tm := &timer{}
	tm.t = time.AfterFunc(d, func() {
		err := l.Post(func() {
			if tm.done.Swap(true) {
				return
			}
			fn()
		})
		if err != nil {
			l.log.Debug("timer fired after close", "error", err)
		}
	})
	return tm
}

// RequestFrame runs fn on the loop at the next frame tick.
func (l *Loop) RequestFrame(fn func()) pagination.Timer {
	return l.AfterFunc(l.frame, fn)
}
