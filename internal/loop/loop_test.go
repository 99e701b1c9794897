package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		l.Close()
		wg.Wait()
	})
	return l
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l := startLoop(t)
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		if err := l.Post(func() { got = append(got, i) }); err != nil {
			t.Fatalf("post: %v", err)
		}
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("do: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("ran %d tasks", len(got))
	}
}

func TestLoop_DoReturnsError(t *testing.T) {
	l := startLoop(t)
	want := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestLoop_RecoversFromPanics(t *testing.T) {
	l := startLoop(t)
	_ = l.Post(func() { panic("bad task") })
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("loop died after panic: %v", err)
	}
}

func TestLoop_AfterFuncRunsOnLoop(t *testing.T) {
	l := startLoop(t)
	fired := make(chan struct{})
	l.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestLoop_StopCancelsQueuedCallback(t *testing.T) {
	l := startLoop(t)
	ran := false
	var tm interface{ Stop() bool }
	err := l.Do(context.Background(), func() error {
		tm = l.AfterFunc(time.Millisecond, func() { ran = true })
		// block the loop so the fired timer's callback waits in the queue
		time.Sleep(20 * time.Millisecond)
		if !tm.Stop() {
			return errors.New("stop reported the timer as already done")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if ran {
		t.Error("stopped timer callback ran")
	}
	if tm.Stop() {
		t.Error("second Stop reported success")
	}
}

func TestLoop_ClosedRejectsWork(t *testing.T) {
	l := New(0, nil)
	l.Close()
	l.Close()
	if !l.Closed() {
		t.Fatal("loop not closed")
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("post err = %v", err)
	}
	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("do err = %v", err)
	}
	if err := l.Run(context.Background()); err != nil {
		t.Errorf("run on closed loop = %v", err)
	}
}
