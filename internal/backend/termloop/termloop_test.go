package termloop

import (
	"context"
	"testing"
	"time"
)

func TestDrawStopsOnCancelledContext(t *testing.T) {
	b := New(nil)
	calls := make(chan struct{}, 2)
	b.interrupt = func() { calls <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The engine is never stepped once ctx is done, so a nil screen is fine.
	f := &FrameEntity{ctx: ctx, backend: b}
	f.Draw(nil)
	f.Draw(nil)

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("Expected the event poller to be interrupted")
	}
	select {
	case <-calls:
		t.Error("Expected a single interrupt, got two")
	case <-time.After(50 * time.Millisecond):
	}
	if !b.stopping {
		t.Error("Expected the backend to be stopping")
	}
}

func TestFps(t *testing.T) {
	if got := fps(50 * time.Millisecond); got != 20 {
		t.Errorf("Expected 20 fps, got %v", got)
	}
	if got := fps(0); got <= 0 {
		t.Errorf("Expected the default interval for zero, got %v fps", got)
	}
}
