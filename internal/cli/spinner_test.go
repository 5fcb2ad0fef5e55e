package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("working")
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		// Stop cancels the internal context, so Cancelled is true after a
		// manual stop too; this documents the behavior.
		return
	}
	t.Error("Stop should cancel the spinner context")
}

func TestSpinnerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "working")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() should report the context cancellation")
	}
}

func TestSpinnerSetMessageTracksWidth(t *testing.T) {
	s := newSpinner("short")
	s.SetMessage("a much longer progress message")
	if s.width < len("a much longer progress message") {
		t.Errorf("width = %d, must cover the longest message", s.width)
	}
	s.SetMessage("tiny")
	if s.width < len("a much longer progress message") {
		t.Error("width must never shrink, or clearing leaves residue")
	}
}
