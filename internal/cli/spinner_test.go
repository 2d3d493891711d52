package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/nodedocs/pkg/notify"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerBasic(t *testing.T) {
	s := newSpinner("Testing...")
	s.w = &syncBuffer{}
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop should not mark the spinner cancelled")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.w = &syncBuffer{}
	s.Start()
	cancel()

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.w = &syncBuffer{}
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerRestart(t *testing.T) {
	out := &syncBuffer{}
	s := newSpinner("first")
	s.w = out
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	s.SetMessage("second")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if !bytes.Contains([]byte(out.String()), []byte("second")) {
		t.Errorf("restarted spinner never drew its new message: %q", out.String())
	}
}

func TestSpinnerSink(t *testing.T) {
	s := newSpinner("Starting")
	var sink notify.Sink = s

	h := sink.Add("Engine Docs")
	if got := s.Message(); got != "Engine Docs" {
		t.Errorf("message after Add = %q", got)
	}
	h.SetText(notify.TextInProgress)
	if got, want := s.Message(), "Engine Docs: "+notify.TextInProgress; got != want {
		t.Errorf("message after SetText = %q, want %q", got, want)
	}
	h.SetText(notify.TextCompleted)
	if got, want := s.Message(), "Engine Docs: "+notify.TextCompleted; got != want {
		t.Errorf("shorter message = %q, want %q", got, want)
	}
	h.SetState(notify.Success)
	h.Expire()
}
