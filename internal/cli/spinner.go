package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/nodedocs/pkg/notify"
)

// Spinner is a one-line progress indicator. It doubles as a notify.Sink so
// task notifications replace its message as they change.
//
// A Spinner can be started again after Stop; it stops for good once its
// parent context is cancelled.
type Spinner struct {
	parent context.Context
	w      io.Writer
	frames []string

	mu      sync.Mutex
	message string
	cancel  context.CancelFunc
	stopped chan struct{}
}

// newSpinner creates a new spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return &Spinner{
		parent:  ctx,
		w:       os.Stderr,
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation. Starting a running spinner does
// nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped != nil {
		return
	}
	ctx, cancel := context.WithCancel(s.parent)
	stopped := make(chan struct{})
	s.cancel, s.stopped = cancel, stopped

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and clears the line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel, s.stopped = nil, nil
	s.mu.Unlock()
	if stopped == nil {
		return
	}
	cancel()
	<-stopped
}

// SetMessage replaces the text next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Pad so a shorter message hides the tail of a longer one.
	if pad := len(s.message) - len(msg); pad > 0 {
		msg += strings.Repeat(" ", pad)
	}
	s.message = msg
}

// Message returns the current text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimRight(s.message, " ")
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Cancelled returns true if the spinner's parent context is done.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// Add implements notify.Sink.
func (s *Spinner) Add(title string) notify.Handle {
	s.SetMessage(title)
	return &spinnerHandle{spinner: s, title: title}
}

type spinnerHandle struct {
	spinner *Spinner
	title   string
}

func (h *spinnerHandle) SetText(text string) {
	h.spinner.SetMessage(h.title + ": " + text)
}

func (h *spinnerHandle) SetState(notify.State) {}

func (h *spinnerHandle) Expire() {}

var _ notify.Sink = (*Spinner)(nil)
