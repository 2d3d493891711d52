package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/notify"
)

// Outcome is the terminal result of a task.
type Outcome int

const (
	// Success means at least one node was documented and, with XML enabled,
	// the document tree was finalized.
	Success Outcome = iota
	// InitFailed means the scratch graph or output directory could not be
	// set up. Nothing was generated.
	InitFailed
	// NoNodes means processing finished without documenting a single node.
	NoNodes
	// FinalizeFailed means saving the class or index documents or copying
	// assets failed. Node documents already written stay on disk.
	FinalizeFailed
	// Cancelled means a stop was requested or the context was cancelled
	// before the task finished.
	Cancelled
)

var outcomeNames = [...]string{"success", "init_failed", "no_nodes", "finalize_failed", "cancelled"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText encodes the outcome name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result describes how a task ended.
type Result struct {
	Outcome   Outcome       `json:"outcome"`
	Nodes     int           `json:"nodes"`
	Classes   int           `json:"classes"`
	OutputDir string        `json:"output_dir"`
	Missing   []string      `json:"missing_modules,omitempty"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`

	// Err is the coded error behind a failed outcome.
	Err error `json:"-"`
}

// Status is where a task is in its lifecycle.
type Status int

const (
	StatusQueued Status = iota
	StatusRunning
	StatusDone
)

var statusNames = [...]string{"queued", "running", "done"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Task is one documentation request.
type Task struct {
	ID        uuid.UUID
	Settings  config.Settings
	Submitted time.Time

	handle notify.Handle
	done   chan struct{}

	mu       sync.Mutex
	status   Status
	started  time.Time
	finished time.Time
	result   Result
}

// Info is a point-in-time copy of a task for listings.
type Info struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Status    Status          `json:"status"`
	Settings  config.Settings `json:"settings"`
	Submitted time.Time       `json:"submitted"`
	Started   *time.Time      `json:"started,omitempty"`
	Finished  *time.Time      `json:"finished,omitempty"`
	Result    *Result         `json:"result,omitempty"`
}

func newTask(s config.Settings, handle notify.Handle) *Task {
	return &Task{
		ID:        uuid.New(),
		Settings:  s,
		Submitted: time.Now(),
		handle:    handle,
		done:      make(chan struct{}),
	}
}

// Done is closed once the task has a result.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Info returns a snapshot of the task.
func (t *Task) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := Info{
		ID:        t.ID.String(),
		Title:     t.Settings.Title,
		Status:    t.status,
		Settings:  t.Settings,
		Submitted: t.Submitted,
	}
	if !t.started.IsZero() {
		started := t.started
		info.Started = &started
	}
	if t.status == StatusDone {
		finished, result := t.finished, t.result
		info.Finished = &finished
		info.Result = &result
	}
	return info
}

func (t *Task) setRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusRunning
	t.started = time.Now()
}

func (t *Task) finish(r Result) {
	t.mu.Lock()
	if r.Err != nil && r.Error == "" {
		r.Error = r.Err.Error()
	}
	t.status = StatusDone
	t.finished = time.Now()
	t.result = r
	t.mu.Unlock()
	close(t.done)
}
