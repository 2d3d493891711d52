// Package processor runs documentation tasks one at a time.
//
// A [Processor] owns a FIFO of submitted tasks and a single worker loop,
// started with [Processor.Run]. The worker never touches live catalog
// objects: enumeration, spawning, rendering and document assembly are
// handed to a [bridge.Context] that owns the catalog's World, and only weak
// handles and plain data come back.
//
//	br := bridge.New()
//	go br.Run(ctx)
//	p := processor.New(processor.Options{Bridge: br, Catalog: cat, Renderer: r})
//	go p.Run(ctx)
//
//	task, err := p.Submit(settings)
//	result, err := task.Wait(ctx)
package processor

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nodedocs/pkg/bridge"
	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/observability"
	"github.com/matzehuels/nodedocs/pkg/render"
)

// State is the worker's lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures a Processor.
type Options struct {
	// Bridge runs all live-object work. Required.
	Bridge *bridge.Context
	// Catalog is the initial catalog. It belongs to Bridge's goroutine.
	Catalog *catalog.Catalog
	// Renderer draws node images.
	Renderer render.Renderer
	// Sink shows task progress. Defaults to an in-memory board.
	Sink notify.Sink
	// OnFinish is called on the worker after each task completes.
	OnFinish func(ctx context.Context, info Info)
	Logger   *log.Logger
}

// Processor queues tasks and processes them on one worker.
type Processor struct {
	br       *bridge.Context
	renderer render.Renderer
	sink     notify.Sink
	onFinish func(context.Context, Info)
	logger   *log.Logger

	// cat is read and replaced only on the bridge goroutine.
	cat *catalog.Catalog

	mu    sync.Mutex
	queue []*Task
	tasks []*Task
	byID  map[uuid.UUID]*Task

	wake  chan struct{}
	stop  atomic.Bool
	state atomic.Int32
}

// New creates a processor. Nothing runs until Run is called.
func New(opts Options) *Processor {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Sink == nil {
		opts.Sink = notify.NewBoard()
	}
	return &Processor{
		br:       opts.Bridge,
		cat:      opts.Catalog,
		renderer: opts.Renderer,
		sink:     opts.Sink,
		onFinish: opts.OnFinish,
		logger:   opts.Logger,
		byID:     make(map[uuid.UUID]*Task),
		wake:     make(chan struct{}, 1),
	}
}

// SetCatalog replaces the catalog used by tasks that start afterwards.
// A task already running keeps the catalog it started with.
func (p *Processor) SetCatalog(cat *catalog.Catalog) bool {
	return bridge.Do(p.br, func() bool {
		p.cat = cat
		return true
	})
}

// CollectIdle destroys unrooted transient objects of the current catalog
// and returns how many went. It must run on the bridge goroutine; it is
// meant as the bridge's idle hook.
func (p *Processor) CollectIdle() int {
	if p.cat == nil {
		return 0
	}
	return p.cat.World().Collect()
}

// Submit validates s and queues a task for it. It is safe to call from any
// goroutine.
func (p *Processor) Submit(s config.Settings) (*Task, error) {
	s = s.Clone()
	if err := s.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.State() == Stopped {
		p.mu.Unlock()
		return nil, errors.New(errors.ErrCodeUnavailable, "processor is stopped")
	}
	handle := p.sink.Add(s.Title)
	handle.SetText(notify.TextWaiting)
	handle.SetState(notify.Pending)
	t := newTask(s, handle)
	p.queue = append(p.queue, t)
	p.tasks = append(p.tasks, t)
	p.byID[t.ID] = t
	p.mu.Unlock()

	observability.Task().OnTaskSubmitted(context.Background(), t.ID.String())
	p.logger.Debug("task queued", "task", s.Title, "id", t.ID)
	p.signal()
	return t, nil
}

// Tasks returns every submitted task in submission order.
func (p *Processor) Tasks() []Info {
	p.mu.Lock()
	tasks := append([]*Task(nil), p.tasks...)
	p.mu.Unlock()

	out := make([]Info, len(tasks))
	for i, t := range tasks {
		out[i] = t.Info()
	}
	return out
}

// Task returns the task with the given id.
func (p *Processor) Task(id string) (*Task, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.byID[uid]
	return t, ok
}

// State returns the worker's lifecycle state.
func (p *Processor) State() State { return State(p.state.Load()) }

// IsRunning reports whether the worker loop is active.
func (p *Processor) IsRunning() bool { return p.State() == Running }

// RequestStop asks the worker to stop. A task in progress ends as Cancelled
// at its next source object; queued tasks are cancelled without running.
func (p *Processor) RequestStop() {
	p.stop.Store(true)
	p.signal()
}

// Run is the worker loop. It blocks until RequestStop is called or ctx is
// done and returns ctx's error in the latter case.
func (p *Processor) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return errors.New(errors.ErrCodeInternal, "processor already started")
	}
	defer p.shutdown(ctx)

	for {
		if p.stop.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		t := p.pop()
		if t == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.wake:
			}
			continue
		}
		p.processTask(ctx, t)
	}
}

func (p *Processor) pop() *Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	t := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return t
}

func (p *Processor) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// shutdown marks the worker stopped and cancels whatever is still queued.
func (p *Processor) shutdown(ctx context.Context) {
	p.mu.Lock()
	p.state.Store(int32(Stopped))
	queued := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, t := range queued {
		t.handle.SetText(notify.TextFailed)
		t.handle.SetState(notify.Fail)
		t.handle.Expire()
		t.finish(Result{
			Outcome:   Cancelled,
			OutputDir: t.Settings.OutputDir,
			Err:       errors.New(errors.ErrCodeCancelled, "processor stopped before the task started"),
		})
		observability.Task().OnTaskComplete(ctx, t.ID.String(), Cancelled.String(), 0, 0)
	}
}

// stopping reports whether the task in progress should be abandoned.
func (p *Processor) stopping(ctx context.Context) bool {
	return p.stop.Load() || ctx.Err() != nil
}
