// Package bridge confines live-object work to a single goroutine.
//
// A [Context] owns a FIFO of submitted closures and executes them one at a
// time on the goroutine that calls [Context.Run]. Other goroutines hand it
// work with [Call], which blocks for a result, or [Context.Post], which does
// not. Both return a failure value instead of hanging once the context has
// shut down, and a panicking closure is reported as a failed call.
//
//	ctx := bridge.New(bridge.WithLogger(logger))
//	go ctx.Run(context.Background())
//	defer ctx.Close()
//
//	n, ok := bridge.Call(ctx, func() int { return world.Len() })
//	if !ok {
//	    // context gone, treat as failure
//	}
package bridge

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type job struct {
	fn func()
}

// Context is a serial executor. The zero value is not usable; use [New].
type Context struct {
	mu      sync.Mutex
	queue   []job
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
	started bool

	idleEvery time.Duration
	idle      func()
	logger    *log.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *log.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithIdle runs fn on the context's goroutine every interval while the
// queue is empty. It is how the owner schedules background collection.
func WithIdle(interval time.Duration, fn func()) Option {
	return func(c *Context) {
		c.idleEvery = interval
		c.idle = fn
	}
}

// New creates a context. Nothing executes until Run is called.
func New(opts ...Option) *Context {
	c := &Context{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c
}

// Run executes submitted work on the calling goroutine until Close is called
// and the queue has drained, or until ctx is cancelled. Work still queued
// when ctx is cancelled is dropped and its callers see a failed call.
func (c *Context) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("bridge: Run called twice")
	}
	c.started = true
	c.mu.Unlock()
	defer close(c.stopped)

	var tick <-chan time.Time
	if c.idle != nil && c.idleEvery > 0 {
		t := time.NewTicker(c.idleEvery)
		defer t.Stop()
		tick = t.C
	}

	for {
		if err := ctx.Err(); err != nil {
			c.shutdown()
			return err
		}
		j, ok, done := c.next()
		if ok {
			c.exec(j)
			continue
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-c.wake:
		case <-tick:
			c.exec(job{fn: c.idle})
		}
	}
}

// next pops one job. done is true once the context is closed and empty.
func (c *Context) next() (j job, ok, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) > 0 {
		j = c.queue[0]
		c.queue[0] = job{}
		c.queue = c.queue[1:]
		return j, true, false
	}
	return job{}, false, c.closed
}

func (c *Context) exec(j job) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("bridge: recovered panic", "panic", r)
		}
	}()
	j.fn()
}

func (c *Context) shutdown() {
	c.mu.Lock()
	c.closed = true
	c.queue = nil
	c.mu.Unlock()
}

func (c *Context) enqueue(j job) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, j)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// Post submits fn without waiting. It reports whether fn was accepted.
// Accepted work runs after everything submitted before it.
func (c *Context) Post(fn func()) bool {
	return c.enqueue(job{fn: fn})
}

// Close stops accepting work. Work already accepted still runs; Close does
// not wait for it. Use Done to wait for the loop to exit.
func (c *Context) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run has returned.
func (c *Context) Done() <-chan struct{} { return c.stopped }

// Closed reports whether the context has stopped accepting work.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Call runs fn on the context's goroutine and returns its result.
//
// ok is false when the context no longer accepts work, when it stopped
// before running fn, or when fn panicked. Call must not be used from inside
// a closure already running on c; that would deadlock.
func Call[T any](c *Context, fn func() T) (result T, ok bool) {
	type reply struct {
		v  T
		ok bool
	}
	ch := make(chan reply, 1)
	accepted := c.enqueue(job{fn: func() {
		r := reply{}
		defer func() { ch <- r }()
		r.v = fn()
		r.ok = true
	}})
	if !accepted {
		return result, false
	}

	select {
	case r := <-ch:
		return r.v, r.ok
	case <-c.stopped:
		// The loop may have finished our job just before exiting.
		select {
		case r := <-ch:
			return r.v, r.ok
		default:
			return result, false
		}
	}
}

// Do is Call for closures that only report success.
func Do(c *Context, fn func() bool) bool {
	v, ok := Call(c, fn)
	return ok && v
}
