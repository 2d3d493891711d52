package bridge

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func start(t *testing.T, opts ...Option) *Context {
	t.Helper()
	c := New(opts...)
	go c.Run(context.Background())
	t.Cleanup(func() {
		c.Close()
		<-c.Done()
	})
	return c
}

func TestCallReturnsResult(t *testing.T) {
	c := start(t)
	got, ok := Call(c, func() int { return 42 })
	if !ok || got != 42 {
		t.Errorf("Call() = %d, %v, want 42, true", got, ok)
	}
}

func TestCallRunsOnOneGoroutine(t *testing.T) {
	c := start(t)

	// Unsynchronized state is safe as long as only the loop touches it.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Call(c, func() struct{} { counter++; return struct{}{} })
		}()
	}
	wg.Wait()

	got, _ := Call(c, func() int { return counter })
	if got != 50 {
		t.Errorf("counter = %d, want 50", got)
	}
}

func TestPostPreservesOrder(t *testing.T) {
	c := start(t)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		if !c.Post(func() { order = append(order, i) }) {
			t.Fatalf("Post(%d) rejected", i)
		}
	}
	got, _ := Call(c, func() []int { return append([]int(nil), order...) })
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCallPanicFails(t *testing.T) {
	c := start(t)
	_, ok := Call(c, func() int { panic("boom") })
	if ok {
		t.Error("Call(panicking fn) ok = true")
	}
	// The loop survives.
	if got, ok := Call(c, func() string { return "alive" }); !ok || got != "alive" {
		t.Errorf("Call() after panic = %q, %v", got, ok)
	}
}

func TestCallAfterClose(t *testing.T) {
	c := New()
	go c.Run(context.Background())
	c.Close()
	<-c.Done()

	if _, ok := Call(c, func() int { return 1 }); ok {
		t.Error("Call() after Close ok = true")
	}
	if c.Post(func() {}) {
		t.Error("Post() after Close accepted work")
	}
}

func TestCloseDrainsAcceptedWork(t *testing.T) {
	c := New()
	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		c.Post(func() { ran.Add(1) })
	}
	c.Close()
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := ran.Load(); got != 3 {
		t.Errorf("ran = %d, want 3", got)
	}
}

func TestCallFailsWhenContextCancelled(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	c.Post(func() { <-block })
	go c.Run(ctx)

	result := make(chan bool, 1)
	go func() {
		_, ok := Call(c, func() int { return 1 })
		result <- ok
	}()

	// Let the Call queue up behind the blocked job.
	time.Sleep(10 * time.Millisecond)
	cancel()
	close(block)

	select {
	case ok := <-result:
		if ok {
			t.Error("Call() ok = true after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Call() hung after cancellation")
	}
}

func TestIdleHook(t *testing.T) {
	var ticks atomic.Int32
	c := start(t, WithIdle(5*time.Millisecond, func() { ticks.Add(1) }))

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ticks.Load() == 0 {
		t.Error("idle hook never ran")
	}
	_ = c
}

func TestRunTwice(t *testing.T) {
	c := start(t)
	Call(c, func() int { return 0 })
	if err := c.Run(context.Background()); err == nil {
		t.Error("second Run() error = nil")
	}
}

func TestDo(t *testing.T) {
	c := start(t)
	if !Do(c, func() bool { return true }) {
		t.Error("Do(true) = false")
	}
	if Do(c, func() bool { return false }) {
		t.Error("Do(false) = true")
	}
}
