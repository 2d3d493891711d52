// Package notify shows task progress to the user.
//
// A [Sink] creates one [Handle] per task. The processor moves the handle
// through pending, in-progress and a terminal success or fail state, then
// expires it. Sinks must be safe for use from any goroutine.
package notify

import (
	"fmt"
	"sync"
	"time"
)

// State is the visual state of a notification.
type State int

const (
	Pending State = iota
	InProgress
	Success
	Fail
)

var stateNames = [...]string{"pending", "in_progress", "success", "fail"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether s is success or fail.
func (s State) Terminal() bool { return s == Success || s == Fail }

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Handle is one visible notification.
type Handle interface {
	SetText(text string)
	SetState(state State)
	// Expire removes the notification once it has been shown.
	Expire()
}

// Sink creates notifications.
type Sink interface {
	Add(title string) Handle
}

// Notification texts used by the processor.
const (
	TextWaiting    = "Doc gen waiting"
	TextInProgress = "Doc gen in progress"
	TextCompleted  = "Doc gen completed"
	TextFailed     = "Doc gen failed"
	TextNoNodes    = "Doc gen failed - No nodes found"
)

// Snapshot is a point-in-time copy of a notification.
type Snapshot struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	State   State     `json:"state"`
	Expired bool      `json:"expired"`
	Updated time.Time `json:"updated"`
}

// Board keeps notifications in memory. The HTTP server and the task board
// read from it; tests use it to observe transitions.
type Board struct {
	mu      sync.Mutex
	items   []*boardItem
	history map[int][]State
	changed chan struct{}
}

type boardItem struct {
	board *Board
	snap  Snapshot
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{history: make(map[int][]State), changed: make(chan struct{})}
}

// Add creates a pending notification.
func (b *Board) Add(title string) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	it := &boardItem{board: b, snap: Snapshot{
		ID:      len(b.items) + 1,
		Title:   title,
		State:   Pending,
		Updated: time.Now(),
	}}
	b.items = append(b.items, it)
	b.history[it.snap.ID] = []State{Pending}
	b.notifyLocked()
	return it
}

// List returns every notification in creation order.
func (b *Board) List() []Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Snapshot, len(b.items))
	for i, it := range b.items {
		out[i] = it.snap
	}
	return out
}

// Transitions returns the distinct states notification id went through.
func (b *Board) Transitions(id int) []State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]State(nil), b.history[id]...)
}

// Changed returns a channel closed at the next update.
func (b *Board) Changed() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed
}

func (b *Board) notifyLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}

func (it *boardItem) update(fn func(*Snapshot)) {
	b := it.board
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&it.snap)
	it.snap.Updated = time.Now()
	b.notifyLocked()
}

func (it *boardItem) SetText(text string) {
	it.update(func(s *Snapshot) { s.Text = text })
}

func (it *boardItem) SetState(state State) {
	it.update(func(s *Snapshot) {
		if s.State == state {
			return
		}
		s.State = state
		it.board.history[s.ID] = append(it.board.history[s.ID], state)
	})
}

func (it *boardItem) Expire() {
	it.update(func(s *Snapshot) { s.Expired = true })
}

// Multi fans notifications out to several sinks.
type Multi []Sink

// Add creates a notification on every sink.
func (m Multi) Add(title string) Handle {
	hs := make(multiHandle, 0, len(m))
	for _, s := range m {
		if s != nil {
			hs = append(hs, s.Add(title))
		}
	}
	return hs
}

type multiHandle []Handle

func (m multiHandle) SetText(text string) {
	for _, h := range m {
		h.SetText(text)
	}
}

func (m multiHandle) SetState(state State) {
	for _, h := range m {
		h.SetState(state)
	}
}

func (m multiHandle) Expire() {
	for _, h := range m {
		h.Expire()
	}
}

var (
	_ Sink = (*Board)(nil)
	_ Sink = Multi(nil)
)
