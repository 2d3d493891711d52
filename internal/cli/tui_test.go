package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/nodedocs/pkg/notify"
)

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestBoardModelRendersItems(t *testing.T) {
	board := notify.NewBoard()
	h := board.Add("Engine Docs")
	h.SetText(notify.TextInProgress)
	h.SetState(notify.InProgress)

	m := NewBoardModel(board, true)
	msg := m.Init()()
	next, cmd := m.Update(msg)
	if isQuit(cmd) {
		t.Fatal("board quit with a task still running")
	}

	view := next.View()
	for _, want := range []string{"Documentation Tasks", "Engine Docs", notify.TextInProgress} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBoardModelWaitsForChange(t *testing.T) {
	board := notify.NewBoard()
	m := NewBoardModel(board, false)
	next, cmd := m.Update(m.Init()())

	got := make(chan tea.Msg, 1)
	go func() { got <- cmd() }()
	select {
	case <-got:
		t.Fatal("wait command returned before the board changed")
	case <-time.After(50 * time.Millisecond):
	}

	board.Add("Props")
	select {
	case msg := <-got:
		next, _ = next.Update(msg)
	case <-time.After(time.Second):
		t.Fatal("wait command did not return after the board changed")
	}
	if !strings.Contains(next.View(), "Props") {
		t.Errorf("view missing new task:\n%s", next.View())
	}
}

func TestBoardModelExitWhenDone(t *testing.T) {
	tests := []struct {
		name         string
		exitWhenDone bool
		expire       bool
		wantQuit     bool
	}{
		{"done", true, true, true},
		{"running", true, false, false},
		{"watching", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := notify.NewBoard()
			h := board.Add("Engine Docs")
			if tt.expire {
				h.SetState(notify.Success)
				h.Expire()
			}
			m := NewBoardModel(board, tt.exitWhenDone)
			_, cmd := m.Update(m.Init()())
			if got := isQuit(cmd); got != tt.wantQuit {
				t.Errorf("quit = %v, want %v", got, tt.wantQuit)
			}
		})
	}
}

func TestBoardModelEmptyNeverDone(t *testing.T) {
	m := NewBoardModel(notify.NewBoard(), true)
	next, cmd := m.Update(m.Init()())
	if isQuit(cmd) {
		t.Error("empty board quit")
	}
	if !strings.Contains(next.View(), "waiting for tasks") {
		t.Errorf("view = %q", next.View())
	}
}

func TestBoardModelQuitKey(t *testing.T) {
	board := notify.NewBoard()
	board.Add("Engine Docs")
	m := NewBoardModel(board, true)
	next, _ := m.Update(m.Init()())

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !isQuit(cmd) {
		t.Fatal("q did not quit")
	}
	if !next.(BoardModel).Aborted {
		t.Error("quitting with a pending task should mark the board aborted")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "now"},
		{5 * time.Second, "5s ago"},
		{3 * time.Minute, "3m ago"},
		{2 * time.Hour, "2h ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
