package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nodedocs/pkg/notify"
)

var (
	boardHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	boardDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BoardModel - live task board
// =============================================================================

// boardMsg carries a board snapshot and the channel that closes at the
// next change after it was taken.
type boardMsg struct {
	items []notify.Snapshot
	next  <-chan struct{}
}

// BoardModel is the bubbletea model that renders a notify.Board.
type BoardModel struct {
	board        *notify.Board
	items        []notify.Snapshot
	exitWhenDone bool
	// Aborted is set when the user quit before every task finished.
	Aborted bool
	now     func() time.Time
}

// NewBoardModel creates a board model. With exitWhenDone the program quits
// once every notification has expired.
func NewBoardModel(board *notify.Board, exitWhenDone bool) BoardModel {
	return BoardModel{board: board, exitWhenDone: exitWhenDone, now: time.Now}
}

func (m BoardModel) Init() tea.Cmd {
	return snapshotBoard(m.board)
}

func snapshotBoard(b *notify.Board) tea.Cmd {
	return func() tea.Msg {
		next := b.Changed()
		return boardMsg{items: b.List(), next: next}
	}
}

func waitBoard(b *notify.Board, next <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-next
		return snapshotBoard(b)()
	}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = !m.done()
			return m, tea.Quit
		}
	case boardMsg:
		m.items = msg.items
		if m.exitWhenDone && m.done() {
			return m, tea.Quit
		}
		return m, waitBoard(m.board, msg.next)
	}
	return m, nil
}

// done reports whether there is at least one notification and all have
// expired.
func (m BoardModel) done() bool {
	if len(m.items) == 0 {
		return false
	}
	for _, it := range m.items {
		if !it.Expired {
			return false
		}
	}
	return true
}

func (m BoardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Documentation Tasks"))
	b.WriteString("\n")
	b.WriteString(boardDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(boardDimStyle.Render("  waiting for tasks"))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, len(m.items))
	for i, it := range m.items {
		rows[i] = []string{stateIcon(it.State), it.Title, it.Text, formatAge(m.now().Sub(it.Updated))}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Task", "Status", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return boardHeaderStyle
			}
			if row < len(m.items) && m.items[row].Expired && col != 0 {
				return boardDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// runBoard shows the board until the user quits, ctx is done, or (with
// exitWhenDone) every task has finished. Quitting early returns
// context.Canceled so the caller stops its work.
func runBoard(ctx context.Context, board *notify.Board, exitWhenDone bool) error {
	p := tea.NewProgram(NewBoardModel(board, exitWhenDone), tea.WithContext(ctx))
	final, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("task board: %w", err)
	}
	if m, ok := final.(BoardModel); ok && m.Aborted {
		return context.Canceled
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
