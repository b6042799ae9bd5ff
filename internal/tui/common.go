package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/taskflow/internal/editor"
	"github.com/sadopc/taskflow/internal/home"
	"github.com/sadopc/taskflow/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewStats
)

var viewNames = []string{"Tasks", "Stats"}

// --- Messages ---

type homeStateMsg struct {
	state home.State
}

type homeEventMsg struct {
	event home.Event
}

// editStateMsg signals that the edit session published a new state. The
// receiver reads Session.Current, which may be newer than the published one.
type editStateMsg struct {
	ch <-chan editor.State
}

type editClosedMsg struct {
	// deleteID is set when the editor asked for its task to be deleted.
	deleteID *int64
}

type statusMsg struct {
	text      string
	isError   bool
	isSuccess bool
}

type exportDoneMsg struct {
	path string
}

type statsDataMsg struct {
	byStatus   []store.Count
	byPriority []store.Count
	err        error
}

// --- Stream bridges ---

// waitForHomeState delivers the next list state. It returns nil once the
// subscription is closed.
func waitForHomeState(ch <-chan home.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return homeStateMsg{state: st}
	}
}

func waitForHomeEvent(ch <-chan home.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return homeEventMsg{event: e}
	}
}

func waitForEditState(ch <-chan editor.State) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return editStateMsg{ch: ch}
	}
}

// --- Helpers ---

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// firstLine returns the first non-empty line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatAge(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
