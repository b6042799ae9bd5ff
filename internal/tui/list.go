package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/home"
	"github.com/sadopc/taskflow/internal/store"
)

type listModel struct {
	home   *home.Model
	width  int
	height int

	state  home.State
	cursor int

	searching bool
	search    textinput.Model
	spinner   spinner.Model
	filter    filterModel
	now       func() time.Time
}

func newListModel(h *home.Model) listModel {
	ti := textinput.New()
	ti.Placeholder = "Search titles and content"
	ti.Prompt = "/ "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return listModel{
		home:    h,
		state:   h.Current(),
		search:  ti,
		spinner: sp,
		filter:  newFilterModel(),
		now:     time.Now,
	}
}

func (l listModel) Init() tea.Cmd {
	return l.spinner.Tick
}

func (l *listModel) setSize(w, h int) {
	l.width = w
	l.height = h
	l.search.Width = max(10, w-12)
	l.filter.setSize(w, h)
}

func (l listModel) isFormActive() bool {
	return l.searching || l.filter.formActive
}

// selected returns the task under the cursor.
func (l listModel) selected() (store.Task, bool) {
	if l.cursor < 0 || l.cursor >= len(l.state.Tasks) {
		return store.Task{}, false
	}
	return l.state.Tasks[l.cursor], true
}

func (l listModel) update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case homeStateMsg:
		l.state = msg.state
		l.clampCursor()
		return l, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd
	}

	if l.filter.formActive {
		var cmd tea.Cmd
		var actions []home.Action
		l.filter, cmd, actions = l.filter.update(msg)
		if len(actions) > 0 {
			return l, dispatch(l.home, actions...)
		}
		return l, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if l.searching {
			return l.updateSearch(msg)
		}
		return l.updateList(msg)
	}
	return l, nil
}

func (l listModel) updateSearch(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		l.searching = false
		l.search.Blur()
		return l, nil
	case "esc":
		l.searching = false
		l.search.Blur()
		l.search.SetValue("")
		l.home.SetSearchQuery("")
		return l, nil
	}

	before := l.search.Value()
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	if v := l.search.Value(); v != before {
		l.home.SetSearchQuery(v)
	}
	return l, cmd
}

func (l listModel) updateList(msg tea.KeyMsg) (listModel, tea.Cmd) {
	st := l.state.Settings
	switch {
	case key.Matches(msg, keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, keys.Down):
		if l.cursor < len(l.state.Tasks)-1 {
			l.cursor++
		}
	case key.Matches(msg, keys.Search):
		l.searching = true
		cmd := l.search.Focus()
		return l, cmd
	case key.Matches(msg, keys.Back):
		if l.search.Value() != "" {
			l.search.SetValue("")
			l.home.SetSearchQuery("")
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := l.selected(); ok && t.ID != nil {
			return l, l.deleteTask(*t.ID)
		}
	case key.Matches(msg, keys.Undo):
		return l, l.restoreTask()
	case key.Matches(msg, keys.Filter):
		var cmd tea.Cmd
		l.filter, cmd = l.filter.open(st)
		return l, cmd
	case key.Matches(msg, keys.Sort):
		return l, dispatch(l.home, home.SortTypeChanged{SortType: st.SortType.Next()})
	case key.Matches(msg, keys.Reverse):
		return l, dispatch(l.home, home.SortDirectionChanged{Direction: st.SortDirection.Toggle()})
	case key.Matches(msg, keys.ShowCompleted):
		return l, dispatch(l.home, home.ShowCompletedChanged{Show: !st.ShowCompletedTasks})
	case key.Matches(msg, keys.ClearFilters):
		return l, dispatch(l.home, home.ClearFilters{})
	}
	return l, nil
}

func (l listModel) deleteTask(id int64) tea.Cmd {
	h := l.home
	return func() tea.Msg {
		err := h.DeleteTask(context.Background(), id)
		// A missing task is reported through DeleteFailedEvent.
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
		}
		return nil
	}
}

func (l listModel) restoreTask() tea.Cmd {
	h := l.home
	if !h.CanRestore() {
		return func() tea.Msg { return statusMsg{text: "Nothing to undo"} }
	}
	return func() tea.Msg {
		if err := h.RestoreDeletedTask(context.Background()); err != nil {
			return statusMsg{text: fmt.Sprintf("Undo error: %v", err), isError: true}
		}
		return statusMsg{text: "Task restored", isSuccess: true}
	}
}

func (l *listModel) clampCursor() {
	if l.cursor >= len(l.state.Tasks) {
		l.cursor = max(0, len(l.state.Tasks)-1)
	}
}

// visibleRows is how many task rows fit the panel.
func (l listModel) visibleRows() int {
	return max(3, l.height-10)
}

func (l listModel) view() string {
	if l.filter.formActive {
		return l.filter.view()
	}

	w := l.width - 4
	var rows []string
	rows = append(rows, l.renderTitle())
	rows = append(rows, l.renderSearch())
	rows = append(rows, "")

	switch {
	case l.state.IsLoading:
		rows = append(rows, l.spinner.View()+" "+mutedStyle.Render("Loading tasks..."))
	case len(l.state.Tasks) == 0 && l.state.IsFilterApplied():
		rows = append(rows, mutedStyle.Render("No tasks match. Press x to clear filters."))
	case len(l.state.Tasks) == 0:
		rows = append(rows, mutedStyle.Render("No tasks yet. Press n to create one."))
	default:
		rows = append(rows, l.renderTable(w)...)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  /: search  n: new  enter: edit  d: delete  u: undo  f: filter  s/r: sort  c: completed"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (l listModel) renderTitle() string {
	shown := len(l.state.Tasks)
	count := fmt.Sprintf("%d of %d", shown, l.state.TasksCount)
	if l.state.IsFilterApplied() {
		count += " " + accentStyle.Render("(filtered)")
	}

	st := l.state.Settings
	arrow := "↓"
	if st.SortDirection == store.SortAsc {
		arrow = "↑"
	}
	sortInfo := fmt.Sprintf("sort: %s %s", sortLabel(st.SortType), arrow)
	if st.ShowCompletedTasks {
		sortInfo += "  +completed"
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Tasks"), "  ",
		mutedStyle.Render(count), "  ",
		subtitleStyle.Render(sortInfo),
		l.renderActiveFilters(),
	)
}

func (l listModel) renderActiveFilters() string {
	st := l.state.Settings
	var parts []string
	for _, p := range st.FilterByPriority {
		parts = append(parts, p.Label())
	}
	for _, s := range st.FilterByStatus {
		parts = append(parts, s.Label())
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + highlightStyle.Render("["+strings.Join(parts, ", ")+"]")
}

func (l listModel) renderSearch() string {
	if l.searching || l.search.Value() != "" {
		return l.search.View()
	}
	return mutedStyle.Render("Press / to search")
}

func (l listModel) renderTable(w int) []string {
	titleWidth := max(12, w-44)
	var rows []string
	header := mutedStyle.Render(fmt.Sprintf("  %-*s %-12s %-10s %-12s", titleWidth, "Title", "Status", "Priority", "Updated"))
	rows = append(rows, header)

	start, end := l.window()
	now := l.now()
	for i := start; i < end; i++ {
		t := l.state.Tasks[i]
		cursor := "  "
		style := normalItemStyle
		if t.Status == store.StatusCompleted {
			style = completedItemStyle
		}
		if i == l.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		title := t.Title
		if strings.TrimSpace(title) == "" {
			title = firstLine(t.Content)
		}
		title = truncate(title, titleWidth)

		row := style.Render(fmt.Sprintf("%s%-*s ", cursor, titleWidth, title)) +
			lipgloss.NewStyle().Width(13).Render(statusBadge(t.Status)) +
			lipgloss.NewStyle().Width(11).Render(priorityBadge(t.Priority)) +
			mutedStyle.Render(formatAge(now, t.ChangedAt))
		rows = append(rows, row)
	}
	if end < len(l.state.Tasks) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(l.state.Tasks)-end)))
	}
	return rows
}

// window returns the slice of tasks to render so the cursor stays visible.
func (l listModel) window() (int, int) {
	n := len(l.state.Tasks)
	size := l.visibleRows()
	if n <= size {
		return 0, n
	}
	start := l.cursor - size/2
	start = max(0, min(start, n-size))
	return start, start + size
}
