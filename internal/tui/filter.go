package tui

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/home"
	"github.com/sadopc/taskflow/internal/store"
)

// filterModel edits sort and filter settings in one form. On submit the
// differences from the settings it was opened with become home actions.
type filterModel struct {
	width  int
	height int

	formActive bool
	form       *huh.Form
	base       store.Settings

	// Form values as pointers (survive value copies)
	sortType      *store.SortType
	sortDirection *store.SortDirection
	priorities    *[]store.Priority
	statuses      *[]store.Status
	showCompleted *bool
}

func newFilterModel() filterModel {
	st, sd := store.SortCreated, store.SortDesc
	var ps []store.Priority
	var ss []store.Status
	sc := false
	return filterModel{
		sortType:      &st,
		sortDirection: &sd,
		priorities:    &ps,
		statuses:      &ss,
		showCompleted: &sc,
	}
}

func (f *filterModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f filterModel) open(current store.Settings) (filterModel, tea.Cmd) {
	f.base = current
	*f.sortType = current.SortType
	*f.sortDirection = current.SortDirection
	*f.priorities = slices.Clone(current.FilterByPriority)
	*f.statuses = slices.Clone(current.FilterByStatus)
	*f.showCompleted = current.ShowCompletedTasks

	sortOptions := make([]huh.Option[store.SortType], len(store.SortTypes))
	for i, st := range store.SortTypes {
		sortOptions[i] = huh.NewOption(sortLabel(st), st)
	}
	priorityOptions := make([]huh.Option[store.Priority], len(store.Priorities))
	for i, p := range store.Priorities {
		priorityOptions[i] = huh.NewOption(p.Label(), p)
	}
	statusOptions := make([]huh.Option[store.Status], len(store.Statuses))
	for i, s := range store.Statuses {
		statusOptions[i] = huh.NewOption(s.Label(), s)
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[store.SortType]().Title("Sort by").
				Options(sortOptions...).Value(f.sortType),
			huh.NewSelect[store.SortDirection]().Title("Direction").
				Options(
					huh.NewOption("Ascending", store.SortAsc),
					huh.NewOption("Descending", store.SortDesc),
				).Value(f.sortDirection),
		).Title("Sort"),
		huh.NewGroup(
			huh.NewMultiSelect[store.Priority]().Title("Priority").
				Description("Nothing selected shows every priority").
				Options(priorityOptions...).Value(f.priorities),
			huh.NewMultiSelect[store.Status]().Title("Status").
				Description("Nothing selected shows every status").
				Options(statusOptions...).Value(f.statuses),
			huh.NewConfirm().Title("Show completed tasks?").
				Affirmative("Yes").Negative("No").Value(f.showCompleted),
		).Title("Filter"),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

// update returns the actions to dispatch once the form completes.
func (f filterModel) update(msg tea.Msg) (filterModel, tea.Cmd, []home.Action) {
	if !f.formActive || f.form == nil {
		return f, nil, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		return f, nil, f.actions()
	}
	return f, cmd, nil
}

func (f filterModel) actions() []home.Action {
	var out []home.Action
	if *f.sortType != f.base.SortType {
		out = append(out, home.SortTypeChanged{SortType: *f.sortType})
	}
	if *f.sortDirection != f.base.SortDirection {
		out = append(out, home.SortDirectionChanged{Direction: *f.sortDirection})
	}
	for _, p := range store.Priorities {
		if slices.Contains(*f.priorities, p) != f.base.HasPriority(p) {
			out = append(out, home.TogglePriorityFilter{Priority: p})
		}
	}
	for _, s := range store.Statuses {
		if slices.Contains(*f.statuses, s) != f.base.HasStatus(s) {
			out = append(out, home.ToggleStatusFilter{Status: s})
		}
	}
	if *f.showCompleted != f.base.ShowCompletedTasks {
		out = append(out, home.ShowCompletedChanged{Show: *f.showCompleted})
	}
	return out
}

func (f filterModel) view() string {
	if f.form == nil {
		return ""
	}
	title := titleStyle.Render("Sort & Filter")
	return panelStyle.Width(f.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View()),
	)
}

// dispatch applies actions in order on one goroutine.
func dispatch(m *home.Model, actions ...home.Action) tea.Cmd {
	if len(actions) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		for _, a := range actions {
			if err := m.HandleAction(ctx, a); err != nil {
				return statusMsg{text: "Settings error: " + err.Error(), isError: true}
			}
		}
		return nil
	}
}

func sortLabel(st store.SortType) string {
	switch st {
	case store.SortTitle:
		return "Title"
	case store.SortStatus:
		return "Status"
	case store.SortPriority:
		return "Priority"
	case store.SortCreated:
		return "Created"
	case store.SortUpdated:
		return "Updated"
	}
	return string(st)
}
