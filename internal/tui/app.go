package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/editor"
	"github.com/sadopc/taskflow/internal/export"
	"github.com/sadopc/taskflow/internal/home"
	"github.com/sadopc/taskflow/internal/store"
	log "github.com/sirupsen/logrus"
)

// TaskStore is what the app reads and writes besides the list model.
type TaskStore interface {
	editor.TaskSource
	StatsSource
}

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON}

// App is the root Bubble Tea model.
type App struct {
	home      *home.Model
	store     TaskStore
	exportDir string
	now       func() time.Time

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	list    listModel
	stats   statsModel
	editing bool
	edit    editModel

	help      help.Model
	status    string
	statusErr bool
	statusOK  bool

	stateCh   <-chan home.State
	stopState func()
}

// NewApp wires the list model and the task store into the UI. Exports are
// written to exportDir. Call Close when the program exits.
func NewApp(h *home.Model, s TaskStore, exportDir string) App {
	hm := help.New()
	hm.ShowAll = false

	ch, stop := h.State().Subscribe()

	return App{
		home:       h,
		store:      s,
		exportDir:  exportDir,
		now:        time.Now,
		activeView: viewTasks,
		list:       newListModel(h),
		stats:      newStatsModel(s),
		help:       hm,
		stateCh:    ch,
		stopState:  stop,
	}
}

// Close releases the app's subscriptions and any open edit session.
func (a App) Close() {
	if a.editing {
		a.edit.release()
	}
	a.stopState()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.list.Init(),
		waitForHomeState(a.stateCh),
		waitForHomeEvent(a.home.Events()),
	)
}

func (a App) contentHeight() int {
	return a.height - 4 // header + footer
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.list.setSize(a.width, a.contentHeight())
		a.stats.setSize(a.width, a.contentHeight())
		if a.editing {
			a.edit.setSize(a.width, a.contentHeight())
		}
		return a, nil

	case tea.KeyMsg:
		if a.editing {
			if key.Matches(msg, editKeys.ForceQuit) {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.edit, cmd = a.edit.update(msg)
			return a, cmd
		}

		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. search or form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.New):
			return a.openEditor(editor.NewTask)
		case a.activeView == viewTasks && key.Matches(msg, keys.Open):
			if t, ok := a.list.selected(); ok && t.ID != nil {
				return a.openEditor(*t.ID)
			}
			return a, nil
		}

	case homeStateMsg:
		var cmd tea.Cmd
		a.list, cmd = a.list.update(msg)
		cmds := []tea.Cmd{cmd, waitForHomeState(a.stateCh)}
		if a.activeView == viewStats && !msg.state.IsLoading {
			cmds = append(cmds, a.stats.refresh())
		}
		return a, tea.Batch(cmds...)

	case homeEventMsg:
		a.handleEvent(msg.event)
		return a, waitForHomeEvent(a.home.Events())

	case editStateMsg:
		if !a.editing {
			return a, nil
		}
		var cmd tea.Cmd
		a.edit, cmd = a.edit.update(msg)
		return a, cmd

	case editClosedMsg:
		if !a.editing {
			return a, nil
		}
		a.edit.release()
		a.editing = false
		a.edit = editModel{}
		if msg.deleteID != nil {
			return a, a.list.deleteTask(*msg.deleteID)
		}
		return a, nil

	case statsDataMsg:
		a.stats, _ = a.stats.update(msg)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.list, cmd = a.list.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		a.statusOK = msg.isSuccess
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.statusOK = true
		a.exportPicking = false
		return a, nil
	}

	if a.editing {
		var cmd tea.Cmd
		a.edit, cmd = a.edit.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a *App) handleEvent(e home.Event) {
	switch e := e.(type) {
	case home.UndoDeleteEvent:
		name := e.Task.Title
		if name == "" {
			name = firstLine(e.Task.Content)
		}
		a.status = fmt.Sprintf("Deleted %q. Press u to undo", truncate(name, 30))
		a.statusErr = false
		a.statusOK = false
	case home.DeleteFailedEvent:
		a.status = e.Message
		a.statusErr = true
		a.statusOK = false
	}
}

func (a App) openEditor(id int64) (tea.Model, tea.Cmd) {
	a.edit = newEditModel(a.store, id)
	a.edit.setSize(a.width, a.contentHeight())
	a.editing = true
	a.status = ""
	a.statusOK = false
	return a, a.edit.Init()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.list, cmd = a.list.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.list.isFormActive()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewStats:
		return a.stats.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.editing:
		content = a.edit.view()
	case a.activeView == viewTasks:
		content = a.list.view()
	case a.activeView == viewStats:
		content = a.stats.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskflow")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	var helpView string
	if a.editing {
		helpView = a.help.View(editKeys)
	} else {
		helpView = a.help.View(keys)
	}

	status := ""
	if a.status != "" {
		style := mutedStyle
		switch {
		case a.statusErr:
			style = errorStyle
		case a.statusOK:
			style = successStyle
		}
		status = style.Render(" " + a.status)
	}

	// Pending undo indicator
	undo := ""
	if a.home.CanRestore() {
		undo = warningStyle.Render(" ↺ u")
	}

	left := footerStyle.Render(helpView)
	right := undo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("%d tasks shown in the list", len(a.list.state.Tasks))))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f.Label()))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the tasks currently shown in the list.
func (a App) doExport(f export.Format) tea.Cmd {
	tasks := append([]store.Task(nil), a.list.state.Tasks...)
	dir, now := a.exportDir, a.now()
	return func() tea.Msg {
		path, err := export.ToDir(f, tasks, dir, now)
		if err != nil {
			log.WithField("format", f).WithError(err).Error("export failed")
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.WithFields(log.Fields{"path": path, "tasks": len(tasks)}).Info("tasks exported")
		return exportDoneMsg{path: path}
	}
}
