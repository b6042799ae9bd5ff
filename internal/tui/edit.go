package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/editor"
)

const (
	focusTitle = iota
	focusContent
)

// editModel renders an editor.Session. The session is the source of truth:
// text typed into the widgets is pushed into it, and undo, redo, revert and
// store updates are copied back into the widgets.
type editModel struct {
	session *editor.Session
	stateCh <-chan editor.State
	stop    func()

	width  int
	height int

	state   editor.State
	title   textinput.Model
	content textarea.Model
	focus   int
}

func newEditModel(src editor.TaskSource, taskID int64, opts ...editor.Option) editModel {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.Prompt = ""
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Write something..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	s := editor.Open(src, taskID, opts...)
	ch, stop := s.State().Subscribe()

	e := editModel{
		session: s,
		stateCh: ch,
		stop:    stop,
		title:   ti,
		content: ta,
	}
	e.sync()
	e.title.Focus()
	return e
}

func (e editModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEditState(e.stateCh))
}

func (e *editModel) setSize(w, h int) {
	e.width = w
	e.height = h
	e.title.Width = max(10, w-12)
	e.content.SetWidth(max(10, w-10))
	e.content.SetHeight(max(3, h-14))
}

// sync copies the session state into the widgets, leaving them untouched
// when they already agree so the cursor does not jump.
func (e *editModel) sync() {
	e.state = e.session.Current()
	if e.title.Value() != e.state.Title {
		e.title.SetValue(e.state.Title)
	}
	if e.content.Value() != e.state.Content {
		e.content.SetValue(e.state.Content)
	}
}

// release drops the widget subscription and closes the session.
func (e editModel) release() {
	if e.stop != nil {
		e.stop()
	}
	e.session.Close()
}

func (e editModel) update(msg tea.Msg) (editModel, tea.Cmd) {
	switch msg := msg.(type) {
	case editStateMsg:
		// Ignore a reader left over from an earlier session.
		if msg.ch != e.stateCh {
			return e, nil
		}
		e.sync()
		return e, waitForEditState(e.stateCh)

	case tea.KeyMsg:
		return e.updateKeys(msg)
	}

	var cmd tea.Cmd
	if e.focus == focusTitle {
		e.title, cmd = e.title.Update(msg)
	} else {
		e.content, cmd = e.content.Update(msg)
	}
	return e, cmd
}

func (e editModel) updateKeys(msg tea.KeyMsg) (editModel, tea.Cmd) {
	switch {
	case key.Matches(msg, editKeys.Close):
		return e, e.saveAndClose()
	case key.Matches(msg, editKeys.Delete):
		return e, e.deleteAndClose()
	}

	// Edits and saves made before the task arrives would overwrite it.
	if e.state.IsLoading {
		return e, nil
	}

	switch {
	case key.Matches(msg, editKeys.Save):
		return e, e.save()
	case key.Matches(msg, editKeys.Undo):
		if !e.session.Undo() {
			return e, func() tea.Msg { return statusMsg{text: "Nothing to undo"} }
		}
		e.sync()
		return e, nil
	case key.Matches(msg, editKeys.Redo):
		if !e.session.Redo() {
			return e, func() tea.Msg { return statusMsg{text: "Nothing to redo"} }
		}
		e.sync()
		return e, nil
	case key.Matches(msg, editKeys.Revert):
		e.session.Revert()
		e.sync()
		return e, func() tea.Msg { return statusMsg{text: "Changes reverted"} }
	case key.Matches(msg, editKeys.CycleStatus):
		e.session.SetStatus(e.state.Status.Next())
		e.sync()
		return e, nil
	case key.Matches(msg, editKeys.CyclePriority):
		e.session.SetPriority(e.state.Priority.Next())
		e.sync()
		return e, nil
	case key.Matches(msg, editKeys.NextField):
		cmd := e.toggleFocus()
		return e, cmd
	}

	var cmd tea.Cmd
	if e.focus == focusTitle {
		before := e.title.Value()
		e.title, cmd = e.title.Update(msg)
		if v := e.title.Value(); v != before {
			e.session.SetTitle(v)
			e.state = e.session.Current()
		}
	} else {
		before := e.content.Value()
		e.content, cmd = e.content.Update(msg)
		if v := e.content.Value(); v != before {
			e.session.SetContent(v)
			e.state = e.session.Current()
		}
	}
	return e, cmd
}

func (e *editModel) toggleFocus() tea.Cmd {
	if e.focus == focusTitle {
		e.focus = focusContent
		e.title.Blur()
		return e.content.Focus()
	}
	e.focus = focusTitle
	e.content.Blur()
	return e.title.Focus()
}

func (e editModel) save() tea.Cmd {
	s := e.session
	return func() tea.Msg {
		if err := s.Save(context.Background()); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return statusMsg{text: "Task saved", isSuccess: true}
	}
}

// saveAndClose saves pending changes and leaves the editor. A failed
// save keeps the editor open.
func (e editModel) saveAndClose() tea.Cmd {
	s := e.session
	return func() tea.Msg {
		if s.ShouldSave() {
			if err := s.Save(context.Background()); err != nil {
				return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
			}
		}
		return editClosedMsg{}
	}
}

// deleteAndClose discards the edit and hands a stored task to the list for
// deletion, so undo works the same as deleting from the list.
func (e editModel) deleteAndClose() tea.Cmd {
	id := e.session.ID()
	return func() tea.Msg {
		return editClosedMsg{deleteID: id}
	}
}

func (e editModel) view() string {
	w := e.width - 4
	st := e.state

	heading := "New task"
	if st.ID != nil {
		heading = fmt.Sprintf("Task #%d", *st.ID)
	}
	if st.Changed {
		heading += " " + warningStyle.Render("● unsaved")
	}
	if st.IsLoading {
		heading += " " + mutedStyle.Render("loading...")
	}

	meta := lipgloss.JoinHorizontal(lipgloss.Bottom,
		mutedStyle.Render("status "), statusBadge(st.Status),
		mutedStyle.Render("   priority "), priorityBadge(st.Priority),
	)
	stamps := mutedStyle.Render(fmt.Sprintf("created %s   changed %s",
		formatStamp(st.CreatedAt), formatStamp(st.ChangedAt)))

	titleField := blurredFieldStyle.Render(e.title.View())
	contentField := blurredFieldStyle.Render(e.content.View())
	if e.focus == focusTitle {
		titleField = focusedFieldStyle.Render(e.title.View())
	} else {
		contentField = focusedFieldStyle.Render(e.content.View())
	}

	var hist []string
	if st.CanUndo {
		hist = append(hist, "ctrl+z undo")
	}
	if st.CanRedo {
		hist = append(hist, "ctrl+y redo")
	}
	historyLine := mutedStyle.Render("  " + strings.Join(hist, "  "))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(heading),
		meta,
		stamps,
		"",
		titleField,
		"",
		contentField,
		"",
		historyLine,
		mutedStyle.Render("  ctrl+s: save  ctrl+t: status  ctrl+p: priority  ctrl+r: revert  ctrl+d: delete  esc: close"),
	))
}
