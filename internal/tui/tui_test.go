package tui

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/taskflow/internal/export"
	"github.com/sadopc/taskflow/internal/home"
	"github.com/sadopc/taskflow/internal/store"
	"github.com/sadopc/taskflow/internal/stream"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T) (App, *home.Model, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	h := home.New(s, s, home.WithDebounce(0))
	t.Cleanup(h.Close)
	app := NewApp(h, s, t.TempDir())
	t.Cleanup(app.Close)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), h, s
}

func insertTask(t *testing.T, s *store.Store, title string) int64 {
	t.Helper()
	task := store.NewTask(title, "notes for "+title, time.Now())
	id, err := s.UpsertTask(context.Background(), task)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	return id
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// loadList waits until the list model shows n tasks and copies that state
// into the app.
func loadList(t *testing.T, app App, h *home.Model, n int) App {
	t.Helper()
	eventually(t, fmt.Sprintf("%d tasks", n), func() bool {
		st := h.Current()
		return !st.IsLoading && len(st.Tasks) == n
	})
	app.list.state = h.Current()
	return app
}

func press(t *testing.T, app App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	a, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return a, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, app App, s string) App {
	t.Helper()
	for _, r := range s {
		app, _ = press(t, app, runes(string(r)))
	}
	return app
}

// ============================================================
// Helper functions
// ============================================================

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo", 3, "hé…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("\n  \n  second  \nthird"); got != "second" {
		t.Fatalf("expected second, got %q", got)
	}
	if got := firstLine(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "-"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := formatAge(now, tt.t); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFormatStamp(t *testing.T) {
	if got := formatStamp(time.Time{}); got != "-" {
		t.Fatalf("expected - for zero time, got %q", got)
	}
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	if got := formatStamp(ts); got != "2024-03-01 09:30" {
		t.Fatalf("unexpected stamp %q", got)
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 2 {
		t.Fatalf("expected 2 view names, got %d", len(viewNames))
	}
	if viewNames[viewTasks] != "Tasks" || viewNames[viewStats] != "Stats" {
		t.Fatalf("unexpected view names %v", viewNames)
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.activeView != viewTasks {
		t.Fatal("default view should be tasks")
	}
	if app.showHelp || app.exportPicking || app.editing {
		t.Fatal("help, export picker and editor should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.width = 0
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app, _, _ := newTestApp(t)
	for _, v := range []viewState{viewTasks, viewStats} {
		app.activeView = v
		if out := app.View(); out == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _, _ := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, statusMsg{text: "test status"})
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppSuccessStatus(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, statusMsg{text: "Task saved", isSuccess: true})
	if !app.statusOK || app.statusErr {
		t.Fatal("saved status should be marked as success")
	}
	app, _ = press(t, app, exportDoneMsg{path: "/tmp/tasks.csv"})
	if !app.statusOK {
		t.Fatal("export status should be marked as success")
	}
	app, _ = press(t, app, statusMsg{text: "Nothing to undo"})
	if app.statusOK || app.statusErr {
		t.Fatal("plain status should be neutral")
	}
}

func TestAppTabSwitching(t *testing.T) {
	app, _, _ := newTestApp(t)

	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activeView != viewStats || cmd == nil {
		t.Fatalf("tab should switch to stats and refresh, got view %d", app.activeView)
	}
	app, _ = press(t, app, runes("1"))
	if app.activeView != viewTasks {
		t.Fatal("1 should switch to tasks")
	}
}

func TestAppReceivesListState(t *testing.T) {
	app, h, s := newTestApp(t)
	insertTask(t, s, "first")
	eventually(t, "list state", func() bool { return len(h.Current().Tasks) == 1 })

	msg := waitForHomeState(app.stateCh)()
	app, cmd := press(t, app, msg)
	if cmd == nil {
		t.Fatal("expected the state reader to be re-armed")
	}
	// The subscription may deliver an older snapshot first.
	for len(app.list.state.Tasks) != 1 {
		app, _ = press(t, app, waitForHomeState(app.stateCh)())
	}
	if !strings.Contains(app.View(), "first") {
		t.Fatal("list should render the task title")
	}
}

// ============================================================
// List
// ============================================================

func TestListCursorMovesAndClamps(t *testing.T) {
	app, h, s := newTestApp(t)
	for i := 0; i < 3; i++ {
		insertTask(t, s, fmt.Sprintf("task %d", i))
	}
	app = loadList(t, app, h, 3)

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	if app.list.cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", app.list.cursor)
	}

	short := h.Current()
	short.Tasks = short.Tasks[:1]
	app, _ = press(t, app, homeStateMsg{state: short})
	if app.list.cursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", app.list.cursor)
	}
}

func TestListWindowKeepsCursorVisible(t *testing.T) {
	l := listModel{height: 15}
	for i := 0; i < 50; i++ {
		l.state.Tasks = append(l.state.Tasks, store.Task{Title: fmt.Sprint(i)})
	}
	for _, cursor := range []int{0, 10, 40, 49} {
		l.cursor = cursor
		start, end := l.window()
		if cursor < start || cursor >= end {
			t.Fatalf("cursor %d outside window [%d,%d)", cursor, start, end)
		}
		if end-start != l.visibleRows() {
			t.Fatalf("expected %d rows, got %d", l.visibleRows(), end-start)
		}
	}
}

func TestListSearchTypingUpdatesQuery(t *testing.T) {
	app, h, s := newTestApp(t)
	insertTask(t, s, "groceries")
	insertTask(t, s, "taxes")
	app = loadList(t, app, h, 2)

	app, _ = press(t, app, runes("/"))
	if !app.isFormActive() {
		t.Fatal("search should capture input")
	}
	// q goes into the search box instead of quitting.
	app = typeText(t, app, "taxq")
	if app.list.search.Value() != "taxq" {
		t.Fatalf("unexpected search text %q", app.list.search.Value())
	}

	eventually(t, "search applied", func() bool {
		st := h.Current()
		return st.SearchQuery == "taxq" && !st.IsLoading
	})

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.isFormActive() || app.list.search.Value() != "" {
		t.Fatal("esc should leave and clear the search")
	}
	eventually(t, "search cleared", func() bool {
		st := h.Current()
		return st.SearchQuery == "" && len(st.Tasks) == 2
	})
}

func TestListDeleteAndUndo(t *testing.T) {
	app, h, s := newTestApp(t)
	id := insertTask(t, s, "doomed")
	app = loadList(t, app, h, 1)

	app, cmd := press(t, app, runes("d"))
	if cmd == nil {
		t.Fatal("expected delete command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("unexpected delete result %#v", msg)
	}
	if !h.CanRestore() {
		t.Fatal("expected a pending undo")
	}

	ev := <-h.Events()
	app, _ = press(t, app, homeEventMsg{event: ev})
	if !strings.Contains(app.status, "Press u to undo") || app.statusErr {
		t.Fatalf("unexpected status %q", app.status)
	}

	_, cmd = press(t, app, runes("u"))
	if msg, ok := cmd().(statusMsg); !ok || msg.isError {
		t.Fatalf("unexpected undo result %#v", msg)
	}
	if _, err := s.GetTask(context.Background(), id); err != nil {
		t.Fatalf("task should be restored: %v", err)
	}
}

func TestListUndoWithoutDelete(t *testing.T) {
	app, _, _ := newTestApp(t)
	_, cmd := press(t, app, runes("u"))
	msg, ok := cmd().(statusMsg)
	if !ok || msg.text != "Nothing to undo" {
		t.Fatalf("unexpected result %#v", msg)
	}
}

func TestDeleteMissingTaskShowsError(t *testing.T) {
	app, h, _ := newTestApp(t)
	if msg := app.list.deleteTask(999)(); msg != nil {
		t.Fatalf("missing task should be reported by event, got %#v", msg)
	}
	app, _ = press(t, app, homeEventMsg{event: <-h.Events()})
	if app.status != "cannot find task with id: 999" || !app.statusErr {
		t.Fatalf("unexpected status %q (error %v)", app.status, app.statusErr)
	}
}

func TestListSortKeysDispatchActions(t *testing.T) {
	app, h, s := newTestApp(t)
	ctx := context.Background()
	app = loadList(t, app, h, 0)

	_, cmd := press(t, app, runes("s"))
	if msg := cmd(); msg != nil {
		t.Fatalf("unexpected result %#v", msg)
	}
	_, cmd = press(t, app, runes("r"))
	cmd()
	_, cmd = press(t, app, runes("c"))
	cmd()

	got, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.SortType != store.SortCreated.Next() || got.SortDirection != store.SortAsc || !got.ShowCompletedTasks {
		t.Fatalf("unexpected settings %+v", got)
	}
}

// ============================================================
// Filter form
// ============================================================

func TestFilterActionsDiffAgainstBase(t *testing.T) {
	base := store.DefaultSettings()
	base.FilterByPriority = []store.Priority{store.PriorityHigh}

	f, _ := newFilterModel().open(base)
	if !f.formActive {
		t.Fatal("form should be active after open")
	}
	*f.sortType = store.SortTitle
	*f.priorities = []store.Priority{store.PriorityLow}
	*f.statuses = []store.Status{store.StatusTodo}
	*f.showCompleted = true

	want := []home.Action{
		home.SortTypeChanged{SortType: store.SortTitle},
		home.TogglePriorityFilter{Priority: store.PriorityLow},
		home.TogglePriorityFilter{Priority: store.PriorityHigh},
		home.ToggleStatusFilter{Status: store.StatusTodo},
		home.ShowCompletedChanged{Show: true},
	}
	if got := f.actions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("actions = %#v\nwant %#v", got, want)
	}
}

func TestFilterNoChangesNoActions(t *testing.T) {
	f, _ := newFilterModel().open(store.DefaultSettings())
	if got := f.actions(); len(got) != 0 {
		t.Fatalf("expected no actions, got %#v", got)
	}
}

func TestFilterEscCancels(t *testing.T) {
	f, _ := newFilterModel().open(store.DefaultSettings())
	f, _, actions := f.update(tea.KeyMsg{Type: tea.KeyEsc})
	if f.formActive || actions != nil {
		t.Fatal("esc should close the form without actions")
	}
}

func TestDispatchAppliesActions(t *testing.T) {
	_, h, s := newTestApp(t)
	cmd := dispatch(h,
		home.TogglePriorityFilter{Priority: store.PriorityHigh},
		home.ToggleStatusFilter{Status: store.StatusInProgress},
	)
	if msg := cmd(); msg != nil {
		t.Fatalf("unexpected result %#v", msg)
	}
	got, _ := s.Settings(context.Background())
	if !got.HasPriority(store.PriorityHigh) || !got.HasStatus(store.StatusInProgress) {
		t.Fatalf("filters not applied: %+v", got)
	}
	if dispatch(h) != nil {
		t.Fatal("dispatch with no actions should be nil")
	}
}

// ============================================================
// Editor
// ============================================================

func TestEditNewTaskTypeUndoAndClose(t *testing.T) {
	app, _, s := newTestApp(t)

	app, _ = press(t, app, runes("n"))
	if !app.editing {
		t.Fatal("n should open the editor")
	}
	app = typeText(t, app, "ab")
	if cur := app.edit.session.Current(); cur.Title != "ab" || !cur.CanUndo {
		t.Fatalf("unexpected session state %+v", cur)
	}

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if app.edit.title.Value() != "a" {
		t.Fatalf("undo should restore the widget, got %q", app.edit.title.Value())
	}

	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	msg := cmd()
	if _, ok := msg.(editClosedMsg); !ok {
		t.Fatalf("expected editClosedMsg, got %#v", msg)
	}
	app, _ = press(t, app, msg)
	if app.editing {
		t.Fatal("editor should be closed")
	}

	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Title != "a" {
		t.Fatalf("expected saved task titled a, got %+v", tasks)
	}
}

func TestEditFocusAndContent(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, runes("n"))
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.edit.focus != focusContent {
		t.Fatal("tab should move focus to content")
	}
	app = typeText(t, app, "hi")
	if cur := app.edit.session.Current(); cur.Content != "hi" || cur.Title != "" {
		t.Fatalf("unexpected session state %+v", cur)
	}
	if app.activeView != viewTasks {
		t.Fatal("tab inside the editor must not switch views")
	}
}

func TestEditStatusAndPriorityKeys(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, runes("n"))
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlT})
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyCtrlP})

	cur := app.edit.session.Current()
	if cur.Status != store.StatusInProgress || cur.Priority != store.PriorityHigh {
		t.Fatalf("unexpected status %v priority %v", cur.Status, cur.Priority)
	}
	if !strings.Contains(app.View(), "In progress") {
		t.Fatal("editor should render the status")
	}
}

func TestEditOpenExistingLoadsWidgets(t *testing.T) {
	app, h, s := newTestApp(t)
	insertTask(t, s, "stored")
	app = loadList(t, app, h, 1)

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.editing {
		t.Fatal("enter should open the selected task")
	}
	eventually(t, "task loaded", func() bool { return !app.edit.session.Current().IsLoading })

	app, _ = press(t, app, editStateMsg{ch: app.edit.stateCh})
	if app.edit.title.Value() != "stored" || app.edit.content.Value() != "notes for stored" {
		t.Fatalf("widgets not synced: %q %q", app.edit.title.Value(), app.edit.content.Value())
	}
}

func TestEditIgnoresStaleStateReader(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, runes("n"))
	_, cmd := press(t, app, editStateMsg{ch: nil})
	if cmd != nil {
		t.Fatal("a message from another session must not re-arm the reader")
	}
}

func TestEditDeleteHandsOffToList(t *testing.T) {
	app, h, s := newTestApp(t)
	id := insertTask(t, s, "remove me")
	app = loadList(t, app, h, 1)

	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyCtrlD})
	msg, ok := cmd().(editClosedMsg)
	if !ok || msg.deleteID == nil || *msg.deleteID != id {
		t.Fatalf("unexpected close message %#v", msg)
	}

	app, cmd = press(t, app, msg)
	if app.editing {
		t.Fatal("editor should be closed")
	}
	cmd()
	if _, err := s.GetTask(context.Background(), id); err == nil {
		t.Fatal("task should be deleted")
	}
	if !h.CanRestore() {
		t.Fatal("delete from the editor should be undoable")
	}
}

func TestEditDeleteNewTaskDiscards(t *testing.T) {
	app, _, s := newTestApp(t)
	app, _ = press(t, app, runes("n"))
	app = typeText(t, app, "draft")
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyCtrlD})
	app, cmd = press(t, app, cmd())
	if app.editing || cmd != nil {
		t.Fatal("discarding a new task should just close the editor")
	}
	if n, _ := s.CountTasks(context.Background()); n != 0 {
		t.Fatalf("expected no stored tasks, got %d", n)
	}
}

// slowSource never delivers the task and counts writes.
type slowSource struct {
	upserts int
}

func (*slowSource) TaskByID(int64) stream.Stream[*store.Task] {
	return stream.NewSubject[*store.Task]()
}

func (s *slowSource) UpsertTask(context.Context, store.Task) (int64, error) {
	s.upserts++
	return 1, nil
}

func TestEditKeysIgnoredWhileLoading(t *testing.T) {
	src := &slowSource{}
	e := newEditModel(src, 5)
	defer e.release()
	if !e.state.IsLoading {
		t.Fatal("expected the editor to be loading")
	}

	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyCtrlS},
		{Type: tea.KeyCtrlT},
		runes("x"),
	} {
		var cmd tea.Cmd
		e, cmd = e.update(msg)
		if cmd != nil {
			cmd()
		}
	}
	if src.upserts != 0 {
		t.Fatalf("loading editor wrote %d times", src.upserts)
	}
	if cur := e.session.Current(); cur.Title != "" || cur.Status != store.StatusTodo {
		t.Fatalf("loading editor accepted edits: %+v", cur)
	}
}

// ============================================================
// Stats
// ============================================================

func TestStatsRefresh(t *testing.T) {
	app, _, s := newTestApp(t)
	ctx := context.Background()
	insertTask(t, s, "one")
	done := store.NewTask("two", "", time.Now())
	done.Status = store.StatusCompleted
	done.Priority = store.PriorityHigh
	if _, err := s.UpsertTask(ctx, done); err != nil {
		t.Fatal(err)
	}

	msg, ok := app.stats.refresh()().(statsDataMsg)
	if !ok || msg.err != nil {
		t.Fatalf("unexpected stats result %#v", msg)
	}
	app, _ = press(t, app, msg)
	if total(app.stats.byStatus) != 2 || total(app.stats.byPriority) != 2 {
		t.Fatalf("unexpected totals %+v %+v", app.stats.byStatus, app.stats.byPriority)
	}
	app.activeView = viewStats
	out := app.View()
	for _, label := range []string{"2 tasks", "Completed", "High"} {
		if !strings.Contains(out, label) {
			t.Fatalf("stats view missing %q", label)
		}
	}
}

func TestStatsEmpty(t *testing.T) {
	sm := newStatsModel(newTestStore(t))
	sm.setSize(80, 30)
	if !strings.Contains(sm.view(), "No tasks yet") {
		t.Fatal("expected empty stats message")
	}
}

// ============================================================
// Export
// ============================================================

func TestExportPickerWritesShownTasks(t *testing.T) {
	app, h, s := newTestApp(t)
	insertTask(t, s, "export me")
	app = loadList(t, app, h, 1)

	app, _ = press(t, app, runes("e"))
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.exportPicking || cmd == nil {
		t.Fatal("enter should close the picker and export")
	}

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	if !strings.HasSuffix(done.path, "."+string(export.FormatJSON)) {
		t.Fatalf("expected a json export, got %s", done.path)
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "export me") {
		t.Fatal("export should contain the shown task")
	}

	app, _ = press(t, app, done)
	if !strings.Contains(app.status, done.path) {
		t.Fatalf("unexpected status %q", app.status)
	}
}

func TestExportPickerEscCancels(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = press(t, app, runes("e"))
	app, cmd := press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.exportPicking || cmd != nil {
		t.Fatal("esc should close the picker without exporting")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 || len(editKeys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
	for i, g := range editKeys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("edit help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"completedItem", func() string { return completedItemStyle.Render("test") }},
		{"focusedField", func() string { return focusedFieldStyle.Render("test") }},
		{"statusBadge", func() string { return statusBadge(store.StatusCompleted) }},
		{"priorityBadge", func() string { return priorityBadge(store.PriorityHigh) }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
