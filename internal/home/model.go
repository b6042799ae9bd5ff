// Package home composes the task list screen's view state from the task
// store, the user's settings and the search box, and owns delete-with-undo.
package home

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sadopc/taskflow/internal/store"
	"github.com/sadopc/taskflow/internal/stream"
	log "github.com/sirupsen/logrus"
)

// DefaultDebounce is how long a non-empty search must be idle before it is
// applied.
const DefaultDebounce = 300 * time.Millisecond

// TaskSource is the part of the task store the list screen needs.
type TaskSource interface {
	Filtered(q store.Query) stream.Stream[[]store.Task]
	Count() stream.Stream[int]
	GetTask(ctx context.Context, id int64) (*store.Task, error)
	UpsertTask(ctx context.Context, t store.Task) (int64, error)
	DeleteTask(ctx context.Context, id int64) error
}

// SettingsSource is implemented by store.Store and store.RedisSettings.
type SettingsSource interface {
	SettingsStream() stream.Stream[store.Settings]
	UpdateSortType(ctx context.Context, st store.SortType) error
	UpdateSortDirection(ctx context.Context, d store.SortDirection) error
	TogglePriorityFilter(ctx context.Context, p store.Priority) error
	ToggleStatusFilter(ctx context.Context, st store.Status) error
	SetShowCompleted(ctx context.Context, show bool) error
	ClearPriorityFilters(ctx context.Context) error
	ClearStatusFilters(ctx context.Context) error
	ClearFilters(ctx context.Context) error
}

// TimerFunc starts a one-shot timer. The returned stop func must be safe to
// call after the timer fired.
type TimerFunc func(d time.Duration) (<-chan time.Time, func())

func realTimer(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

type Option func(*Model)

// WithDebounce overrides DefaultDebounce. Zero or negative applies every
// search immediately.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// WithTimer replaces the wall clock timer used for debouncing.
func WithTimer(fn TimerFunc) Option {
	return func(m *Model) { m.timer = fn }
}

// State is one consistent snapshot of the list screen.
type State struct {
	Tasks       []store.Task
	Settings    store.Settings
	SearchQuery string
	IsLoading   bool
	TasksCount  int
}

// IsFilterApplied reports whether any filter or search narrows the list.
// ShowCompletedTasks does not count.
func (s State) IsFilterApplied() bool {
	return len(s.Settings.FilterByStatus) > 0 ||
		len(s.Settings.FilterByPriority) > 0 ||
		s.SearchQuery != ""
}

// Event is a one-shot notification for the list screen.
type Event interface {
	isEvent()
}

// UndoDeleteEvent offers to restore Task.
type UndoDeleteEvent struct {
	Task store.Task
}

// DeleteFailedEvent reports a delete of a task that does not exist.
type DeleteFailedEvent struct {
	ID      int64
	Message string
}

func (UndoDeleteEvent) isEvent()   {}
func (DeleteFailedEvent) isEvent() {}

// Model is the list view-state aggregator. A single goroutine owns the
// composition; every exported method is safe for concurrent use.
type Model struct {
	tasks    TaskSource
	settings SettingsSource
	debounce time.Duration
	timer    TimerFunc

	queries chan string
	state   *stream.Subject[State]
	events  chan Event

	mu      sync.Mutex
	pending *store.Task

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New starts the aggregator. Call Close to stop it.
func New(tasks TaskSource, settings SettingsSource, opts ...Option) *Model {
	m := &Model{
		tasks:    tasks,
		settings: settings,
		debounce: DefaultDebounce,
		timer:    realTimer,
		queries:  make(chan string),
		state:    stream.NewValue(State{IsLoading: true}),
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(ctx)
	return m
}

// Close stops the aggregator and releases its store subscriptions.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		<-m.done
	})
}

// State streams every composed snapshot, starting with the latest one.
func (m *Model) State() stream.Stream[State] {
	return m.state
}

// Current returns the latest composed snapshot.
func (m *Model) Current() State {
	st, _ := m.state.Value()
	return st
}

func (m *Model) Events() <-chan Event {
	return m.events
}

// SetSearchQuery records raw search text. The visible query updates at once;
// the fetch waits for the debounce window unless q is empty.
func (m *Model) SetSearchQuery(q string) {
	select {
	case m.queries <- q:
	case <-m.done:
	}
}

func (m *Model) run(ctx context.Context) {
	defer close(m.done)

	settingsCh, stopSettings := m.settings.SettingsStream().Subscribe()
	defer stopSettings()
	countCh, stopCount := m.tasks.Count().Subscribe()
	defer stopCount()

	var (
		st           = State{IsLoading: true}
		haveSettings bool
		debounced    string
		pendingQuery string
		timerC       <-chan time.Time
		stopTimer    = func() {}
		tasksCh      <-chan []store.Task
		stopTasks    = func() {}
	)
	defer func() {
		stopTimer()
		stopTasks()
	}()

	// Drop the previous query's subscription before opening the next, so
	// results for a superseded query are never read.
	resubscribe := func() {
		stopTasks()
		q := store.BuildQuery(st.Settings, debounced)
		tasksCh, stopTasks = m.tasks.Filtered(q).Subscribe()
		st.Tasks = nil
		st.IsLoading = true
		log.WithFields(log.Fields{
			"search":    debounced,
			"sort":      q.SortType,
			"direction": q.SortDirection,
		}).Debug("list query changed")
	}
	applySearch := func(q string) {
		if q == debounced {
			return
		}
		debounced = q
		if haveSettings {
			resubscribe()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case s, ok := <-settingsCh:
			if !ok {
				settingsCh = nil
				continue
			}
			st.Settings = s
			haveSettings = true
			resubscribe()

		case n, ok := <-countCh:
			if !ok {
				countCh = nil
				continue
			}
			st.TasksCount = n

		case q := <-m.queries:
			st.SearchQuery = q
			stopTimer()
			stopTimer, timerC = func() {}, nil
			if q == "" || m.debounce <= 0 {
				applySearch(q)
				break
			}
			pendingQuery = q
			timerC, stopTimer = m.timer(m.debounce)

		case <-timerC:
			stopTimer, timerC = func() {}, nil
			applySearch(pendingQuery)

		case tasks, ok := <-tasksCh:
			if !ok {
				tasksCh = nil
				continue
			}
			st.Tasks = tasks
			st.IsLoading = false
		}
		m.state.Publish(st)
	}
}

// HandleAction applies a user intent. Settings changes are written to the
// settings store and reach the list through its stream.
func (m *Model) HandleAction(ctx context.Context, a Action) error {
	var err error
	switch a := a.(type) {
	case SearchQueryChanged:
		m.SetSearchQuery(a.Query)
	case SortTypeChanged:
		err = m.settings.UpdateSortType(ctx, a.SortType)
	case SortDirectionChanged:
		err = m.settings.UpdateSortDirection(ctx, a.Direction)
	case TogglePriorityFilter:
		err = m.settings.TogglePriorityFilter(ctx, a.Priority)
	case ToggleStatusFilter:
		err = m.settings.ToggleStatusFilter(ctx, a.Status)
	case ShowCompletedChanged:
		err = m.settings.SetShowCompleted(ctx, a.Show)
	case ClearStatusFilters:
		err = m.settings.ClearStatusFilters(ctx)
	case ClearPriorityFilters:
		err = m.settings.ClearPriorityFilters(ctx)
	case ClearFilters:
		err = m.settings.ClearFilters(ctx)
	default:
		err = fmt.Errorf("unknown action %T", a)
	}
	if err != nil {
		log.WithField("action", fmt.Sprintf("%T", a)).WithError(err).Error("list action failed")
	}
	return err
}

// DeleteTask removes the task and keeps it for one RestoreDeletedTask call,
// replacing any task kept earlier. A missing id emits DeleteFailedEvent and
// returns store.ErrNotFound.
func (m *Model) DeleteTask(ctx context.Context, id int64) error {
	task, err := m.tasks.GetTask(ctx, id)
	if err == nil {
		err = m.tasks.DeleteTask(ctx, id)
	}
	if errors.Is(err, store.ErrNotFound) {
		m.emit(DeleteFailedEvent{ID: id, Message: fmt.Sprintf("cannot find task with id: %d", id)})
		return err
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.pending = task
	m.mu.Unlock()

	log.WithField("task", id).Info("task deleted, undo available")
	m.emit(UndoDeleteEvent{Task: *task})
	return nil
}

// RestoreDeletedTask reinserts the last deleted task with its original id and
// timestamps. It does nothing when no delete is pending.
func (m *Model) RestoreDeletedTask(ctx context.Context) error {
	m.mu.Lock()
	task := m.pending
	m.pending = nil
	m.mu.Unlock()

	if task == nil {
		return nil
	}
	if _, err := m.tasks.UpsertTask(ctx, *task); err != nil {
		m.mu.Lock()
		if m.pending == nil {
			m.pending = task
		}
		m.mu.Unlock()
		return fmt.Errorf("restore task %d: %w", task.IDValue(), err)
	}
	log.WithField("task", task.IDValue()).Info("deleted task restored")
	return nil
}

// CanRestore reports whether a deleted task is waiting for undo.
func (m *Model) CanRestore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

func (m *Model) emit(e Event) {
	select {
	case m.events <- e:
	default:
		log.WithField("event", fmt.Sprintf("%T", e)).Warn("event dropped, no reader")
	}
}
