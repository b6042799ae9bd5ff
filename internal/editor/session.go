package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/taskflow/internal/store"
	"github.com/sadopc/taskflow/internal/stream"
	log "github.com/sirupsen/logrus"
)

// NewTask opens a session for a task that has not been stored yet. Any id
// below 1 has the same effect.
const NewTask int64 = -1

// ErrLoading is returned by Save before the stored task has arrived.
var ErrLoading = errors.New("task is still loading")

// TaskSource is the part of the task store an edit session needs.
type TaskSource interface {
	TaskByID(id int64) stream.Stream[*store.Task]
	UpsertTask(ctx context.Context, t store.Task) (int64, error)
}

type Option func(*Session)

// WithClock replaces time.Now for change timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.history = NewHistory(n) }
}

// State is what the edit screen renders.
type State struct {
	ID        *int64
	Title     string
	Content   string
	Status    store.Status
	Priority  store.Priority
	CreatedAt time.Time
	ChangedAt time.Time
	IsLoading bool
	Changed   bool
	CanUndo   bool
	CanRedo   bool
}

// Session edits one task. Title and content edits are recorded in a History;
// status and priority changes are not, and survive undo and redo.
type Session struct {
	src TaskSource
	sid uuid.UUID
	now func() time.Time

	mu        sync.Mutex
	id        *int64
	createdAt time.Time
	history   *History
	current   Snapshot
	loading   bool
	lastSaved *store.Task
	lastSeen  *store.Task
	gen       int
	stopWatch func()
	state     *stream.Subject[State]
}

// Open starts a session for taskID, or for a blank task when taskID < 1.
// An existing task is loaded asynchronously; State reports IsLoading until it
// arrives.
func Open(src TaskSource, taskID int64, opts ...Option) *Session {
	s := &Session{
		src:     src,
		sid:     uuid.New(),
		now:     time.Now,
		history: NewHistory(DefaultHistoryLimit),
		state:   stream.NewSubject[State](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if taskID >= 1 {
		id := taskID
		s.id = &id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	s.publish()
	s.logger().Debug("edit session opened")
	return s
}

func (s *Session) logger() *log.Entry {
	fields := log.Fields{"session": s.sid.String()}
	if s.id != nil {
		fields["task"] = *s.id
	}
	return log.WithFields(fields)
}

// load must be called with mu held.
func (s *Session) load() {
	s.history.Reset()
	s.lastSeen = nil
	if s.id == nil {
		now := s.now()
		s.createdAt = now
		s.current = Snapshot{Status: store.StatusTodo, Priority: store.PriorityMedium, ChangedAt: now}
		s.history.Seed(s.current)
		s.loading = false
		return
	}

	s.loading = true
	ch, stop := s.src.TaskByID(*s.id).Subscribe()
	s.stopWatch = stop
	go s.watch(s.gen, ch)
}

func (s *Session) watch(gen int, ch <-chan *store.Task) {
	for t := range ch {
		s.reflect(gen, t)
	}
}

func (s *Session) reflect(gen int, t *store.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.loading = false

	if t == nil {
		s.logger().Warn("edited task not found in store")
		s.publish()
		return
	}

	// The watch re-fetches after writes to any task; an unchanged row
	// must not replace the edit in progress.
	if s.lastSeen != nil && sameContent(*s.lastSeen, *t) {
		return
	}
	seen := *t
	s.lastSeen = &seen

	s.createdAt = t.CreatedAt
	snap := snapshotOf(*t)
	switch {
	case s.history.Len() == 0:
		s.history.Seed(snap)
		s.current = snap
	case s.isOwnWrite(*t):
		// Echo of our own Save.
	default:
		s.current = snap
	}
	s.publish()
}

func (s *Session) isOwnWrite(t store.Task) bool {
	return s.lastSaved != nil && sameContent(*s.lastSaved, t)
}

func sameContent(a, b store.Task) bool {
	return a.Title == b.Title &&
		a.Content == b.Content &&
		a.Status == b.Status &&
		a.Priority == b.Priority &&
		a.ChangedAt.Equal(b.ChangedAt)
}

func snapshotOf(t store.Task) Snapshot {
	return Snapshot{
		Title:     t.Title,
		Content:   t.Content,
		Status:    t.Status,
		Priority:  t.Priority,
		ChangedAt: t.ChangedAt,
	}
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.current.ChangedAt = s.now()
	s.current.Changed = notBlank(s.current.Title) || notBlank(s.current.Content)
}

func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Title = title
	s.touch()
	s.history.Push(s.current)
	s.publish()
}

func (s *Session) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Content = content
	s.touch()
	s.history.Push(s.current)
	s.publish()
}

func (s *Session) SetStatus(st store.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Status = st
	s.touch()
	s.publish()
}

func (s *Session) SetPriority(p store.Priority) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Priority = p
	s.touch()
	s.publish()
}

// Undo restores the previous title and content. It reports false when there
// is nothing to undo.
func (s *Session) Undo() bool {
	return s.step((*History).Undo)
}

// Redo reapplies the next title and content edit.
func (s *Session) Redo() bool {
	return s.step((*History).Redo)
}

func (s *Session) step(move func(*History) (Snapshot, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := move(s.history)
	if !ok {
		return false
	}
	snap.Status = s.current.Status
	snap.Priority = s.current.Priority
	s.current = snap
	s.publish()
	return true
}

// Revert drops every unsaved change and the history, then loads the task
// again: from the store once it has an id, otherwise as a blank task.
func (s *Session) Revert() {
	s.mu.Lock()
	stop := s.detach()
	s.mu.Unlock()
	if stop != nil {
		stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	s.publish()
	s.logger().Debug("edit session reverted")
}

// detach must be called with mu held. Emissions already in flight for the old
// subscription are discarded by the generation check.
func (s *Session) detach() func() {
	stop := s.stopWatch
	s.stopWatch = nil
	s.gen++
	return stop
}

// Save writes the current state. A new task gets its id here, and later saves
// update that same row. History is kept. Saving an existing task before it
// has loaded returns ErrLoading and writes nothing.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return fmt.Errorf("save task: %w", ErrLoading)
	}
	task := store.Task{
		ID:        s.id,
		Title:     s.current.Title,
		Content:   s.current.Content,
		Status:    s.current.Status,
		Priority:  s.current.Priority,
		CreatedAt: s.createdAt,
		ChangedAt: s.current.ChangedAt,
	}
	s.lastSaved = &task
	logger := s.logger()
	s.mu.Unlock()

	id, err := s.src.UpsertTask(ctx, task)
	if err != nil {
		logger.WithError(err).Error("save task failed")
		return fmt.Errorf("save task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = &id
	s.current.Changed = false
	s.publish()
	s.logger().Info("task saved")
	return nil
}

// ShouldSave reports whether closing the session would lose anything.
func (s *Session) ShouldSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Changed ||
		(s.id == nil && (notBlank(s.current.Title) || notBlank(s.current.Content)))
}

// State streams every change, starting with the latest.
func (s *Session) State() stream.Stream[State] {
	return s.state
}

func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ID returns the stored task id, or nil before the first save of a new task.
func (s *Session) ID() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == nil {
		return nil
	}
	id := *s.id
	return &id
}

// Close drops the store subscription. The session must not be used after.
func (s *Session) Close() {
	s.mu.Lock()
	stop := s.detach()
	logger := s.logger()
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	logger.Debug("edit session closed")
}

func (s *Session) snapshot() State {
	var id *int64
	if s.id != nil {
		v := *s.id
		id = &v
	}
	return State{
		ID:        id,
		Title:     s.current.Title,
		Content:   s.current.Content,
		Status:    s.current.Status,
		Priority:  s.current.Priority,
		CreatedAt: s.createdAt,
		ChangedAt: s.current.ChangedAt,
		IsLoading: s.loading,
		Changed:   s.current.Changed,
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
	}
}

// publish must be called with mu held.
func (s *Session) publish() {
	s.state.Publish(s.snapshot())
}
