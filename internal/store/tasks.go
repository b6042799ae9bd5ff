package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/taskflow/internal/stream"
	log "github.com/sirupsen/logrus"
)

// Fixed width UTC layout, so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const taskColumns = `id, title, content, status, priority, created_at, changed_at`

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var id int64
	var status, priority int
	var createdAt, changedAt string
	if err := row.Scan(&id, &t.Title, &t.Content, &status, &priority, &createdAt, &changedAt); err != nil {
		return Task{}, err
	}
	t.ID = &id
	t.Status = Status(status)
	t.Priority = Priority(priority)
	t.CreatedAt = parseTime(createdAt)
	t.ChangedAt = parseTime(changedAt)
	return t, nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListTasks returns every task, oldest first.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	tasks, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FilterTasks returns the tasks selected by q in q's order.
func (s *Store) FilterTasks(ctx context.Context, q Query) ([]Task, error) {
	where, orderBy, args := q.SQL()
	tasks, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+where+` ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, fmt.Errorf("filter tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// UpsertTask inserts t when it has no id, and otherwise replaces the row with
// t's id (re-creating it if it was deleted). It returns the task's id.
func (s *Store) UpsertTask(ctx context.Context, t Task) (int64, error) {
	if !t.Status.Valid() {
		return 0, fmt.Errorf("upsert task: invalid status %d", int(t.Status))
	}
	if !t.Priority.Valid() {
		return 0, fmt.Errorf("upsert task: invalid priority %d", int(t.Priority))
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.ChangedAt.Before(t.CreatedAt) {
		t.ChangedAt = t.CreatedAt
	}

	var id int64
	if t.ID == nil {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO tasks (title, content, status, priority, created_at, changed_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.Title, t.Content, int(t.Status), int(t.Priority), formatTime(t.CreatedAt), formatTime(t.ChangedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("insert task: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert task id: %w", err)
		}
	} else {
		id = *t.ID
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tasks (id, title, content, status, priority, created_at, changed_at) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				content = excluded.content,
				status = excluded.status,
				priority = excluded.priority,
				created_at = excluded.created_at,
				changed_at = excluded.changed_at`,
			id, t.Title, t.Content, int(t.Status), int(t.Priority), formatTime(t.CreatedAt), formatTime(t.ChangedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert task %d: %w", id, err)
		}
	}

	log.WithFields(log.Fields{"task": id, "status": t.Status, "priority": t.Priority}).Debug("task saved")
	s.tasksChanged()
	return id, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	log.WithField("task", id).Debug("task deleted")
	s.tasksChanged()
	return nil
}

func (s *Store) CountTasks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// CountByStatus returns one bucket per status, including empty ones.
func (s *Store) CountByStatus(ctx context.Context) ([]Count, error) {
	totals, err := s.countBy(ctx, "status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	counts := make([]Count, 0, len(Statuses))
	for _, st := range Statuses {
		counts = append(counts, Count{Label: st.Label(), Total: totals[int(st)]})
	}
	return counts, nil
}

// CountByPriority returns one bucket per priority, including empty ones.
func (s *Store) CountByPriority(ctx context.Context) ([]Count, error) {
	totals, err := s.countBy(ctx, "priority")
	if err != nil {
		return nil, fmt.Errorf("count by priority: %w", err)
	}
	counts := make([]Count, 0, len(Priorities))
	for _, p := range Priorities {
		counts = append(counts, Count{Label: p.Label(), Total: totals[int(p)]})
	}
	return counts, nil
}

// countBy groups on a fixed column name; column is never user input.
func (s *Store) countBy(ctx context.Context, column string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM tasks GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int]int)
	for rows.Next() {
		var key, n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		totals[key] = n
	}
	return totals, rows.Err()
}

// Tasks streams every task, re-emitting after each mutation.
func (s *Store) Tasks() stream.Stream[[]Task] {
	return stream.Watch[[]Task]("tasks", s.tasksVersion, s.ListTasks)
}

// Filtered streams the result of q, re-emitting after each mutation.
func (s *Store) Filtered(q Query) stream.Stream[[]Task] {
	return stream.Watch[[]Task]("filtered_tasks", s.tasksVersion, func(ctx context.Context) ([]Task, error) {
		return s.FilterTasks(ctx, q)
	})
}

// TaskByID streams the task with id, or nil once it no longer exists.
func (s *Store) TaskByID(id int64) stream.Stream[*Task] {
	return stream.Watch[*Task]("task_by_id", s.tasksVersion, func(ctx context.Context) (*Task, error) {
		t, err := s.GetTask(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return t, err
	})
}

// Count streams the total number of tasks.
func (s *Store) Count() stream.Stream[int] {
	return stream.Watch[int]("task_count", s.tasksVersion, s.CountTasks)
}
