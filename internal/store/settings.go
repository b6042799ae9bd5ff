package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sadopc/taskflow/internal/stream"
	log "github.com/sirupsen/logrus"
)

// Setting keys shared by every settings backend.
const (
	KeySortType           = "sort_type"
	KeySortDirection      = "sort_direction"
	KeyFilterByPriority   = "filter_by_priority"
	KeyFilterByStatus     = "filter_by_status"
	KeyShowCompletedTasks = "show_completed_tasks"
)

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSetting(ctx context.Context, q execQuerier, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func setSetting(ctx context.Context, q execQuerier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	return getSetting(ctx, s.db, key)
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if err := setSetting(ctx, s.db, key, value); err != nil {
		return err
	}
	s.settingsChanged()
	return nil
}

func (s *Store) GetAllSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Settings decodes the stored key/value pairs. Missing or unreadable values
// fall back to DefaultSettings.
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	all, err := s.GetAllSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	values := make(map[string]string, len(all))
	for _, kv := range all {
		values[kv.Key] = kv.Value
	}
	return DecodeSettings(values), nil
}

// SettingsStream emits the current settings and re-emits after every write.
func (s *Store) SettingsStream() stream.Stream[Settings] {
	return stream.Watch[Settings]("settings", s.settingsVersion, s.Settings)
}

func (s *Store) UpdateSortType(ctx context.Context, st SortType) error {
	return s.SetSetting(ctx, KeySortType, string(st))
}

func (s *Store) UpdateSortDirection(ctx context.Context, d SortDirection) error {
	return s.SetSetting(ctx, KeySortDirection, string(d))
}

func (s *Store) SetShowCompleted(ctx context.Context, show bool) error {
	return s.SetSetting(ctx, KeyShowCompletedTasks, strconv.FormatBool(show))
}

// TogglePriorityFilter adds p to the priority filter, or removes it if it is
// already there. The read and write share one transaction.
func (s *Store) TogglePriorityFilter(ctx context.Context, p Priority) error {
	return s.toggle(ctx, KeyFilterByPriority, func(raw string) string {
		return EncodePriorities(toggleValue(DecodePriorities(raw), p))
	})
}

func (s *Store) ToggleStatusFilter(ctx context.Context, st Status) error {
	return s.toggle(ctx, KeyFilterByStatus, func(raw string) string {
		return EncodeStatuses(toggleValue(DecodeStatuses(raw), st))
	})
}

func (s *Store) toggle(ctx context.Context, key string, fn func(string) string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin toggle %q: %w", key, err)
	}
	defer tx.Rollback()

	raw, err := getSetting(ctx, tx, key)
	if err != nil {
		return err
	}
	next := fn(raw)
	if err := setSetting(ctx, tx, key, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit toggle %q: %w", key, err)
	}

	log.WithFields(log.Fields{"key": key, "value": next}).Debug("filter toggled")
	s.settingsChanged()
	return nil
}

func (s *Store) ClearPriorityFilters(ctx context.Context) error {
	return s.SetSetting(ctx, KeyFilterByPriority, "")
}

func (s *Store) ClearStatusFilters(ctx context.Context) error {
	return s.SetSetting(ctx, KeyFilterByStatus, "")
}

// ClearFilters empties both filter sets in one transaction.
func (s *Store) ClearFilters(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear filters: %w", err)
	}
	defer tx.Rollback()

	for _, key := range []string{KeyFilterByPriority, KeyFilterByStatus} {
		if err := setSetting(ctx, tx, key, ""); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear filters: %w", err)
	}
	s.settingsChanged()
	return nil
}

func toggleValue[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

// DecodeSettings builds Settings from stored string values.
func DecodeSettings(values map[string]string) Settings {
	out := DefaultSettings()
	if st, err := ParseSortType(values[KeySortType]); err == nil {
		out.SortType = st
	}
	if d, err := ParseSortDirection(values[KeySortDirection]); err == nil {
		out.SortDirection = d
	}
	out.FilterByPriority = DecodePriorities(values[KeyFilterByPriority])
	out.FilterByStatus = DecodeStatuses(values[KeyFilterByStatus])
	if b, err := strconv.ParseBool(values[KeyShowCompletedTasks]); err == nil {
		out.ShowCompletedTasks = b
	}
	return out
}

// EncodePriorities joins canonical names with commas, in rank order.
func EncodePriorities(ps []Priority) string {
	sorted := slices.Clone(ps)
	slices.Sort(sorted)
	names := make([]string, len(sorted))
	for i, p := range sorted {
		names[i] = p.String()
	}
	return strings.Join(names, ",")
}

// DecodePriorities skips unknown names.
func DecodePriorities(raw string) []Priority {
	var out []Priority
	for _, name := range strings.Split(raw, ",") {
		if p, err := ParsePriority(name); err == nil && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func EncodeStatuses(ss []Status) string {
	sorted := slices.Clone(ss)
	slices.Sort(sorted)
	names := make([]string, len(sorted))
	for i, st := range sorted {
		names[i] = st.String()
	}
	return strings.Join(names, ",")
}

func DecodeStatuses(raw string) []Status {
	var out []Status
	for _, name := range strings.Split(raw, ",") {
		if st, err := ParseStatus(name); err == nil && !slices.Contains(out, st) {
			out = append(out, st)
		}
	}
	return out
}
