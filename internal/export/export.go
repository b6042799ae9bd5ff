// Package export writes task lists to CSV or JSON files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/taskflow/internal/store"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Label is the name shown in the export picker.
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

// FileName returns a timestamped file name such as tasks-20240301-090000.csv.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("tasks-%s.%s", now.Format("20060102-150405"), f)
}

// ToDir writes tasks into dir, creating it when needed, and returns the
// path of the new file.
func ToDir(f Format, tasks []store.Task, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(f, now))

	var err error
	switch f {
	case FormatCSV:
		err = ToCSV(tasks, path)
	case FormatJSON:
		err = ToJSON(tasks, path)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// formatTime renders t in local time, or empty for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
