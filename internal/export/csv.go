package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/taskflow/internal/store"
)

var csvHeader = []string{"ID", "Title", "Content", "Status", "Priority", "Created", "Changed"}

func ToCSV(tasks []store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			idString(t),
			t.Title,
			t.Content,
			t.Status.String(),
			t.Priority.String(),
			formatTime(t.CreatedAt),
			formatTime(t.ChangedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// idString is empty for a task that was never stored.
func idString(t store.Task) string {
	if t.ID == nil {
		return ""
	}
	return strconv.FormatInt(*t.ID, 10)
}
