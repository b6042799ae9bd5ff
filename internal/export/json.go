package export

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sadopc/taskflow/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Total      int        `json:"total"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID        *int64 `json:"id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
	ChangedAt string `json:"changed_at"`
}

func ToJSON(tasks []store.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Total:      len(tasks),
	}

	for _, t := range tasks {
		export.Tasks = append(export.Tasks, jsonTask{
			ID:        t.ID,
			Title:     t.Title,
			Content:   t.Content,
			Status:    t.Status.String(),
			Priority:  t.Priority.String(),
			CreatedAt: formatTime(t.CreatedAt),
			ChangedAt: formatTime(t.ChangedAt),
		})
	}

	data, err := sonic.ConfigStd.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
