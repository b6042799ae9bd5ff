package store

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusCompleted
)

// Statuses lists every status in rank order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

var statusNames = map[Status]string{
	StatusTodo:       "TODO",
	StatusInProgress: "IN_PROGRESS",
	StatusCompleted:  "COMPLETED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Label is the human readable form used by the UI and exports.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return s.String()
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Next cycles TODO -> IN_PROGRESS -> COMPLETED -> TODO.
func (s Status) Next() Status {
	return Statuses[(int(s)+1)%len(Statuses)]
}

func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Priorities lists every priority in rank order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

var priorityNames = map[Priority]string{
	PriorityLow:    "LOW",
	PriorityMedium: "MEDIUM",
	PriorityHigh:   "HIGH",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return p.String()
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Next cycles LOW -> MEDIUM -> HIGH -> LOW.
func (p Priority) Next() Priority {
	return Priorities[(int(p)+1)%len(Priorities)]
}

func ParsePriority(name string) (Priority, error) {
	for p, n := range priorityNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", name)
}

type SortType string

const (
	SortTitle    SortType = "TITLE"
	SortStatus   SortType = "STATUS"
	SortPriority SortType = "PRIORITY"
	SortCreated  SortType = "CREATED"
	SortUpdated  SortType = "UPDATED"
)

var SortTypes = []SortType{SortTitle, SortStatus, SortPriority, SortCreated, SortUpdated}

func ParseSortType(name string) (SortType, error) {
	for _, st := range SortTypes {
		if strings.EqualFold(string(st), strings.TrimSpace(name)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown sort type %q", name)
}

// Next cycles through SortTypes in declaration order.
func (st SortType) Next() SortType {
	i := slices.Index(SortTypes, st)
	return SortTypes[(i+1)%len(SortTypes)]
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func ParseSortDirection(name string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", name)
}

func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

type Task struct {
	ID        *int64
	Title     string
	Content   string
	Status    Status
	Priority  Priority
	CreatedAt time.Time
	ChangedAt time.Time
}

// NewTask returns an unsaved task with default status and priority.
func NewTask(title, content string, now time.Time) Task {
	return Task{
		Title:     title,
		Content:   content,
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		CreatedAt: now,
		ChangedAt: now,
	}
}

// IDValue returns the id or 0 for an unsaved task.
func (t Task) IDValue() int64 {
	if t.ID == nil {
		return 0
	}
	return *t.ID
}

// Settings is the user's list view configuration.
type Settings struct {
	SortType           SortType
	SortDirection      SortDirection
	FilterByPriority   []Priority
	FilterByStatus     []Status
	ShowCompletedTasks bool
}

func DefaultSettings() Settings {
	return Settings{
		SortType:      SortCreated,
		SortDirection: SortDesc,
	}
}

func (s Settings) HasPriority(p Priority) bool {
	return slices.Contains(s.FilterByPriority, p)
}

func (s Settings) HasStatus(st Status) bool {
	return slices.Contains(s.FilterByStatus, st)
}

type Setting struct {
	Key   string
	Value string
}

// Count is one bucket of an aggregate over tasks.
type Count struct {
	Label string
	Total int
}
