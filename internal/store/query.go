package store

import (
	"cmp"
	"slices"
	"strings"
)

// Query selects and orders tasks. It is built from Settings and search text
// by BuildQuery and can be evaluated by SQLite (SQL) or in memory (Apply).
type Query struct {
	ExcludeCompleted bool
	Search           string
	Priorities       []Priority
	Statuses         []Status
	SortType         SortType
	SortDirection    SortDirection
}

// BuildQuery maps view settings and search text to a Query. The status filter
// and the completed exclusion are independent: both apply when set.
func BuildQuery(s Settings, search string) Query {
	q := Query{
		ExcludeCompleted: !s.ShowCompletedTasks,
		Search:           search,
		SortType:         s.SortType,
		SortDirection:    s.SortDirection,
	}
	if len(s.FilterByPriority) > 0 {
		q.Priorities = slices.Clone(s.FilterByPriority)
		slices.Sort(q.Priorities)
	}
	if len(s.FilterByStatus) > 0 {
		q.Statuses = slices.Clone(s.FilterByStatus)
		slices.Sort(q.Statuses)
	}
	if q.SortType == "" {
		q.SortType = SortCreated
	}
	if q.SortDirection == "" {
		q.SortDirection = SortDesc
	}
	return q
}

// Matches reports whether t passes every predicate of q.
func (q Query) Matches(t Task) bool {
	if q.ExcludeCompleted && t.Status == StatusCompleted {
		return false
	}
	if q.Search != "" && !strings.Contains(t.Title, q.Search) && !strings.Contains(t.Content, q.Search) {
		return false
	}
	if len(q.Priorities) > 0 && !slices.Contains(q.Priorities, t.Priority) {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, t.Status) {
		return false
	}
	return true
}

// Apply filters and sorts tasks. Sorting is stable, so tasks with equal keys
// keep their input order.
func (q Query) Apply(tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b Task) int {
		c := q.compare(a, b)
		if q.SortDirection == SortDesc {
			return -c
		}
		return c
	})
	return out
}

func (q Query) compare(a, b Task) int {
	switch q.SortType {
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortStatus:
		return cmp.Compare(a.Status, b.Status)
	case SortPriority:
		return cmp.Compare(a.Priority, b.Priority)
	case SortUpdated:
		return a.ChangedAt.Compare(b.ChangedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

var sortColumns = map[SortType]string{
	SortTitle:    "title",
	SortStatus:   "status",
	SortPriority: "priority",
	SortCreated:  "created_at",
	SortUpdated:  "changed_at",
}

// SQL renders the WHERE and ORDER BY clauses of q. Only fixed fragments and
// placeholders are emitted; every user supplied value travels in args.
// Insertion order (id ASC) breaks ties.
func (q Query) SQL() (where, orderBy string, args []any) {
	clauses := []string{"1=1"}

	if q.ExcludeCompleted {
		clauses = append(clauses, "status != ?")
		args = append(args, int(StatusCompleted))
	}
	if q.Search != "" {
		clauses = append(clauses, "(instr(title, ?) > 0 OR instr(content, ?) > 0)")
		args = append(args, q.Search, q.Search)
	}
	if len(q.Priorities) > 0 {
		clauses = append(clauses, "priority IN ("+placeholders(len(q.Priorities))+")")
		for _, p := range q.Priorities {
			args = append(args, int(p))
		}
	}
	if len(q.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+placeholders(len(q.Statuses))+")")
		for _, s := range q.Statuses {
			args = append(args, int(s))
		}
	}

	column, ok := sortColumns[q.SortType]
	if !ok {
		column = sortColumns[SortCreated]
	}
	dir := "DESC"
	if q.SortDirection == SortAsc {
		dir = "ASC"
	}

	return strings.Join(clauses, " AND "), column + " " + dir + ", id ASC", args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
