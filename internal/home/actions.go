package home

import "github.com/sadopc/taskflow/internal/store"

// Action is a user intent on the list screen, passed to Model.HandleAction.
type Action interface {
	isAction()
}

type SearchQueryChanged struct {
	Query string
}

type SortTypeChanged struct {
	SortType store.SortType
}

type SortDirectionChanged struct {
	Direction store.SortDirection
}

type TogglePriorityFilter struct {
	Priority store.Priority
}

type ToggleStatusFilter struct {
	Status store.Status
}

type ShowCompletedChanged struct {
	Show bool
}

type ClearStatusFilters struct{}

type ClearPriorityFilters struct{}

// ClearFilters empties both filter sets. Search text and ShowCompletedTasks
// are left alone.
type ClearFilters struct{}

func (SearchQueryChanged) isAction()   {}
func (SortTypeChanged) isAction()      {}
func (SortDirectionChanged) isAction() {}
func (TogglePriorityFilter) isAction() {}
func (ToggleStatusFilter) isAction()   {}
func (ShowCompletedChanged) isAction() {}
func (ClearStatusFilters) isAction()   {}
func (ClearPriorityFilters) isAction() {}
func (ClearFilters) isAction()         {}
