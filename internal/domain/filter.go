package domain

import (
	"slices"
	"strings"
)

// FilterMode selects which subset of the task list is displayed.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterActive    FilterMode = "active"
	FilterCompleted FilterMode = "completed"
)

var filterModes = []FilterMode{FilterAll, FilterActive, FilterCompleted}

// FilterModes returns the filter modes in control-group order.
func FilterModes() []FilterMode {
	return slices.Clone(filterModes)
}

// ParseFilterMode normalizes raw input into a filter mode.
func ParseFilterMode(raw string) (FilterMode, error) {
	mode := FilterMode(strings.ToLower(strings.TrimSpace(raw)))
	if mode == "" {
		return FilterAll, nil
	}
	if !slices.Contains(filterModes, mode) {
		return "", ErrInvalidFilterMode
	}
	return mode, nil
}

// Matches reports whether a task belongs to the subset selected by the mode.
func (f FilterMode) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// FilterTasks returns the tasks matching mode in their original order.
func FilterTasks(tasks []Task, mode FilterMode) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if mode.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
