package domain

import (
	"slices"
	"strings"
	"time"
)

// DefaultCategory is assigned when a task is saved with a blank category.
const DefaultCategory = "Uncategorized"

// DeadlineLayout is the calendar-date layout used for deadlines.
const DeadlineLayout = "2006-01-02"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns the selectable priorities in display order.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// Valid reports whether p is one of low, medium or high.
func (p Priority) Valid() bool {
	return slices.Contains(validPriorities, p)
}

type Task struct {
	ID        int64
	Text      string
	Category  string
	Priority  Priority
	Deadline  *time.Time
	Completed bool
	CreatedAt time.Time
}

type TaskInput struct {
	ID       int64
	Text     string
	Category string
	Priority Priority
	Deadline *time.Time
}

// TaskEdit carries the user-editable fields of a task.
type TaskEdit struct {
	Text     string
	Category string
	Priority Priority
	Deadline *time.Time
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	if in.ID <= 0 {
		return Task{}, ErrInvalidID
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Task{}, ErrInvalidText
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}
	return Task{
		ID:        in.ID,
		Text:      text,
		Category:  normalizeCategory(in.Category),
		Priority:  in.Priority,
		Deadline:  NormalizeDeadline(in.Deadline),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}, nil
}

// Edit returns the current editable fields.
func (t Task) Edit() TaskEdit {
	return TaskEdit{
		Text:     t.Text,
		Category: t.Category,
		Priority: t.Priority,
		Deadline: NormalizeDeadline(t.Deadline),
	}
}

// ApplyEdit overwrites the editable fields; the task is left untouched on error.
func (t *Task) ApplyEdit(in TaskEdit) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return ErrInvalidText
	}
	if !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	t.Text = text
	t.Category = normalizeCategory(in.Category)
	t.Priority = in.Priority
	t.Deadline = NormalizeDeadline(in.Deadline)
	return nil
}

func (t *Task) ToggleCompleted() {
	t.Completed = !t.Completed
}

// ParseDeadline parses a YYYY-MM-DD date. Blank input and "-" mean no deadline.
func ParseDeadline(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return nil, nil
	}
	ts, err := time.Parse(DeadlineLayout, raw)
	if err != nil {
		return nil, ErrInvalidDeadline
	}
	return &ts, nil
}

// FormatDeadline renders a deadline as YYYY-MM-DD, or "" when absent.
func FormatDeadline(deadline *time.Time) string {
	if deadline == nil {
		return ""
	}
	return deadline.Format(DeadlineLayout)
}

// NormalizeDeadline truncates a deadline to its UTC calendar date.
func NormalizeDeadline(deadline *time.Time) *time.Time {
	if deadline == nil {
		return nil
	}
	y, m, d := deadline.Date()
	ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &ts
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return DefaultCategory
	}
	return category
}
