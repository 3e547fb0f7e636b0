package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/tick/internal/domain"
)

// Persisted keys in the key-value store.
const (
	KeyTasks = "tasks"
	KeyTheme = "theme"
)

// createdAtLayout matches the millisecond ISO-8601 form browsers emit.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// TaskRecord is the persisted JSON shape of one task.
type TaskRecord struct {
	ID        int64   `json:"id"`
	Text      string  `json:"text"`
	Category  string  `json:"category"`
	Priority  string  `json:"priority"`
	Deadline  *string `json:"deadline"`
	Completed bool    `json:"completed"`
	CreatedAt string  `json:"createdAt"`
}

// EncodeTasks renders tasks in the persisted JSON array layout.
func EncodeTasks(tasks []domain.Task) (string, error) {
	records := make([]TaskRecord, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, toRecord(task))
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode tasks json: %w", err)
	}
	return string(encoded), nil
}

// DecodeTasks parses the persisted JSON array. Stored values are kept as written;
// only ids are checked, and duplicate or non-positive ids are reported in dropped.
func DecodeTasks(raw string) (tasks []domain.Task, dropped []int64, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []domain.Task{}, nil, nil
	}
	var records []TaskRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, nil, fmt.Errorf("decode tasks json: %w", err)
	}
	tasks = make([]domain.Task, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for _, rec := range records {
		if rec.ID <= 0 {
			dropped = append(dropped, rec.ID)
			continue
		}
		if _, ok := seen[rec.ID]; ok {
			dropped = append(dropped, rec.ID)
			continue
		}
		seen[rec.ID] = struct{}{}
		tasks = append(tasks, fromRecord(rec))
	}
	return tasks, dropped, nil
}

func toRecord(task domain.Task) TaskRecord {
	rec := TaskRecord{
		ID:        task.ID,
		Text:      task.Text,
		Category:  task.Category,
		Priority:  string(task.Priority),
		Completed: task.Completed,
	}
	if task.Deadline != nil {
		deadline := domain.FormatDeadline(task.Deadline)
		rec.Deadline = &deadline
	}
	if !task.CreatedAt.IsZero() {
		rec.CreatedAt = task.CreatedAt.UTC().Format(createdAtLayout)
	}
	return rec
}

func fromRecord(rec TaskRecord) domain.Task {
	task := domain.Task{
		ID:        rec.ID,
		Text:      rec.Text,
		Category:  rec.Category,
		Priority:  domain.Priority(rec.Priority),
		Completed: rec.Completed,
	}
	if rec.Deadline != nil {
		task.Deadline = parseStoredDeadline(*rec.Deadline)
	}
	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(rec.CreatedAt)); err == nil {
		task.CreatedAt = ts.UTC()
	}
	return task
}

// parseStoredDeadline accepts date-only and full timestamp forms; anything else is dropped.
func parseStoredDeadline(raw string) *time.Time {
	if deadline, err := domain.ParseDeadline(raw); err == nil {
		return deadline
	}
	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw)); err == nil {
		return domain.NormalizeDeadline(&ts)
	}
	return nil
}

func formatTaskID(id int64) string {
	return strconv.FormatInt(id, 10)
}
