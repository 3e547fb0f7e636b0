package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/tick/internal/domain"
)

// SnapshotVersion identifies the export envelope layout.
const SnapshotVersion = "tick.snapshot.v1"

// Snapshot is a portable copy of the task list and theme preference.
type Snapshot struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Theme      Theme        `json:"theme,omitempty"`
	Tasks      []TaskRecord `json:"tasks"`
}

// ExportSnapshot captures the current list, newest first, in persisted record form.
func (s *Service) ExportSnapshot() Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Theme:      s.Theme(),
		Tasks:      s.ExportTasks(),
	}
}

// ImportSnapshot validates snap and replaces the list with its tasks. A theme in the
// snapshot is stored too.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := s.ImportTasks(ctx, snap.Tasks); err != nil {
		return err
	}
	if snap.Theme != ThemeUnset {
		if err := s.SetTheme(ctx, snap.Theme); err != nil {
			return err
		}
	}
	s.logger.Info("snapshot imported", "tasks", len(snap.Tasks), "version", snap.Version)
	return nil
}

// Validate checks the envelope version and every record.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	if s.Theme != ThemeUnset {
		if _, err := ParseTheme(string(s.Theme)); err != nil {
			return fmt.Errorf("snapshot theme %q: %w", s.Theme, err)
		}
	}

	seen := make(map[int64]struct{}, len(s.Tasks))
	for i, rec := range s.Tasks {
		if rec.ID <= 0 {
			return fmt.Errorf("tasks[%d]: %w", i, domain.ErrInvalidID)
		}
		if _, exists := seen[rec.ID]; exists {
			return fmt.Errorf("tasks[%d]: %w: %d", i, ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if strings.TrimSpace(rec.Text) == "" {
			return fmt.Errorf("tasks[%d]: %w", i, domain.ErrInvalidText)
		}
		if !domain.Priority(rec.Priority).Valid() {
			return fmt.Errorf("tasks[%d]: %w: %q", i, domain.ErrInvalidPriority, rec.Priority)
		}
		if rec.Deadline != nil && parseStoredDeadline(*rec.Deadline) == nil {
			return fmt.Errorf("tasks[%d]: %w: %q", i, domain.ErrInvalidDeadline, *rec.Deadline)
		}
	}
	return nil
}

// DecodeSnapshot parses either a snapshot envelope or a bare task array in the
// persisted layout.
func DecodeSnapshot(content []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []TaskRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return Snapshot{}, fmt.Errorf("decode task array: %w", err)
		}
		return Snapshot{Tasks: records}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
