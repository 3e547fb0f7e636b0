package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/tick/internal/domain"
)

// Theme is the persisted color-scheme preference.
type Theme string

// ThemeDark and related constants define theme values. ThemeUnset means no stored preference.
const (
	ThemeUnset Theme = ""
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Animation timings requested by the service.
const (
	enterDuration = 500 * time.Millisecond
	pulseDuration = 300 * time.Millisecond
	exitDuration  = 500 * time.Millisecond
)

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds the collaborators of the service. Nil collaborators are replaced by no-ops.
type ServiceConfig struct {
	Notifier Notifier
	Animator Animator
	Tooltips Tooltips
	Logger   Logger
}

// Service is the task list controller. The in-memory list is authoritative; the store
// copy is rewritten after every mutation.
type Service struct {
	mu       sync.Mutex
	store    Store
	clock    Clock
	notifier Notifier
	animator Animator
	tooltips Tooltips
	logger   Logger

	tasks []domain.Task
	theme Theme
}

// NewService constructs a new value for this package.
func NewService(store Store, clock Clock, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.Notifier == nil {
		cfg.Notifier = noopNotifier{}
	}
	if cfg.Animator == nil {
		cfg.Animator = noopAnimator{}
	}
	if cfg.Tooltips == nil {
		cfg.Tooltips = noopTooltips{}
	}
	if cfg.Logger == nil {
		cfg.Logger = charmLog.New(io.Discard)
	}
	return &Service{
		store:    store,
		clock:    clock,
		notifier: cfg.Notifier,
		animator: cfg.Animator,
		tooltips: cfg.Tooltips,
		logger:   cfg.Logger,
		tasks:    []domain.Task{},
	}
}

// Initialize loads the persisted list and theme and attaches tooltips. Load failures
// fall back to an empty list and are only logged.
func (s *Service) Initialize(ctx context.Context) {
	tasks := s.loadTasks(ctx)
	theme := s.loadTheme(ctx)

	s.mu.Lock()
	s.tasks = tasks
	s.theme = theme
	s.mu.Unlock()

	s.logger.Info("task list initialized", "tasks", len(tasks), "theme", string(theme))
	s.attachTooltips()
}

func (s *Service) loadTasks(ctx context.Context) []domain.Task {
	if s.store == nil {
		s.logger.Warn("storage is not available")
		return []domain.Task{}
	}
	raw, ok, err := s.store.Get(ctx, KeyTasks)
	if err != nil {
		s.logger.Error("error loading tasks", "err", err)
		return []domain.Task{}
	}
	if !ok {
		return []domain.Task{}
	}
	tasks, dropped, err := DecodeTasks(raw)
	if err != nil {
		s.logger.Error("error loading tasks", "err", err)
		return []domain.Task{}
	}
	if len(dropped) > 0 {
		s.logger.Warn("dropped stored tasks with invalid or duplicate ids", "ids", dropped)
	}
	return tasks
}

func (s *Service) loadTheme(ctx context.Context) Theme {
	if s.store == nil {
		return ThemeUnset
	}
	raw, ok, err := s.store.Get(ctx, KeyTheme)
	if err != nil {
		s.logger.Error("error accessing theme preference", "err", err)
		return ThemeUnset
	}
	if !ok {
		return ThemeUnset
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		s.logger.Warn("ignoring stored theme preference", "theme", raw)
		return ThemeUnset
	}
	return theme
}

func (s *Service) attachTooltips() {
	s.tooltips.Attach(TooltipEdit, TooltipOptions{Content: "Edit Task", Placement: "top"})
	s.tooltips.Attach(TooltipDelete, TooltipOptions{Content: "Delete Task", Placement: "top"})
	s.tooltips.Attach(TooltipToggle, TooltipOptions{Content: "Toggle Completed", Placement: "top"})
	s.tooltips.Attach(TooltipFilter, TooltipOptions{Content: "Filter Tasks", Placement: "top"})
	s.tooltips.Attach(TooltipTheme, TooltipOptions{Content: "Toggle Theme", Placement: "top"})
}

// Tasks returns a copy of the full list, newest first.
func (s *Service) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Task returns one task by id.
func (s *Service) Task(id int64) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.tasks[idx], true
}

// FilterTasks returns the subset selected by mode without touching the list.
func (s *Service) FilterTasks(mode domain.FilterMode) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FilterTasks(s.tasks, mode)
}

// Stats returns derived totals for the whole list.
func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStats(s.tasks)
}

// AddTaskInput holds input values for add task operations.
type AddTaskInput struct {
	Text     string
	Category string
	Priority domain.Priority
	Deadline *time.Time
}

// AddTask prepends a new task. Blank text or an unknown priority rejects the call with
// no state change.
func (s *Service) AddTask(ctx context.Context, in AddTaskInput) (domain.Task, error) {
	if strings.TrimSpace(in.Text) == "" {
		return domain.Task{}, domain.ErrInvalidText
	}
	if !in.Priority.Valid() {
		s.logger.Error("invalid priority value", "priority", string(in.Priority))
		return domain.Task{}, domain.ErrInvalidPriority
	}

	s.mu.Lock()
	now := s.clock()
	task, err := domain.NewTask(domain.TaskInput{
		ID:       s.nextIDLocked(now),
		Text:     in.Text,
		Category: in.Category,
		Priority: in.Priority,
		Deadline: in.Deadline,
	}, now)
	if err != nil {
		s.mu.Unlock()
		return domain.Task{}, err
	}
	s.tasks = append([]domain.Task{task}, s.tasks...)
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.animator.Animate(Animation{Target: TargetTaskList, Effect: EffectEnter, Duration: enterDuration, Easing: EaseOutExpo})
	s.reportPersist(persistErr)
	s.notifier.Notify(Notice{Title: "Task Added!", Body: "Your task has been successfully added.", Kind: NoticeSuccess})
	s.logger.Debug("task added", "id", task.ID, "priority", string(task.Priority))
	return task, persistErr
}

// ToggleCompleted flips the completed flag. The bool result is false on a lookup miss.
func (s *Service) ToggleCompleted(ctx context.Context, id int64) (domain.Task, bool, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, false, nil
	}
	s.tasks[idx].ToggleCompleted()
	task := s.tasks[idx]
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.reportPersist(persistErr)
	s.animator.Animate(Animation{Target: TaskTarget(id), Effect: EffectPulse, Duration: pulseDuration, Easing: EaseInOutQuad})
	s.logger.Debug("task toggled", "id", id, "completed", task.Completed)
	return task, true, persistErr
}

// EditTask asks dialogs for new field values and overwrites the task when confirmed.
// A lookup miss or a cancelled dialog leaves the list unchanged.
func (s *Service) EditTask(ctx context.Context, id int64, dialogs Dialogs) (domain.Task, bool, error) {
	current, ok := s.Task(id)
	if !ok || dialogs == nil {
		return domain.Task{}, false, nil
	}
	edit, confirmed := dialogs.EditTask(ctx, current)
	if !confirmed {
		return current, false, nil
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, false, nil
	}
	updated := s.tasks[idx]
	if err := updated.ApplyEdit(edit); err != nil {
		s.mu.Unlock()
		return current, false, err
	}
	s.tasks[idx] = updated
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.reportPersist(persistErr)
	s.logger.Debug("task edited", "id", id)
	return updated, true, persistErr
}

// DeleteTask always asks for confirmation, then removes the task with id. Unknown ids
// leave the list unchanged.
func (s *Service) DeleteTask(ctx context.Context, id int64, dialogs Dialogs) (bool, error) {
	if dialogs == nil || !dialogs.Confirm(ctx, DeleteConfirmTitle, DeleteConfirmBody) {
		return false, nil
	}
	if _, ok := s.Task(id); !ok {
		return false, nil
	}
	s.animator.Animate(Animation{Target: TaskTarget(id), Effect: EffectExit, Duration: exitDuration, Easing: EaseOutExpo})

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.tasks = slices.Delete(s.tasks, idx, idx+1)
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.reportPersist(persistErr)
	s.notifier.Notify(Notice{Title: "Deleted!", Body: "Your task has been deleted.", Kind: NoticeSuccess})
	s.logger.Debug("task deleted", "id", id)
	return true, persistErr
}

// Theme returns the stored theme preference.
func (s *Service) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme stores a theme preference. A failed write keeps the in-memory value.
func (s *Service) SetTheme(ctx context.Context, theme Theme) error {
	if theme != ThemeDark && theme != ThemeLight {
		return ErrInvalidTheme
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	if err := s.store.Set(ctx, KeyTheme, string(theme)); err != nil {
		s.logger.Error("error saving theme preference", "err", err)
		return fmt.Errorf("%w: theme: %v", ErrPersist, err)
	}
	return nil
}

// ToggleTheme switches from current to the opposite theme and stores it.
func (s *Service) ToggleTheme(ctx context.Context, current Theme) (Theme, error) {
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}

// ExportTasks returns the list in persisted record form.
func (s *Service) ExportTasks() []TaskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskRecord, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, toRecord(task))
	}
	return out
}

// ImportTasks replaces the list with records and persists it. Records must carry
// unique positive ids.
func (s *Service) ImportTasks(ctx context.Context, records []TaskRecord) error {
	tasks := make([]domain.Task, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, rec := range records {
		if rec.ID <= 0 {
			return fmt.Errorf("record %d: %w", i, domain.ErrInvalidID)
		}
		if _, ok := seen[rec.ID]; ok {
			return fmt.Errorf("record %d: %w: %d", i, ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		tasks = append(tasks, fromRecord(rec))
	}

	s.mu.Lock()
	s.tasks = tasks
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.reportPersist(persistErr)
	return persistErr
}

// nextIDLocked derives an id from the clock, bumped past the current maximum.
func (s *Service) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	for _, task := range s.tasks {
		if task.ID >= id {
			id = task.ID + 1
		}
	}
	if id <= 0 {
		id = 1
	}
	return id
}

func (s *Service) indexLocked(id int64) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

// persistLocked writes the whole list under KeyTasks.
func (s *Service) persistLocked(ctx context.Context) error {
	if s.store == nil {
		s.logger.Warn("storage is not available")
		return nil
	}
	encoded, err := EncodeTasks(s.tasks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.store.Set(ctx, KeyTasks, encoded); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// reportPersist logs and surfaces a failed write without interrupting the session.
func (s *Service) reportPersist(err error) {
	if err == nil || !errors.Is(err, ErrPersist) {
		return
	}
	s.logger.Error("error saving tasks", "err", err)
	s.notifier.Notify(Notice{
		Title: "Error!",
		Body:  "Could not save tasks. Storage might not be available.",
		Kind:  NoticeError,
	})
}

// ParseTheme normalizes a stored or user-provided theme name.
func ParseTheme(raw string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return ThemeUnset, ErrInvalidTheme
	}
}
