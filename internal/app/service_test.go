package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/tick/internal/domain"
)

type fakeStore struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = value
	return nil
}

type recordingNotifier struct {
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.notices = append(r.notices, n)
}

type recordingAnimator struct {
	animations []Animation
}

func (r *recordingAnimator) Animate(a Animation) {
	r.animations = append(r.animations, a)
}

type recordingTooltips struct {
	attached map[string]TooltipOptions
}

func (r *recordingTooltips) Attach(selector string, opts TooltipOptions) {
	if r.attached == nil {
		r.attached = map[string]TooltipOptions{}
	}
	r.attached[selector] = opts
}

type scriptedDialogs struct {
	confirm  bool
	edit     domain.TaskEdit
	prompted int
}

func (s *scriptedDialogs) Confirm(context.Context, string, string) bool {
	s.prompted++
	return s.confirm
}

func (s *scriptedDialogs) EditTask(_ context.Context, current domain.Task) (domain.TaskEdit, bool) {
	s.prompted++
	return s.edit, s.confirm
}

// steppingClock returns a clock that advances one millisecond per call.
func steppingClock(start time.Time) Clock {
	now := start
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func newTestService(store Store) (*Service, *recordingNotifier, *recordingAnimator) {
	notifier := &recordingNotifier{}
	animator := &recordingAnimator{}
	svc := NewService(store, steppingClock(time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)), ServiceConfig{
		Notifier: notifier,
		Animator: animator,
	})
	svc.Initialize(context.Background())
	return svc, notifier, animator
}

func mustAdd(t *testing.T, svc *Service, text string, priority domain.Priority) domain.Task {
	t.Helper()
	task, err := svc.AddTask(context.Background(), AddTaskInput{Text: text, Priority: priority})
	if err != nil {
		t.Fatalf("AddTask(%q) error = %v", text, err)
	}
	return task
}

func TestAddTaskPrependsAndPersists(t *testing.T) {
	store := newFakeStore()
	svc, notifier, animator := newTestService(store)

	first := mustAdd(t, svc, "first", domain.PriorityLow)
	second := mustAdd(t, svc, "  second  ", domain.PriorityHigh)

	tasks := svc.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Fatalf("expected newest-first order, got %#v", tasks)
	}
	if second.Text != "second" || second.Category != domain.DefaultCategory {
		t.Fatalf("unexpected normalized task %#v", second)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if !strings.Contains(store.values[KeyTasks], `"text":"second"`) {
		t.Fatalf("expected persisted list to include new task, got %s", store.values[KeyTasks])
	}
	if len(notifier.notices) != 2 || notifier.notices[0].Title != "Task Added!" {
		t.Fatalf("unexpected notices %#v", notifier.notices)
	}
	if len(animator.animations) != 2 || animator.animations[0].Target != TargetTaskList {
		t.Fatalf("unexpected animations %#v", animator.animations)
	}
}

func TestAddTaskRejectsInvalidInput(t *testing.T) {
	store := newFakeStore()
	svc, notifier, _ := newTestService(store)
	mustAdd(t, svc, "keep", domain.PriorityMedium)
	setsBefore := store.sets

	cases := []struct {
		name string
		in   AddTaskInput
		want error
	}{
		{name: "empty text", in: AddTaskInput{Text: "", Priority: domain.PriorityLow}, want: domain.ErrInvalidText},
		{name: "whitespace text", in: AddTaskInput{Text: " \n\t", Priority: domain.PriorityLow}, want: domain.ErrInvalidText},
		{name: "bad priority", in: AddTaskInput{Text: "x", Priority: "urgent"}, want: domain.ErrInvalidPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddTask(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if got := len(svc.Tasks()); got != 1 {
		t.Fatalf("expected list unchanged at 1 task, got %d", got)
	}
	if store.sets != setsBefore {
		t.Fatal("expected rejected adds not to persist")
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("expected no notice for rejected adds, got %#v", notifier.notices)
	}
}

func TestAddTaskIDsStayUniqueWithFrozenClock(t *testing.T) {
	frozen := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	svc := NewService(newFakeStore(), func() time.Time { return frozen }, ServiceConfig{})
	svc.Initialize(context.Background())
	a := mustAdd(t, svc, "a", domain.PriorityLow)
	b := mustAdd(t, svc, "b", domain.PriorityLow)
	if a.ID == b.ID {
		t.Fatalf("expected unique ids, both were %d", a.ID)
	}
	if a.ID != frozen.UnixMilli() {
		t.Fatalf("expected id from creation time, got %d", a.ID)
	}
}

func TestToggleCompletedTwiceRestoresState(t *testing.T) {
	svc, _, animator := newTestService(newFakeStore())
	task := mustAdd(t, svc, "toggle me", domain.PriorityLow)

	toggled, ok, err := svc.ToggleCompleted(context.Background(), task.ID)
	if err != nil || !ok || !toggled.Completed {
		t.Fatalf("first toggle = %#v, %t, %v", toggled, ok, err)
	}
	last := animator.animations[len(animator.animations)-1]
	if last.Target != TaskTarget(task.ID) || last.Effect != EffectPulse {
		t.Fatalf("expected pulse on toggled row, got %#v", last)
	}
	toggled, ok, err = svc.ToggleCompleted(context.Background(), task.ID)
	if err != nil || !ok || toggled.Completed {
		t.Fatalf("second toggle = %#v, %t, %v", toggled, ok, err)
	}

	if _, ok, err := svc.ToggleCompleted(context.Background(), 999); ok || err != nil {
		t.Fatalf("expected silent miss, got %t, %v", ok, err)
	}
}

func TestEditTask(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)
	task := mustAdd(t, svc, "draft", domain.PriorityLow)
	deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	cancel := &scriptedDialogs{confirm: false, edit: domain.TaskEdit{Text: "ignored", Priority: domain.PriorityHigh}}
	if _, changed, err := svc.EditTask(context.Background(), task.ID, cancel); changed || err != nil {
		t.Fatalf("cancelled edit = %t, %v", changed, err)
	}
	if got, _ := svc.Task(task.ID); got.Text != "draft" {
		t.Fatalf("expected cancelled edit to keep text, got %q", got.Text)
	}

	accept := &scriptedDialogs{confirm: true, edit: domain.TaskEdit{
		Text:     "final",
		Category: "work",
		Priority: domain.PriorityHigh,
		Deadline: &deadline,
	}}
	updated, changed, err := svc.EditTask(context.Background(), task.ID, accept)
	if err != nil || !changed {
		t.Fatalf("EditTask() = %t, %v", changed, err)
	}
	if updated.Text != "final" || updated.Category != "work" || updated.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected edited task %#v", updated)
	}
	if !strings.Contains(store.values[KeyTasks], `"deadline":"2026-05-01"`) {
		t.Fatalf("expected persisted deadline, got %s", store.values[KeyTasks])
	}

	invalid := &scriptedDialogs{confirm: true, edit: domain.TaskEdit{Text: " ", Priority: domain.PriorityLow}}
	if _, changed, err := svc.EditTask(context.Background(), task.ID, invalid); changed || !errors.Is(err, domain.ErrInvalidText) {
		t.Fatalf("expected rejected edit, got %t, %v", changed, err)
	}

	miss := &scriptedDialogs{confirm: true}
	if _, changed, err := svc.EditTask(context.Background(), 12345, miss); changed || err != nil || miss.prompted != 0 {
		t.Fatalf("expected silent miss without prompt, got %t, %v, prompted=%d", changed, err, miss.prompted)
	}
}

func TestDeleteTask(t *testing.T) {
	svc, notifier, animator := newTestService(newFakeStore())
	keep := mustAdd(t, svc, "keep", domain.PriorityLow)
	drop := mustAdd(t, svc, "drop", domain.PriorityLow)

	cancel := &scriptedDialogs{confirm: false}
	if removed, err := svc.DeleteTask(context.Background(), drop.ID, cancel); removed || err != nil {
		t.Fatalf("cancelled delete = %t, %v", removed, err)
	}
	if len(svc.Tasks()) != 2 {
		t.Fatal("expected cancelled delete to keep list")
	}

	unknown := &scriptedDialogs{confirm: true}
	if removed, err := svc.DeleteTask(context.Background(), 777, unknown); removed || err != nil {
		t.Fatalf("unknown delete = %t, %v", removed, err)
	}
	if unknown.prompted != 1 {
		t.Fatalf("expected unknown id to still prompt once, got %d", unknown.prompted)
	}
	if len(svc.Tasks()) != 2 {
		t.Fatal("expected unknown delete to keep list")
	}

	confirm := &scriptedDialogs{confirm: true}
	removed, err := svc.DeleteTask(context.Background(), drop.ID, confirm)
	if err != nil || !removed {
		t.Fatalf("DeleteTask() = %t, %v", removed, err)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Fatalf("expected only kept task, got %#v", tasks)
	}
	last := animator.animations[len(animator.animations)-1]
	if last.Effect != EffectExit || last.Target != TaskTarget(drop.ID) {
		t.Fatalf("expected exit animation on deleted row, got %#v", last)
	}
	if notifier.notices[len(notifier.notices)-1].Title != "Deleted!" {
		t.Fatalf("expected deleted notice, got %#v", notifier.notices)
	}
}

func TestFilterAndStatsScenarios(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore())
	mustAdd(t, svc, "Buy milk", domain.PriorityLow)

	stats := svc.Stats()
	if stats.Total != 1 || stats.Active != 1 || stats.Completed != 0 || stats.Percent != 0 {
		t.Fatalf("unexpected stats after first add %#v", stats)
	}

	done := mustAdd(t, svc, "Walk dog", domain.PriorityMedium)
	if _, _, err := svc.ToggleCompleted(context.Background(), done.ID); err != nil {
		t.Fatalf("ToggleCompleted() error = %v", err)
	}
	if got := svc.Stats().Percent; got != 50 {
		t.Fatalf("expected 50%% progress, got %v", got)
	}

	active := svc.FilterTasks(domain.FilterActive)
	completed := svc.FilterTasks(domain.FilterCompleted)
	if len(active) != 1 || len(completed) != 1 || completed[0].ID != done.ID {
		t.Fatalf("unexpected filter result active=%#v completed=%#v", active, completed)
	}
	if len(svc.FilterTasks(domain.FilterAll)) != 2 {
		t.Fatal("expected all filter to return whole list")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	store := newFakeStore()
	clock := steppingClock(time.Date(2026, 2, 21, 12, 0, 0, 123456789, time.UTC))
	svc := NewService(store, clock, ServiceConfig{})
	svc.Initialize(context.Background())

	deadline := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	if _, err := svc.AddTask(context.Background(), AddTaskInput{Text: "a", Category: "home", Priority: domain.PriorityHigh, Deadline: &deadline}); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	b := mustAdd(t, svc, "b", domain.PriorityLow)
	if _, _, err := svc.ToggleCompleted(context.Background(), b.ID); err != nil {
		t.Fatalf("ToggleCompleted() error = %v", err)
	}

	reloaded := NewService(store, clock, ServiceConfig{})
	reloaded.Initialize(context.Background())
	want := svc.Tasks()
	got := reloaded.Tasks()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("list differs after reload:\nwant %#v\ngot  %#v", want, got)
	}
	if ns := want[0].CreatedAt.Nanosecond(); ns%int(time.Millisecond) != 0 {
		t.Fatalf("expected millisecond created_at, got %d ns", ns)
	}
}

func TestInitializeFallsBackToEmptyList(t *testing.T) {
	failing := newFakeStore()
	failing.getErr = errors.New("storage disabled")
	svc, _, _ := newTestService(failing)
	if got := len(svc.Tasks()); got != 0 {
		t.Fatalf("expected empty list when storage throws, got %d", got)
	}

	corrupt := newFakeStore()
	corrupt.values[KeyTasks] = "{not json"
	svc, _, _ = newTestService(corrupt)
	if got := len(svc.Tasks()); got != 0 {
		t.Fatalf("expected empty list for corrupt data, got %d", got)
	}

	nilStore, _, _ := newTestService(nil)
	if _, err := nilStore.AddTask(context.Background(), AddTaskInput{Text: "x", Priority: domain.PriorityLow}); err != nil {
		t.Fatalf("expected unavailable storage to be tolerated, got %v", err)
	}
}

func TestInitializeDropsDuplicateIDs(t *testing.T) {
	store := newFakeStore()
	store.values[KeyTasks] = `[{"id":2,"text":"a","category":"x","priority":"low","deadline":null,"completed":false,"createdAt":"2026-02-21T12:00:00.000Z"},` +
		`{"id":2,"text":"dup","category":"x","priority":"low","deadline":"","completed":true,"createdAt":""},` +
		`{"id":1,"text":"b","category":"x","priority":"medium","deadline":"2026-01-02","completed":true,"createdAt":""}]`
	svc, _, _ := newTestService(store)
	tasks := svc.Tasks()
	if len(tasks) != 2 || tasks[0].Text != "a" || tasks[1].Text != "b" {
		t.Fatalf("unexpected decoded tasks %#v", tasks)
	}
	if domain.FormatDeadline(tasks[1].Deadline) != "2026-01-02" {
		t.Fatalf("unexpected deadline %v", tasks[1].Deadline)
	}
}

func TestSaveFailureKeepsStateAndNotifies(t *testing.T) {
	store := newFakeStore()
	svc, notifier, _ := newTestService(store)
	store.setErr = errors.New("quota exceeded")

	task, err := svc.AddTask(context.Background(), AddTaskInput{Text: "unsaved", Priority: domain.PriorityLow})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("expected in-memory state to keep task, got %#v", tasks)
	}
	var sawError bool
	for _, n := range notifier.notices {
		if n.Kind == NoticeError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected error notice, got %#v", notifier.notices)
	}
}

func TestThemePreference(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)
	if svc.Theme() != ThemeUnset {
		t.Fatalf("expected unset theme, got %q", svc.Theme())
	}
	next, err := svc.ToggleTheme(context.Background(), ThemeLight)
	if err != nil || next != ThemeDark {
		t.Fatalf("ToggleTheme() = %q, %v", next, err)
	}
	if store.values[KeyTheme] != "dark" {
		t.Fatalf("expected stored theme, got %q", store.values[KeyTheme])
	}
	reloaded, _, _ := newTestService(store)
	if reloaded.Theme() != ThemeDark {
		t.Fatalf("expected reloaded dark theme, got %q", reloaded.Theme())
	}
	if err := svc.SetTheme(context.Background(), "sepia"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestInitializeAttachesTooltips(t *testing.T) {
	tooltips := &recordingTooltips{}
	svc := NewService(newFakeStore(), nil, ServiceConfig{Tooltips: tooltips})
	svc.Initialize(context.Background())
	if tooltips.attached[TooltipEdit].Content != "Edit Task" || tooltips.attached[TooltipDelete].Content != "Delete Task" {
		t.Fatalf("unexpected tooltips %#v", tooltips.attached)
	}
}

func TestImportExportTasks(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore())
	mustAdd(t, svc, "one", domain.PriorityLow)
	mustAdd(t, svc, "two", domain.PriorityHigh)
	records := svc.ExportTasks()

	other, _, _ := newTestService(newFakeStore())
	if err := other.ImportTasks(context.Background(), records); err != nil {
		t.Fatalf("ImportTasks() error = %v", err)
	}
	if got := other.Tasks(); len(got) != 2 || got[0].Text != "two" {
		t.Fatalf("unexpected imported tasks %#v", got)
	}

	dup := append(records, records[0])
	if err := other.ImportTasks(context.Background(), dup); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if err := other.ImportTasks(context.Background(), []TaskRecord{{ID: 0, Text: "x"}}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
