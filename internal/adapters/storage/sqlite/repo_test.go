package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/domain"
)

func TestRepository_GetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, ok, err := repo.Get(ctx, app.KeyTasks); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%t err=%v", ok, err)
	}
	if err := repo.Set(ctx, app.KeyTasks, "[]"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set(ctx, app.KeyTasks, `[{"id":1}]`); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	value, ok, err := repo.Get(ctx, app.KeyTasks)
	if err != nil || !ok {
		t.Fatalf("Get() = ok=%t err=%v", ok, err)
	}
	if value != `[{"id":1}]` {
		t.Fatalf("unexpected value %q", value)
	}
	updated, ok, err := repo.UpdatedAt(ctx, app.KeyTasks)
	if err != nil || !ok || !updated.Equal(now) {
		t.Fatalf("UpdatedAt() = %v, %t, %v", updated, ok, err)
	}
	if err := repo.Set(ctx, " ", "x"); err == nil {
		t.Fatal("expected blank key to be rejected")
	}
}

func TestRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "tick.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	svc := app.NewService(repo, func() time.Time {
		return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	}, app.ServiceConfig{})
	svc.Initialize(ctx)
	added, err := svc.AddTask(ctx, app.AddTaskInput{Text: "Buy milk", Priority: domain.PriorityLow})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if _, err := svc.ToggleTheme(ctx, app.ThemeLight); err != nil {
		t.Fatalf("ToggleTheme() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() reopen error = %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	reloaded := app.NewService(reopened, nil, app.ServiceConfig{})
	reloaded.Initialize(ctx)
	tasks := reloaded.Tasks()
	if len(tasks) != 1 || tasks[0].ID != added.ID || tasks[0].Text != "Buy milk" {
		t.Fatalf("unexpected reloaded tasks %#v", tasks)
	}
	if reloaded.Theme() != app.ThemeDark {
		t.Fatalf("expected dark theme after reload, got %q", reloaded.Theme())
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
