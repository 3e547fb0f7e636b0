package tui

import (
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/domain"
)

func renderFixture(t *testing.T) []domain.Task {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	overdue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a, err := domain.NewTask(domain.TaskInput{ID: 2, Text: "Water plants", Category: "home", Priority: domain.PriorityHigh, Deadline: &overdue}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	b, err := domain.NewTask(domain.TaskInput{ID: 1, Text: "Read book", Priority: domain.PriorityLow}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	b.Completed = true
	return []domain.Task{a, b}
}

func TestRenderTaskRowsCarryIDs(t *testing.T) {
	tasks := renderFixture(t)
	items := []rowItem{{Task: tasks[0]}, {Task: tasks[1]}}
	rows := renderTaskRows(items, rowOptions{
		width:    80,
		selected: 2,
		today:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		pal:      darkPalette,
	})
	if len(rows) != 2 || rows[0].ID != 2 || rows[1].ID != 1 {
		t.Fatalf("unexpected row ids %#v", rows)
	}
	first := rows[0].Line
	for _, want := range []string{"›", "[ ]", "high", "Water plants", "home", "Mar 1, 2026"} {
		if !strings.Contains(first, want) {
			t.Fatalf("expected %q in row %q", want, first)
		}
	}
	second := rows[1].Line
	for _, want := range []string{"[x]", "Read book", domain.DefaultCategory} {
		if !strings.Contains(second, want) {
			t.Fatalf("expected %q in row %q", want, second)
		}
	}
	if strings.Contains(second, "›") {
		t.Fatal("expected only the selected row to carry the cursor")
	}
	if got := lipgloss.Width(first); got > 80 {
		t.Fatalf("expected row to fit width, got %d", got)
	}
}

func TestRenderTaskRowsAreDeterministic(t *testing.T) {
	tasks := renderFixture(t)
	items := []rowItem{{Task: tasks[0]}, {Task: tasks[1]}}
	opts := rowOptions{width: 60, selected: 1, pal: lightPalette}
	a := renderTaskRows(items, opts)
	b := renderTaskRows(items, opts)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs between renders", i)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	bar := renderProgressBar(50, 24, darkPalette)
	if !strings.Contains(bar, " 50%") {
		t.Fatalf("expected percentage label, got %q", bar)
	}
	if got := strings.Count(bar, "█"); got != 10 {
		t.Fatalf("expected 10 filled cells, got %d", got)
	}
	if got := lipgloss.Width(renderProgressBar(150, 24, darkPalette)); got != 24 {
		t.Fatalf("expected clamped bar width 24, got %d", got)
	}
}

func TestRenderFilterTabsSpans(t *testing.T) {
	out, spans := renderFilterTabs(domain.FilterActive, darkPalette)
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	want := []struct {
		mode  domain.FilterMode
		label string
	}{
		{domain.FilterAll, "1 All"},
		{domain.FilterActive, "2 Active"},
		{domain.FilterCompleted, "3 Completed"},
	}
	for i, w := range want {
		if spans[i].mode != w.mode || spans[i].end-spans[i].start != len(w.label) {
			t.Fatalf("unexpected span %d: %#v", i, spans[i])
		}
		if !strings.Contains(out, w.label) {
			t.Fatalf("expected %q in tabs", w.label)
		}
	}
	if spans[1].start != spans[0].end+3 {
		t.Fatalf("expected 3-cell gap between tabs, got %#v", spans)
	}
	if got := lipgloss.Width(out); got != spans[2].end {
		t.Fatalf("expected rendered width %d, got %d", spans[2].end, got)
	}
}

func TestRenderToastAndPalettes(t *testing.T) {
	toast := renderToast(Toast{Notice: app.Notice{Title: "Deleted!", Body: "Your task has been deleted.", Kind: app.NoticeSuccess}}, 32, darkPalette)
	if !strings.Contains(toast, "Deleted!") || !strings.Contains(toast, "╭") {
		t.Fatalf("unexpected toast %q", toast)
	}
	if paletteFor(app.ThemeUnset).theme != app.ThemeDark || paletteFor(app.ThemeLight).theme != app.ThemeLight {
		t.Fatal("unexpected palette selection")
	}
	if blend("#000000", "#ffffff", 0) == nil || blend("bogus", "#ffffff", 0.5) == nil {
		t.Fatal("expected blend to always return a color")
	}
}
