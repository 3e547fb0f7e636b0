package tui

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/domain"
	"github.com/lucasb-eyer/go-colorful"
)

// palette holds the hex colors of one theme.
type palette struct {
	theme   app.Theme
	text    string
	muted   string
	dim     string
	accent  string
	success string
	danger  string
	surface string
	high    string
	medium  string
	low     string
}

var darkPalette = palette{
	theme:   app.ThemeDark,
	text:    "#E5E7EB",
	muted:   "#9CA3AF",
	dim:     "#4B5563",
	accent:  "#60A5FA",
	success: "#34D399",
	danger:  "#F87171",
	surface: "#1F2937",
	high:    "#F87171",
	medium:  "#FBBF24",
	low:     "#34D399",
}

var lightPalette = palette{
	theme:   app.ThemeLight,
	text:    "#1F2937",
	muted:   "#6B7280",
	dim:     "#D1D5DB",
	accent:  "#2563EB",
	success: "#059669",
	danger:  "#DC2626",
	surface: "#E5E7EB",
	high:    "#DC2626",
	medium:  "#D97706",
	low:     "#059669",
}

// paletteFor returns the palette of theme; unset falls back to dark.
func paletteFor(theme app.Theme) palette {
	if theme == app.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

func (p palette) priority(pr domain.Priority) color.Color {
	switch pr {
	case domain.PriorityHigh:
		return lipgloss.Color(p.high)
	case domain.PriorityMedium:
		return lipgloss.Color(p.medium)
	default:
		return lipgloss.Color(p.low)
	}
}

func (p palette) notice(kind app.NoticeKind) color.Color {
	switch kind {
	case app.NoticeError:
		return lipgloss.Color(p.danger)
	case app.NoticeSuccess:
		return lipgloss.Color(p.success)
	default:
		return lipgloss.Color(p.accent)
	}
}

// blend mixes two hex colors in Lab space; t is clamped to [0,1].
func blend(from, to string, t float64) color.Color {
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	if errA != nil || errB != nil {
		return lipgloss.Color(to)
	}
	return lipgloss.Color(a.BlendLab(b, clampFloat(t, 0, 1)).Clamped().Hex())
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// rowItem is one task to draw. Ghost rows are removed tasks still playing their exit.
type rowItem struct {
	Task  domain.Task
	Ghost bool
}

// renderedRow is one drawn line tagged with the task id it represents.
type renderedRow struct {
	ID    int64
	Line  string
	Ghost bool
}

// rowOptions carries the inputs shared by all rows.
type rowOptions struct {
	width    int
	selected int64
	today    time.Time
	pal      palette
	fx       *Effects
}

// Row cell geometry used for mouse hit testing.
const (
	cursorWidth   = 2
	checkboxStart = cursorWidth
	checkboxEnd   = cursorWidth + 3
	priorityWidth = 7
	minTextWidth  = 8
)

// renderTaskRows projects items into one line each, in order.
func renderTaskRows(items []rowItem, opts rowOptions) []renderedRow {
	rows := make([]renderedRow, 0, len(items))
	for idx, item := range items {
		rows = append(rows, renderedRow{
			ID:    item.Task.ID,
			Line:  renderTaskRow(item, idx, opts),
			Ghost: item.Ghost,
		})
	}
	return rows
}

// renderTaskRow draws one task. Layout: cursor, checkbox, priority, text, then category
// and deadline right-aligned.
func renderTaskRow(item rowItem, idx int, opts rowOptions) string {
	task := item.Task
	pal := opts.pal
	selected := !item.Ghost && task.ID == opts.selected

	textColor := pal.text
	if task.Completed {
		textColor = pal.muted
	}
	base := lipgloss.NewStyle()
	if selected {
		base = base.Background(lipgloss.Color(pal.surface))
	}

	lead := 0
	fg := lipgloss.Color(textColor)
	if opts.fx != nil {
		if item.Ghost {
			if _, p, ok := opts.fx.Progress(app.TaskTarget(task.ID)); ok {
				lead = int(p * float64(max(0, opts.width)/3))
				fg = blend(textColor, pal.dim, p)
			}
		} else {
			if effect, p, ok := opts.fx.Progress(app.TaskTarget(task.ID)); ok && effect == app.EffectPulse {
				base = base.Background(blend(pal.surface, pal.accent, 0.6*math.Sin(math.Pi*p)))
			}
			if idx == 0 {
				if effect, p, ok := opts.fx.Progress(app.TargetTaskList); ok && effect == app.EffectEnter {
					lead = int((1 - p) * 8)
					fg = blend(pal.dim, textColor, p)
				}
			}
		}
	}

	cursor := "  "
	if selected {
		cursor = "› "
	}
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	meta := task.Category
	if task.Deadline != nil {
		meta += "  " + formatDeadline(task.Deadline)
	}
	overdue := task.Deadline != nil && !task.Completed && !opts.today.IsZero() && task.Deadline.Before(truncateDay(opts.today))

	fixed := lead + cursorWidth + 4 + priorityWidth + 2 + lipgloss.Width(meta)
	textWidth := max(minTextWidth, opts.width-fixed)
	text := truncate(task.Text, textWidth)
	gap := max(1, opts.width-fixed-lipgloss.Width(text)+2)

	cursorStyle := base.Foreground(lipgloss.Color(pal.accent)).Bold(true)
	boxStyle := base.Foreground(lipgloss.Color(pal.muted))
	if task.Completed {
		boxStyle = base.Foreground(lipgloss.Color(pal.success))
	}
	prioStyle := base.Foreground(pal.priority(task.Priority))
	textStyle := base.Foreground(fg)
	if task.Completed {
		textStyle = textStyle.Strikethrough(true)
	}
	metaStyle := base.Foreground(lipgloss.Color(pal.muted))
	if overdue {
		metaStyle = base.Foreground(lipgloss.Color(pal.danger))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", lead))
	b.WriteString(cursorStyle.Render(cursor))
	b.WriteString(boxStyle.Render(box + " "))
	b.WriteString(prioStyle.Render(fmt.Sprintf("%-*s", priorityWidth, string(task.Priority))))
	b.WriteString(textStyle.Render(text))
	b.WriteString(base.Render(strings.Repeat(" ", gap)))
	b.WriteString(metaStyle.Render(meta))
	return b.String()
}

// renderProgressBar draws a bar filled to percent with the percentage appended.
func renderProgressBar(percent float64, width int, pal palette) string {
	percent = clampFloat(percent, 0, 100)
	label := fmt.Sprintf(" %3.0f%%", percent)
	barWidth := max(4, width-len(label))
	filled := int(math.Round(percent / 100 * float64(barWidth)))
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.accent)).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color(pal.dim)).Render(strings.Repeat("░", barWidth-filled))
	return bar + lipgloss.NewStyle().Foreground(lipgloss.Color(pal.muted)).Render(label)
}

// renderStats draws the counters line.
func renderStats(stats domain.Stats, pal palette) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.muted))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.text)).Bold(true)
	parts := []string{
		label.Render("Total ") + value.Render(fmt.Sprint(stats.Total)),
		label.Render("Completed ") + value.Render(fmt.Sprint(stats.Completed)),
		label.Render("Active ") + value.Render(fmt.Sprint(stats.Active)),
	}
	return strings.Join(parts, label.Render("  ·  "))
}

// filterSpan is the horizontal extent of one filter tab.
type filterSpan struct {
	mode       domain.FilterMode
	start, end int
}

// renderFilterTabs draws the filter selector and returns the tab extents.
func renderFilterTabs(current domain.FilterMode, pal palette) (string, []filterSpan) {
	active := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.accent)).Bold(true).Underline(true)
	idle := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.muted))
	var (
		b     strings.Builder
		spans []filterSpan
		x     int
	)
	for i, mode := range domain.FilterModes() {
		if i > 0 {
			b.WriteString("   ")
			x += 3
		}
		label := fmt.Sprintf("%d %s", i+1, filterLabel(mode))
		spans = append(spans, filterSpan{mode: mode, start: x, end: x + len(label)})
		x += len(label)
		if mode == current {
			b.WriteString(active.Render(label))
		} else {
			b.WriteString(idle.Render(label))
		}
	}
	return b.String(), spans
}

func filterLabel(mode domain.FilterMode) string {
	switch mode {
	case domain.FilterActive:
		return "Active"
	case domain.FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// renderToast draws one notice box.
func renderToast(t Toast, width int, pal palette) string {
	accent := pal.notice(t.Notice.Kind)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(t.Notice.Title)
	lines := []string{title}
	if body := strings.TrimSpace(t.Notice.Body); body != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(pal.text)).Render(body))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// formatDeadline renders a deadline for rows.
func formatDeadline(deadline *time.Time) string {
	if deadline == nil {
		return ""
	}
	return deadline.Format("Jan 2, 2006")
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
