package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/tick/internal/domain"
)

// Markdown renders a filtered task list with its totals as a markdown document.
func Markdown(tasks []domain.Task, stats domain.Stats, mode domain.FilterMode, today time.Time) string {
	var b strings.Builder
	b.WriteString("# Tasks")
	if mode != "" && mode != domain.FilterAll {
		fmt.Fprintf(&b, " (%s)", mode)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "**%d** total · **%d** completed · **%d** active · %.0f%% done\n\n",
		stats.Total, stats.Completed, stats.Active, stats.Percent)

	if len(tasks) == 0 {
		b.WriteString("_Nothing to show._\n")
		return b.String()
	}

	b.WriteString("| | Task | Category | Priority | Deadline | ID |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, task := range tasks {
		box := "[ ]"
		text := escapeCell(task.Text)
		if task.Completed {
			box = "[x]"
			text = "~~" + text + "~~"
		}
		deadline := "-"
		if task.Deadline != nil {
			deadline = domain.FormatDeadline(task.Deadline)
			if !task.Completed && isOverdue(*task.Deadline, today) {
				deadline = "**" + deadline + "** (overdue)"
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | `%d` |\n",
			box, text, escapeCell(task.Category), task.Priority, deadline, task.ID)
	}
	return b.String()
}

// Stats renders the totals as plain lines.
func Stats(stats domain.Stats) string {
	return fmt.Sprintf("total: %d\ncompleted: %d\nactive: %d\npercent: %.0f%%\n",
		stats.Total, stats.Completed, stats.Active, stats.Percent)
}

func isOverdue(deadline, today time.Time) bool {
	if today.IsZero() {
		return false
	}
	y, m, d := today.Date()
	return deadline.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
