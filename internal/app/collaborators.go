package app

import (
	"context"

	"github.com/evanschultz/tick/internal/domain"
)

// Animation targets addressed by the service.
const (
	TargetTaskList = "task-list"
	taskTargetPfx  = "task:"
)

// Tooltip selectors attached during initialization.
const (
	TooltipEdit   = "edit-btn"
	TooltipDelete = "delete-btn"
	TooltipToggle = "toggle-btn"
	TooltipTheme  = "theme-toggle"
	TooltipFilter = "filter-btn"
)

// Delete confirmation prompt.
const (
	DeleteConfirmTitle = "Are you sure?"
	DeleteConfirmBody  = "You won't be able to revert this!"
)

// TaskTarget returns the animation target addressing one task row.
func TaskTarget(id int64) string {
	return taskTargetPfx + formatTaskID(id)
}

type noopNotifier struct{}

func (noopNotifier) Notify(Notice) {}

type noopAnimator struct{}

func (noopAnimator) Animate(Animation) {}

type noopTooltips struct{}

func (noopTooltips) Attach(string, TooltipOptions) {}

// AnsweredDialogs replays a decision the caller already collected.
type AnsweredDialogs struct {
	Confirmed bool
	Edit      domain.TaskEdit
}

// Confirm returns the recorded confirmation.
func (a AnsweredDialogs) Confirm(context.Context, string, string) bool {
	return a.Confirmed
}

// EditTask returns the recorded edit when confirmed.
func (a AnsweredDialogs) EditTask(context.Context, domain.Task) (domain.TaskEdit, bool) {
	return a.Edit, a.Confirmed
}
