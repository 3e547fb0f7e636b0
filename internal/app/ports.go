package app

import (
	"context"
	"time"

	"github.com/evanschultz/tick/internal/domain"
)

// Store is the key-value persistence adapter. Get reports false when the key is absent.
type Store interface {
	Get(context.Context, string) (string, bool, error)
	Set(context.Context, string, string) error
}

// Dialogs collects user decisions. Both calls may suspend until the user answers.
type Dialogs interface {
	Confirm(ctx context.Context, title, body string) bool
	EditTask(ctx context.Context, current domain.Task) (domain.TaskEdit, bool)
}

// NoticeKind classifies a transient notification.
type NoticeKind string

// NoticeSuccess and related constants define notice kinds.
const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is one toast-style notification.
type Notice struct {
	Title string
	Body  string
	Kind  NoticeKind
}

// Notifier shows non-blocking notifications.
type Notifier interface {
	Notify(Notice)
}

// Effect names one visual transition.
type Effect string

// EffectEnter and related constants define the transitions the controller requests.
const (
	EffectEnter Effect = "enter"
	EffectPulse Effect = "pulse"
	EffectExit  Effect = "exit"
)

// Easing names an easing curve.
type Easing string

// EaseOutExpo and related constants define supported easing curves.
const (
	EaseLinear    Easing = "linear"
	EaseOutExpo   Easing = "easeOutExpo"
	EaseInOutQuad Easing = "easeInOutQuad"
)

// Animation is a fire-and-forget visual transition request.
type Animation struct {
	Target   string
	Effect   Effect
	Duration time.Duration
	Easing   Easing
}

// Animator plays animations. Correctness never depends on an animation running.
type Animator interface {
	Animate(Animation)
}

// TooltipOptions configures one tooltip attachment.
type TooltipOptions struct {
	Content   string
	Placement string
}

// Tooltips attaches cosmetic hints to named affordances.
type Tooltips interface {
	Attach(selector string, opts TooltipOptions)
}

// Logger is the diagnostic sink used by the service.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}
