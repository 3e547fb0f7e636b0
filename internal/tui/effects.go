package tui

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/evanschultz/tick/internal/app"
	"github.com/google/uuid"
)

// maxToasts bounds the visible notice stack.
const maxToasts = 4

// Toast is one visible notice.
type Toast struct {
	ID      string
	Notice  app.Notice
	Expires time.Time
}

// runningAnimation tracks one animation in flight.
type runningAnimation struct {
	anim  app.Animation
	start time.Time
}

// Effects records notices, animations and tooltips requested by the service and serves
// them to the view. It is safe for concurrent use.
type Effects struct {
	mu         sync.Mutex
	now        func() time.Time
	toastTTL   time.Duration
	animations bool

	toasts   []Toast
	running  map[string]runningAnimation
	tooltips map[string]app.TooltipOptions
}

var (
	_ app.Notifier = (*Effects)(nil)
	_ app.Animator = (*Effects)(nil)
	_ app.Tooltips = (*Effects)(nil)
)

// NewEffects constructs an effects registry. Disabled animations are dropped on arrival.
func NewEffects(now func() time.Time, toastTTL time.Duration, animations bool) *Effects {
	if now == nil {
		now = time.Now
	}
	if toastTTL <= 0 {
		toastTTL = 3 * time.Second
	}
	return &Effects{
		now:        now,
		toastTTL:   toastTTL,
		animations: animations,
		running:    map[string]runningAnimation{},
		tooltips:   map[string]app.TooltipOptions{},
	}
}

// Notify queues a toast.
func (e *Effects) Notify(n app.Notice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toasts = append(e.toasts, Toast{
		ID:      uuid.NewString(),
		Notice:  n,
		Expires: e.now().Add(e.toastTTL),
	})
	if len(e.toasts) > maxToasts {
		e.toasts = slices.Clone(e.toasts[len(e.toasts)-maxToasts:])
	}
}

// Animate starts an animation, replacing any running one on the same target.
func (e *Effects) Animate(a app.Animation) {
	if !e.animations || a.Duration <= 0 || a.Target == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running[a.Target] = runningAnimation{anim: a, start: e.now()}
}

// Attach records a tooltip.
func (e *Effects) Attach(selector string, opts app.TooltipOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tooltips[selector] = opts
}

// Tooltip returns the content attached to selector.
func (e *Effects) Tooltip(selector string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	opts, ok := e.tooltips[selector]
	if !ok || opts.Content == "" {
		return "", false
	}
	return opts.Content, true
}

// Toasts returns the unexpired notices, oldest first.
func (e *Effects) Toasts() []Toast {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	out := make([]Toast, 0, len(e.toasts))
	for _, t := range e.toasts {
		if now.Before(t.Expires) {
			out = append(out, t)
		}
	}
	return out
}

// Dismiss removes one toast by id.
func (e *Effects) Dismiss(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := slices.IndexFunc(e.toasts, func(t Toast) bool { return t.ID == id })
	if idx < 0 {
		return false
	}
	e.toasts = slices.Delete(e.toasts, idx, idx+1)
	return true
}

// Progress reports the eased progress of the animation on target.
func (e *Effects) Progress(target string) (app.Effect, float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	run, ok := e.running[target]
	if !ok {
		return "", 0, false
	}
	elapsed := e.now().Sub(run.start)
	if elapsed >= run.anim.Duration {
		return run.anim.Effect, 1, false
	}
	t := float64(elapsed) / float64(run.anim.Duration)
	return run.anim.Effect, ease(run.anim.Easing, t), true
}

// Prune drops finished animations and expired toasts, reporting whether anything is
// still live.
func (e *Effects) Prune() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for target, run := range e.running {
		if now.Sub(run.start) >= run.anim.Duration {
			delete(e.running, target)
		}
	}
	e.toasts = slices.DeleteFunc(e.toasts, func(t Toast) bool { return !now.Before(t.Expires) })
	return len(e.running) > 0 || len(e.toasts) > 0
}

// Live reports whether any animation or toast is still on screen.
func (e *Effects) Live() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for _, run := range e.running {
		if now.Sub(run.start) < run.anim.Duration {
			return true
		}
	}
	for _, t := range e.toasts {
		if now.Before(t.Expires) {
			return true
		}
	}
	return false
}

// ease maps linear progress t in [0,1] through the named curve.
func ease(kind app.Easing, t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	switch kind {
	case app.EaseOutExpo:
		return 1 - math.Pow(2, -10*t)
	case app.EaseInOutQuad:
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	default:
		return t
	}
}
