package tui

import (
	"math"
	"testing"
	"time"

	"github.com/evanschultz/tick/internal/app"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func TestEffectsToastLifecycle(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	fx := NewEffects(clock.Now, 3*time.Second, true)

	for i := 0; i < maxToasts+2; i++ {
		fx.Notify(app.Notice{Title: "n", Kind: app.NoticeInfo})
	}
	toasts := fx.Toasts()
	if len(toasts) != maxToasts {
		t.Fatalf("expected %d toasts, got %d", maxToasts, len(toasts))
	}
	if toasts[0].ID == "" || toasts[0].ID == toasts[1].ID {
		t.Fatalf("expected unique toast ids, got %q and %q", toasts[0].ID, toasts[1].ID)
	}
	if !fx.Dismiss(toasts[0].ID) || fx.Dismiss("missing") {
		t.Fatal("unexpected Dismiss() result")
	}
	if !fx.Live() {
		t.Fatal("expected live toasts")
	}

	clock.now = clock.now.Add(3 * time.Second)
	if got := len(fx.Toasts()); got != 0 {
		t.Fatalf("expected expired toasts hidden, got %d", got)
	}
	if fx.Prune() || fx.Live() {
		t.Fatal("expected nothing live after expiry")
	}
}

func TestEffectsAnimationProgress(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	fx := NewEffects(clock.Now, time.Second, true)
	fx.Animate(app.Animation{Target: "row", Effect: app.EffectPulse, Duration: time.Second, Easing: app.EaseLinear})

	clock.now = clock.now.Add(250 * time.Millisecond)
	effect, p, ok := fx.Progress("row")
	if !ok || effect != app.EffectPulse || math.Abs(p-0.25) > 1e-9 {
		t.Fatalf("Progress() = %q, %v, %v", effect, p, ok)
	}

	fx.Animate(app.Animation{Target: "row", Effect: app.EffectExit, Duration: time.Second, Easing: app.EaseLinear})
	if effect, p, _ := fx.Progress("row"); effect != app.EffectExit || p != 0 {
		t.Fatalf("expected restart on same target, got %q %v", effect, p)
	}

	clock.now = clock.now.Add(time.Second)
	if _, p, ok := fx.Progress("row"); ok || p != 1 {
		t.Fatalf("expected finished animation, got %v %v", p, ok)
	}
	if fx.Prune() {
		t.Fatal("expected prune to drop the finished animation")
	}
	if _, _, ok := fx.Progress("row"); ok {
		t.Fatal("expected pruned target")
	}
}

func TestEffectsIgnoresDisabledOrEmptyAnimations(t *testing.T) {
	fx := NewEffects(nil, 0, false)
	fx.Animate(app.Animation{Target: "row", Duration: time.Second})
	if fx.Live() {
		t.Fatal("expected disabled animations to be dropped")
	}

	fx = NewEffects(nil, 0, true)
	fx.Animate(app.Animation{Target: "", Duration: time.Second})
	fx.Animate(app.Animation{Target: "row", Duration: 0})
	if fx.Live() {
		t.Fatal("expected invalid animations to be dropped")
	}
}

func TestEffectsTooltips(t *testing.T) {
	fx := NewEffects(nil, 0, true)
	fx.Attach(app.TooltipEdit, app.TooltipOptions{Content: "Edit Task", Placement: "top"})
	fx.Attach(app.TooltipTheme, app.TooltipOptions{})
	if got, ok := fx.Tooltip(app.TooltipEdit); !ok || got != "Edit Task" {
		t.Fatalf("Tooltip() = %q, %v", got, ok)
	}
	if _, ok := fx.Tooltip(app.TooltipTheme); ok {
		t.Fatal("expected empty content to be ignored")
	}
}

func TestEase(t *testing.T) {
	cases := []struct {
		kind app.Easing
		t    float64
		want float64
	}{
		{kind: app.EaseLinear, t: 0.3, want: 0.3},
		{kind: app.EaseInOutQuad, t: 0.25, want: 0.125},
		{kind: app.EaseInOutQuad, t: 0.75, want: 0.875},
		{kind: app.EaseOutExpo, t: 0.1, want: 0.5},
		{kind: app.EaseOutExpo, t: -1, want: 0},
		{kind: app.EaseOutExpo, t: 2, want: 1},
	}
	for _, tc := range cases {
		if got := ease(tc.kind, tc.t); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ease(%q, %v) = %v, want %v", tc.kind, tc.t, got, tc.want)
		}
	}
}
