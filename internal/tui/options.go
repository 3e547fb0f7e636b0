package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/evanschultz/tick/internal/app"
)

// ThemeMode selects how the initial palette is chosen.
type ThemeMode string

// ThemeMode values.
const (
	ThemeModeAuto  ThemeMode = "auto"
	ThemeModeDark  ThemeMode = "dark"
	ThemeModeLight ThemeMode = "light"
)

type Option func(*Model)

// WithEffects shares an effects registry with the service collaborators.
func WithEffects(fx *Effects) Option {
	return func(m *Model) {
		if fx != nil {
			m.fx = fx
		}
	}
}

// WithThemeMode forces a palette; ThemeModeAuto uses the stored preference, then the terminal background.
func WithThemeMode(mode ThemeMode) Option {
	return func(m *Model) {
		switch mode {
		case ThemeModeDark:
			m.themeMode = mode
			m.theme = app.ThemeDark
		case ThemeModeLight:
			m.themeMode = mode
			m.theme = app.ThemeLight
		case ThemeModeAuto:
			m.themeMode = mode
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithClock replaces the wall clock used for rendering deadlines and effects.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
