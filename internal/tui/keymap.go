package tui

import (
	"charm.land/bubbles/v2/key"
	"github.com/evanschultz/tick/internal/app"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	toggleHelp   key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	addTask      key.Binding
	editTask     key.Binding
	deleteTask   key.Binding
	toggleTask   key.Binding
	filterAll    key.Binding
	filterActive key.Binding
	filterDone   key.Binding
	cycleFilter  key.Binding
	toggleTheme  key.Binding
	copyTask     key.Binding
	reload       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete task")),
		toggleTask:   key.NewBinding(key.WithKeys("space", " ", "x"), key.WithHelp("space/x", "toggle completed")),
		filterAll:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		filterActive: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		filterDone:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		cycleFilter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter tasks")),
		toggleTheme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		copyTask:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// applyTooltips replaces help descriptions with attached tooltip text.
func (k *keyMap) applyTooltips(lookup func(selector string) (string, bool)) {
	if lookup == nil {
		return
	}
	for selector, binding := range map[string]*key.Binding{
		app.TooltipEdit:   &k.editTask,
		app.TooltipDelete: &k.deleteTask,
		app.TooltipToggle: &k.toggleTask,
		app.TooltipFilter: &k.cycleFilter,
		app.TooltipTheme:  &k.toggleTheme,
	} {
		content, ok := lookup(selector)
		if !ok {
			continue
		}
		binding.SetHelp(binding.Help().Key, content)
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.deleteTask, k.toggleTask, k.cycleFilter, k.toggleTheme, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.editTask, k.deleteTask, k.toggleTask, k.copyTask},
		{k.moveUp, k.moveDown, k.filterAll, k.filterActive, k.filterDone, k.cycleFilter},
		{k.toggleTheme, k.reload, k.toggleHelp, k.quit},
	}
}
