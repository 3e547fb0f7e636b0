package report

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer renders markdown for terminal output and recreates the glamour renderer when
// the wrap width changes.
type Renderer struct {
	// Style is a glamour standard style name such as "dark", "light" or "notty".
	Style string

	width    int
	renderer *glamour.TermRenderer
}

// Render converts markdown into ANSI-styled terminal text wrapped at width. Renderer
// failures fall back to the raw markdown.
func (r *Renderer) Render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		style := r.Style
		if style == "" {
			style = "dark"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
