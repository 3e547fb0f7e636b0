package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/domain"
)

// editFlags carries field overrides given on the command line. Nil fields keep the
// current value.
type editFlags struct {
	text     *string
	category *string
	priority *string
	deadline *string
}

func (f editFlags) any() bool {
	return f.text != nil || f.category != nil || f.priority != nil || f.deadline != nil
}

// promptDialogs answers service dialogs from flags or, failing that, from line prompts.
type promptDialogs struct {
	reader    *bufio.Reader
	out       io.Writer
	assumeYes bool
	edit      editFlags

	// confirmed records the last Confirm answer.
	confirmed bool
}

var _ app.Dialogs = (*promptDialogs)(nil)

func newPromptDialogs(in io.Reader, out io.Writer) *promptDialogs {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &promptDialogs{reader: bufio.NewReader(in), out: out}
}

// Confirm asks a y/N question; anything but yes cancels.
func (d *promptDialogs) Confirm(_ context.Context, title, body string) bool {
	d.confirmed = d.assumeYes
	if d.assumeYes {
		return true
	}
	answer, err := readPromptLine(d.reader, d.out, fmt.Sprintf("%s %s [y/N]: ", title, body))
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		d.confirmed = true
	}
	return d.confirmed
}

// EditTask applies flag overrides, or prompts for each field with the current value as
// default. A blank answer keeps the field; "-" clears the deadline.
func (d *promptDialogs) EditTask(_ context.Context, current domain.Task) (domain.TaskEdit, bool) {
	edit := current.Edit()
	if d.edit.any() {
		return applyEditFlags(edit, d.edit)
	}

	var answers editFlags
	prompts := []struct {
		label string
		value string
		dst   **string
	}{
		{"Text", edit.Text, &answers.text},
		{"Category", edit.Category, &answers.category},
		{"Priority (low|medium|high)", string(edit.Priority), &answers.priority},
		{"Deadline (YYYY-MM-DD, - clears)", domain.FormatDeadline(edit.Deadline), &answers.deadline},
	}
	for _, p := range prompts {
		value, err := readPromptLine(d.reader, d.out, fmt.Sprintf("%s [%s]: ", p.label, p.value))
		if err != nil {
			return domain.TaskEdit{}, false
		}
		if value != "" {
			*p.dst = &value
		}
	}
	return applyEditFlags(edit, answers)
}

func applyEditFlags(edit domain.TaskEdit, f editFlags) (domain.TaskEdit, bool) {
	if f.text != nil {
		edit.Text = *f.text
	}
	if f.category != nil {
		edit.Category = *f.category
	}
	if f.priority != nil {
		edit.Priority = domain.Priority(strings.ToLower(strings.TrimSpace(*f.priority)))
	}
	if f.deadline != nil {
		deadline, err := domain.ParseDeadline(*f.deadline)
		if err != nil {
			return domain.TaskEdit{}, false
		}
		edit.Deadline = deadline
	}
	return edit, true
}

// readPromptLine renders one prompt and returns the trimmed response.
func readPromptLine(reader *bufio.Reader, output io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(output, prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := reader.ReadString('\n')
	switch {
	case err == nil:
		return strings.TrimSpace(line), nil
	case errors.Is(err, io.EOF):
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return "", io.EOF
		}
		return trimmed, nil
	default:
		return "", fmt.Errorf("read prompt value: %w", err)
	}
}

// consoleNotifier prints notices as single styled lines.
type consoleNotifier struct {
	out io.Writer
}

var _ app.Notifier = consoleNotifier{}

func (n consoleNotifier) Notify(notice app.Notice) {
	if n.out == nil {
		return
	}
	color := "#34D399"
	switch notice.Kind {
	case app.NoticeError:
		color = "#F87171"
	case app.NoticeInfo:
		color = "#60A5FA"
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(notice.Title)
	line := title
	if body := strings.TrimSpace(notice.Body); body != "" {
		line += " " + body
	}
	_, _ = lipgloss.Fprintln(n.out, line)
}
