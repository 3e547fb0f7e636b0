package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/domain"
)

// Service is the task list controller surface the model drives.
type Service interface {
	FilterTasks(domain.FilterMode) []domain.Task
	Stats() domain.Stats
	Theme() app.Theme
	AddTask(context.Context, app.AddTaskInput) (domain.Task, error)
	ToggleCompleted(context.Context, int64) (domain.Task, bool, error)
	EditTask(context.Context, int64, app.Dialogs) (domain.Task, bool, error)
	DeleteTask(context.Context, int64, app.Dialogs) (bool, error)
	ToggleTheme(context.Context, app.Theme) (app.Theme, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeEditTask
	modeConfirmDelete
)

// task-form field indexes in display order.
const (
	taskFieldText = iota
	taskFieldCategory
	taskFieldPriority
	taskFieldDeadline
)

// priorityOptions stores a package-level helper value.
var priorityOptions = []domain.Priority{
	domain.PriorityLow,
	domain.PriorityMedium,
	domain.PriorityHigh,
}

// Screen layout rows, counted from the top of the view.
const (
	headerRow   = 0
	statsRow    = 1
	progressRow = 2
	filterRow   = 3
	listTop     = 5
	footerRows  = 2
)

const (
	frameInterval    = time.Second / 30
	progressDuration = time.Second
	targetProgress   = "progress-bar"
)

// ghostRow keeps a removed task on screen while its exit animation plays.
type ghostRow struct {
	task  domain.Task
	index int
}

// Model is the terminal presentation of the task list.
type Model struct {
	svc      Service
	fx       *Effects
	now      func() time.Time
	copyText func(string) error

	ready  bool
	width  int
	height int

	status string

	help help.Model
	keys keyMap

	tasks      []domain.Task
	stats      domain.Stats
	filter     domain.FilterMode
	selectedID int64

	theme         app.Theme
	themeMode     ThemeMode
	storedTheme   bool
	themeDetected bool

	mode          inputMode
	formInputs    []textinput.Model
	formFocus     int
	priorityIdx   int
	editingTaskID int64

	pendingDelete domain.Task
	confirmChoice int

	ghosts         []ghostRow
	progressFrom   float64
	progressTo     float64
	frameScheduled bool
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	tasks []domain.Task
	stats domain.Stats
	theme app.Theme
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err       error
	status    string
	reload    bool
	closeForm bool
	focusID   int64
	removed   *ghostRow
	theme     app.Theme
}

// frameMsg advances running effects.
type frameMsg time.Time

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:       svc,
		now:       time.Now,
		copyText:  defaultClipboard,
		status:    "loading...",
		help:      h,
		keys:      newKeyMap(),
		filter:    domain.FilterAll,
		themeMode: ThemeModeAuto,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	if m.fx == nil {
		m.fx = NewEffects(m.now, 0, true)
	}
	m.keys.applyTooltips(m.fx.Tooltip)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	if m.themeMode == ThemeModeAuto {
		return tea.Batch(m.loadData, tea.RequestBackgroundColor)
	}
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.BackgroundColorMsg:
		m.themeDetected = true
		if m.themeMode == ThemeModeAuto && !m.storedTheme {
			if msg.IsDark() {
				m.theme = app.ThemeDark
			} else {
				m.theme = app.ThemeLight
			}
		}
		return m, nil

	case loadedMsg:
		m.tasks = msg.tasks
		m.setStats(msg.stats)
		if m.themeMode == ThemeModeAuto && msg.theme != app.ThemeUnset {
			m.theme = msg.theme
			m.storedTheme = true
		}
		m.clampSelection()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, m.frameCmd()

	case actionMsg:
		if msg.removed != nil {
			if _, _, running := m.fx.Progress(app.TaskTarget(msg.removed.task.ID)); running {
				m.ghosts = append(m.ghosts, *msg.removed)
			}
		}
		if msg.theme != app.ThemeUnset {
			m.theme = msg.theme
			m.storedTheme = true
		}
		if msg.closeForm {
			m.closeForm()
		}
		if msg.focusID != 0 {
			m.selectedID = msg.focusID
		}
		switch {
		case msg.err == nil:
		case errors.Is(msg.err, app.ErrPersist):
			// The service already surfaced the failure as a notice.
			m.status = "changes not saved"
		case isValidationErr(msg.err):
			// Invalid input is rejected without feedback.
		default:
			m.status = msg.err.Error()
		}
		if msg.err == nil && msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			return m, tea.Batch(m.loadData, m.frameCmd())
		}
		return m, m.frameCmd()

	case frameMsg:
		m.frameScheduled = false
		live := m.fx.Prune()
		m.ghosts = slices.DeleteFunc(m.ghosts, func(g ghostRow) bool {
			_, _, running := m.fx.Progress(app.TaskTarget(g.task.ID))
			return !running
		})
		if !live {
			return m, nil
		}
		return m, m.frameCmd()

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	return loadedMsg{
		tasks: m.svc.FilterTasks(m.filter),
		stats: m.svc.Stats(),
		theme: m.svc.Theme(),
	}
}

// frameCmd schedules the next effects frame while anything is animating.
func (m *Model) frameCmd() tea.Cmd {
	if m.frameScheduled || !m.fx.Live() {
		return nil
	}
	m.frameScheduled = true
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// setStats stores new totals and animates the progress bar toward the new percentage.
func (m *Model) setStats(stats domain.Stats) {
	if stats.Percent != m.progressTo {
		m.progressFrom = m.displayedPercent()
		m.progressTo = stats.Percent
		m.fx.Animate(app.Animation{
			Target:   targetProgress,
			Effect:   app.EffectEnter,
			Duration: progressDuration,
			Easing:   app.EaseInOutQuad,
		})
	}
	m.stats = stats
}

// displayedPercent returns the progress bar value for the current frame.
func (m Model) displayedPercent() float64 {
	if _, p, ok := m.fx.Progress(targetProgress); ok {
		return m.progressFrom + (m.progressTo-m.progressFrom)*p
	}
	return m.progressTo
}

func isValidationErr(err error) bool {
	return errors.Is(err, domain.ErrInvalidText) ||
		errors.Is(err, domain.ErrInvalidPriority) ||
		errors.Is(err, domain.ErrInvalidDeadline)
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		m.dismissNewestToast()
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveDown):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		m.help.ShowAll = false
		return m, m.startTaskForm(nil)
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		return m.confirmDeleteAction()
	case key.Matches(msg, m.keys.toggleTask):
		task, ok := m.selectedTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.toggleCmd(task.ID)
	case key.Matches(msg, m.keys.filterAll):
		return m.setFilter(domain.FilterAll)
	case key.Matches(msg, m.keys.filterActive):
		return m.setFilter(domain.FilterActive)
	case key.Matches(msg, m.keys.filterDone):
		return m.setFilter(domain.FilterCompleted)
	case key.Matches(msg, m.keys.cycleFilter):
		modes := domain.FilterModes()
		idx := slices.Index(modes, m.filter)
		return m.setFilter(modes[wrapIndex(idx, 1, len(modes))])
	case key.Matches(msg, m.keys.toggleTheme):
		return m, m.toggleThemeCmd()
	case key.Matches(msg, m.keys.copyTask):
		task, ok := m.selectedTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if err := m.copyText(task.Text); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied " + truncate(task.Text, 32)
		return m, nil
	default:
		return m, nil
	}
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirmDelete {
		switch msg.String() {
		case "esc", "n":
			return m.resolveDelete(false)
		case "h", "left", "l", "right", "tab":
			if m.confirmChoice == 0 {
				m.confirmChoice = 1
			} else {
				m.confirmChoice = 0
			}
			return m, nil
		case "y":
			return m.resolveDelete(true)
		case "enter":
			return m.resolveDelete(m.confirmChoice == 0)
		default:
			return m, nil
		}
	}

	if m.mode == modeAddTask || m.mode == modeEditTask {
		switch {
		case msg.Code == tea.KeyEscape || msg.String() == "esc":
			m.closeForm()
			m.status = "cancelled"
			return m, nil
		case msg.Code == tea.KeyTab || msg.String() == "tab" || msg.String() == "down":
			return m, m.focusTaskFormField(m.formFocus + 1)
		case msg.String() == "shift+tab" || msg.String() == "up":
			return m, m.focusTaskFormField(m.formFocus - 1)
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			return m.submitTaskForm()
		default:
			if m.formFocus == taskFieldPriority {
				switch msg.String() {
				case "h", "left":
					m.cyclePriority(-1)
				case "l", "right", "space", " ":
					m.cyclePriority(1)
				}
				return m, nil
			}
			if len(m.formInputs) == 0 {
				return m, nil
			}
			var cmd tea.Cmd
			m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	styles := in.Styles()
	styles.Cursor.Blink = false
	in.SetStyles(styles)
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startTaskForm opens the add form, or the edit form when task is set.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	m.formFocus = 0
	m.priorityIdx = 0
	m.formInputs = []textinput.Model{
		newModalInput("", "what needs doing? (required)", "", 200),
		newModalInput("", domain.DefaultCategory, "", 60),
		newModalInput("", "low | medium | high", "", 16),
		newModalInput("", "YYYY-MM-DD or -", "", 10),
	}
	if task != nil {
		m.formInputs[taskFieldText].SetValue(task.Text)
		m.formInputs[taskFieldCategory].SetValue(task.Category)
		m.priorityIdx = priorityIndex(task.Priority)
		m.formInputs[taskFieldDeadline].SetValue(domain.FormatDeadline(task.Deadline))
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		m.mode = modeAddTask
		m.editingTaskID = 0
		m.status = "new task"
	}
	m.formInputs[taskFieldPriority].SetValue(string(priorityOptions[m.priorityIdx]))
	return m.focusTaskFormField(0)
}

// focusTaskFormField focuses task form field.
func (m *Model) focusTaskFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = wrapIndex(idx, 0, len(m.formInputs))
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	if idx == taskFieldPriority {
		return nil
	}
	return m.formInputs[idx].Focus()
}

// closeForm leaves form mode and drops its inputs.
func (m *Model) closeForm() {
	if m.mode != modeAddTask && m.mode != modeEditTask {
		return
	}
	m.mode = modeNone
	m.formInputs = nil
	m.formFocus = 0
	m.editingTaskID = 0
}

func priorityIndex(priority domain.Priority) int {
	if idx := slices.Index(priorityOptions, priority); idx >= 0 {
		return idx
	}
	return 0
}

// cyclePriority moves the priority picker by delta.
func (m *Model) cyclePriority(delta int) {
	m.priorityIdx = wrapIndex(m.priorityIdx, delta, len(priorityOptions))
	if len(m.formInputs) > taskFieldPriority {
		m.formInputs[taskFieldPriority].SetValue(string(priorityOptions[m.priorityIdx]))
	}
}

// submitTaskForm sends the form to the service. The form stays open until the service
// accepts it.
func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	if len(m.formInputs) == 0 {
		return m, nil
	}
	deadline, err := domain.ParseDeadline(m.formInputs[taskFieldDeadline].Value())
	if err != nil {
		m.status = "deadline must be YYYY-MM-DD"
		return m, m.focusTaskFormField(taskFieldDeadline)
	}
	text := m.formInputs[taskFieldText].Value()
	category := m.formInputs[taskFieldCategory].Value()
	priority := priorityOptions[m.priorityIdx]
	svc := m.svc

	if m.mode == modeEditTask {
		id := m.editingTaskID
		dialogs := app.AnsweredDialogs{Confirmed: true, Edit: domain.TaskEdit{
			Text:     text,
			Category: category,
			Priority: priority,
			Deadline: deadline,
		}}
		return m, func() tea.Msg {
			task, changed, err := svc.EditTask(context.Background(), id, dialogs)
			msg := actionMsg{err: err, reload: true, closeForm: err == nil || errors.Is(err, app.ErrPersist)}
			if changed {
				msg.status = "task updated"
				msg.focusID = task.ID
			}
			return msg
		}
	}

	in := app.AddTaskInput{Text: text, Category: category, Priority: priority, Deadline: deadline}
	return m, func() tea.Msg {
		task, err := svc.AddTask(context.Background(), in)
		if err != nil && !errors.Is(err, app.ErrPersist) {
			return actionMsg{err: err}
		}
		return actionMsg{err: err, status: "task added", reload: true, closeForm: true, focusID: task.ID}
	}
}

// toggleCmd flips one task through the service.
func (m Model) toggleCmd(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, ok, err := svc.ToggleCompleted(context.Background(), id)
		if !ok {
			return actionMsg{err: err, reload: true}
		}
		status := "marked active"
		if task.Completed {
			status = "marked completed"
		}
		return actionMsg{err: err, status: status, reload: true, focusID: id}
	}
}

// confirmDeleteAction opens the delete confirmation for the selected task.
func (m Model) confirmDeleteAction() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	m.mode = modeConfirmDelete
	m.pendingDelete = task
	m.confirmChoice = 1
	m.status = "confirm delete"
	return m, nil
}

// resolveDelete resumes the pending delete with the user's answer.
func (m Model) resolveDelete(confirmed bool) (tea.Model, tea.Cmd) {
	task := m.pendingDelete
	index := slices.IndexFunc(m.tasks, func(t domain.Task) bool { return t.ID == task.ID })
	m.mode = modeNone
	m.pendingDelete = domain.Task{}
	m.confirmChoice = 0
	if !confirmed {
		m.status = "cancelled"
	} else {
		m.status = "deleting..."
		if next, ok := m.neighborOf(task.ID); ok {
			m.selectedID = next
		}
	}
	svc := m.svc
	return m, func() tea.Msg {
		removed, err := svc.DeleteTask(context.Background(), task.ID, app.AnsweredDialogs{Confirmed: confirmed})
		if !removed {
			return actionMsg{err: err}
		}
		return actionMsg{
			err:     err,
			status:  "task deleted",
			reload:  true,
			removed: &ghostRow{task: task, index: max(0, index)},
		}
	}
}

// toggleThemeCmd switches palettes and stores the choice.
func (m Model) toggleThemeCmd() tea.Cmd {
	svc := m.svc
	current := m.currentTheme()
	return func() tea.Msg {
		next, err := svc.ToggleTheme(context.Background(), current)
		return actionMsg{err: err, status: string(next) + " theme", theme: next}
	}
}

// setFilter changes the filter mode and reloads the visible list.
func (m Model) setFilter(mode domain.FilterMode) (tea.Model, tea.Cmd) {
	m.filter = mode
	m.status = "showing " + strings.ToLower(filterLabel(mode))
	return m, m.loadData
}

// currentTheme returns the palette in effect, defaulting to dark.
func (m Model) currentTheme() app.Theme {
	if m.theme == app.ThemeUnset {
		return app.ThemeDark
	}
	return m.theme
}

// rowItems merges visible tasks and exiting ghosts in display order.
func (m Model) rowItems() []rowItem {
	items := make([]rowItem, 0, len(m.tasks)+len(m.ghosts))
	for _, task := range m.tasks {
		items = append(items, rowItem{Task: task})
	}
	for _, g := range m.ghosts {
		if slices.ContainsFunc(m.tasks, func(t domain.Task) bool { return t.ID == g.task.ID }) {
			continue
		}
		idx := clamp(g.index, 0, len(items))
		items = slices.Insert(items, idx, rowItem{Task: g.task, Ghost: true})
	}
	return items
}

// selectedTask returns the highlighted task.
func (m Model) selectedTask() (domain.Task, bool) {
	for _, task := range m.tasks {
		if task.ID == m.selectedID {
			return task, true
		}
	}
	return domain.Task{}, false
}

func (m Model) selectedIndex() int {
	return slices.IndexFunc(m.tasks, func(t domain.Task) bool { return t.ID == m.selectedID })
}

// moveSelection moves the highlight by delta rows.
func (m *Model) moveSelection(delta int) {
	if len(m.tasks) == 0 {
		return
	}
	idx := clamp(m.selectedIndex()+delta, 0, len(m.tasks)-1)
	m.selectedID = m.tasks[idx].ID
}

// neighborOf returns the task shown next to id, preferring the one below.
func (m Model) neighborOf(id int64) (int64, bool) {
	idx := slices.IndexFunc(m.tasks, func(t domain.Task) bool { return t.ID == id })
	if idx < 0 {
		return 0, false
	}
	if idx+1 < len(m.tasks) {
		return m.tasks[idx+1].ID, true
	}
	if idx > 0 {
		return m.tasks[idx-1].ID, true
	}
	return 0, false
}

// clampSelection keeps the highlight on a visible task.
func (m *Model) clampSelection() {
	if len(m.tasks) == 0 {
		m.selectedID = 0
		return
	}
	if m.selectedIndex() < 0 {
		m.selectedID = m.tasks[0].ID
	}
}

// listHeight returns the number of task rows that fit on screen.
func (m Model) listHeight() int {
	return max(1, m.height-listTop-footerRows)
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.moveSelection(-1)
	case tea.MouseWheelDown:
		m.moveSelection(1)
	}
	return m, nil
}

// handleMouseClick resolves the clicked row or filter tab from its position.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button == tea.MouseLeft {
		if id, ok := m.toastAt(msg.X, msg.Y); ok {
			m.fx.Dismiss(id)
			return m, nil
		}
	}
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if msg.Y == filterRow {
		_, spans := renderFilterTabs(m.filter, paletteFor(m.currentTheme()))
		for _, span := range spans {
			if msg.X >= span.start && msg.X < span.end {
				return m.setFilter(span.mode)
			}
		}
		return m, nil
	}
	items := m.rowItems()
	start, end := windowBounds(len(items), m.itemIndex(items), m.listHeight())
	idx := start + msg.Y - listTop
	if msg.Y < listTop || idx >= end {
		return m, nil
	}
	item := items[idx]
	if item.Ghost {
		return m, nil
	}
	m.selectedID = item.Task.ID
	if msg.X >= checkboxStart && msg.X < checkboxEnd {
		return m, m.toggleCmd(item.Task.ID)
	}
	return m, nil
}

// itemIndex returns the position of the selected task among items.
func (m Model) itemIndex(items []rowItem) int {
	return max(0, slices.IndexFunc(items, func(it rowItem) bool { return !it.Ghost && it.Task.ID == m.selectedID }))
}

// View handles view.
func (m Model) View() tea.View {
	view := tea.NewView(m.render())
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	view.WindowTitle = fmt.Sprintf("tick (%d/%d)", m.stats.Completed, m.stats.Total)
	if m.ready && m.stats.Total > 0 {
		view.ProgressBar = tea.NewProgressBar(tea.ProgressBarDefault, int(m.stats.Percent))
	}
	return view
}

// render draws the full screen as a string.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	pal := paletteFor(m.currentTheme())
	muted := lipgloss.Color(pal.muted)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.accent))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.dim))
	if pal.theme == app.ThemeLight {
		statusStyle = lipgloss.NewStyle().Foreground(muted)
	}
	width := max(20, m.width)

	header := titleStyle.Render("tick") + statusStyle.Render("  ["+m.modeLabel()+"]  "+string(pal.theme))
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		header += statusStyle.Render("  " + m.status)
	}
	filterTabs, _ := renderFilterTabs(m.filter, pal)

	items := m.rowItems()
	rows := renderTaskRows(items, rowOptions{
		width:    width,
		selected: m.selectedID,
		today:    m.now(),
		pal:      pal,
		fx:       m.fx,
	})
	listHeight := m.listHeight()
	start, end := windowBounds(len(rows), m.itemIndex(items), listHeight)
	lines := make([]string, 0, listHeight)
	for _, row := range rows[start:end] {
		lines = append(lines, row.Line)
	}
	if len(items) == 0 {
		lines = append(lines, statusStyle.Render(m.emptyMessage()))
	}

	sections := []string{
		header,
		renderStats(m.stats, pal),
		renderProgressBar(m.displayedPercent(), min(width, 60), pal),
		filterTabs,
		"",
		fitLines(strings.Join(lines, "\n"), listHeight),
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(lipgloss.Color(pal.dim)).
		Padding(0, 1).
		Width(width).
		Render(helpBubble.View(m.keys))
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(pal, width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(pal, width-8)
	}
	height := lipgloss.Height(fullContent)
	if m.height > 0 {
		height = m.height
	}
	if overlay != "" {
		fullContent = overlayOnContent(fullContent, overlay, width, max(1, height))
	}
	if toasts := m.fx.Toasts(); len(toasts) > 0 {
		fullContent = m.overlayToasts(fullContent, toasts, pal, width, max(1, height))
	}

	return fullContent
}

func (m Model) emptyMessage() string {
	switch m.filter {
	case domain.FilterActive:
		return "Nothing active. Press n to add a task."
	case domain.FilterCompleted:
		return "Nothing completed yet."
	default:
		return "No tasks yet. Press n to add one."
	}
}

// renderModeOverlay renders the form or confirmation modal for the current mode.
func (m Model) renderModeOverlay(pal palette, maxWidth int) string {
	accent := lipgloss.Color(pal.accent)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.muted))

	switch m.mode {
	case modeAddTask, modeEditTask:
		if maxWidth > 0 {
			style = style.Width(clamp(maxWidth, 40, 72))
		}
		title := "New Task"
		if m.mode == modeEditTask {
			title = "Edit Task"
		}
		labels := []string{"Task", "Category", "Priority", "Deadline"}
		lines := []string{titleStyle.Render(title), ""}
		for i, label := range labels {
			marker := "  "
			if i == m.formFocus {
				marker = titleStyle.Render("› ")
			}
			value := ""
			if i == taskFieldPriority {
				value = m.renderPriorityPicker(pal)
			} else if i < len(m.formInputs) {
				in := m.formInputs[i]
				in.SetWidth(max(16, clamp(maxWidth, 40, 72)-18))
				value = in.View()
			}
			lines = append(lines, fmt.Sprintf("%s%-9s %s", marker, label, value))
		}
		lines = append(lines, "", hintStyle.Render("enter save • esc cancel • tab next field • h/l priority"))
		return style.Render(strings.Join(lines, "\n"))

	case modeConfirmDelete:
		if maxWidth > 0 {
			style = style.Width(clamp(maxWidth, 36, 72))
		}
		confirmStyle := hintStyle
		cancelStyle := hintStyle
		if m.confirmChoice == 0 {
			confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.danger))
		} else {
			cancelStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
		}
		lines := []string{
			titleStyle.Render(app.DeleteConfirmTitle),
			app.DeleteConfirmBody,
			hintStyle.Render(truncate(m.pendingDelete.Text, 48)),
			"",
			confirmStyle.Render("[Yes, delete it!]") + "  " + cancelStyle.Render("[Cancel]"),
			hintStyle.Render("enter apply • esc cancel • h/l switch • y confirm • n cancel"),
		}
		return style.Render(strings.Join(lines, "\n"))
	default:
		return ""
	}
}

func (m Model) renderPriorityPicker(pal palette) string {
	parts := make([]string, 0, len(priorityOptions))
	for i, p := range priorityOptions {
		label := string(p)
		if i == m.priorityIdx {
			parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(pal.priority(p)).Render("["+label+"]"))
			continue
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(pal.muted)).Render(" "+label+" "))
	}
	return strings.Join(parts, " ")
}

// renderHelpOverlay renders the full key reference.
func (m Model) renderHelpOverlay(pal palette, maxWidth int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(pal.accent)).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(clamp(maxWidth, 40, 96))
	}
	h := m.help
	h.ShowAll = true
	h.SetWidth(max(20, clamp(maxWidth, 40, 96)-4))
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.accent)).Render("Keys")
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.muted)).Render("click a checkbox or filter • click a toast or press esc to dismiss it")
	return style.Render(title + "\n\n" + h.View(m.keys) + "\n\n" + hint)
}

// overlayToasts stacks notices in the top-right corner.
func (m Model) overlayToasts(base string, toasts []Toast, pal palette, width, height int) string {
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	for i, box := range layoutToasts(toasts, pal, width, height) {
		canvas.Compose(lipgloss.NewLayer(box.view).X(box.x).Y(box.y).Z(20 + i))
	}
	return canvas.Render()
}

// toastBox is one rendered toast and its top-left cell.
type toastBox struct {
	id   string
	view string
	x, y int
}

// layoutToasts stacks toasts newest first down the right edge.
func layoutToasts(toasts []Toast, pal palette, width, height int) []toastBox {
	toastWidth := min(40, max(20, width/3))
	x := max(0, width-toastWidth-3)
	boxes := make([]toastBox, 0, len(toasts))
	y := 1
	for i := len(toasts) - 1; i >= 0; i-- {
		view := renderToast(toasts[i], toastWidth, pal)
		boxes = append(boxes, toastBox{id: toasts[i].ID, view: view, x: x, y: y})
		y += lipgloss.Height(view)
		if y >= height {
			break
		}
	}
	return boxes
}

// toastAt returns the id of the toast drawn at cell (x, y).
func (m Model) toastAt(x, y int) (string, bool) {
	toasts := m.fx.Toasts()
	if len(toasts) == 0 {
		return "", false
	}
	boxes := layoutToasts(toasts, paletteFor(m.currentTheme()), max(20, m.width), max(1, m.height))
	for _, box := range boxes {
		if x >= box.x && x < box.x+lipgloss.Width(box.view) && y >= box.y && y < box.y+lipgloss.Height(box.view) {
			return box.id, true
		}
	}
	return "", false
}

// dismissNewestToast closes the most recent toast, if any.
func (m Model) dismissNewestToast() bool {
	toasts := m.fx.Toasts()
	if len(toasts) == 0 {
		return false
	}
	return m.fx.Dismiss(toasts[len(toasts)-1].ID)
}

// modeLabel handles mode label.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddTask:
		return "add"
	case modeEditTask:
		return "edit"
	case modeConfirmDelete:
		return "confirm"
	default:
		return filterLabel(m.filter)
	}
}

// wrapIndex returns current+delta wrapped into [0,total).
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := (current + delta) % total
	if next < 0 {
		next += total
	}
	return next
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	start := max(0, selected-windowSize/2)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
