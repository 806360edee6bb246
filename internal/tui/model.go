package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"cyclekeeper/internal/core/countdown"
	"cyclekeeper/internal/core/cycles"
	"cyclekeeper/internal/core/model"
)

const historyRows = 5

// CycleController is the store surface the TUI drives.
type CycleController interface {
	ActiveCycle() (model.Cycle, bool)
	Cycles() []model.Cycle
	StartCycle(cycle model.Cycle) bool
	InterruptCycle(cycleID string)
	Clock() cycles.Clock
}

// Countdown is the live countdown the TUI renders.
type Countdown interface {
	Display() countdown.Display
	Title() string
	Sync()
}

// Defaults pre-fill the new cycle form.
type Defaults struct {
	Task    string
	Minutes int
}

type viewState int

const (
	stateCountdown viewState = iota
	stateForm
)

type tickMsg time.Time

// Model is the bubbletea model for the terminal timer.
type Model struct {
	cycles    CycleController
	countdown Countdown
	defaults  Defaults
	interval  time.Duration
	logger    *zap.Logger

	state    viewState
	keys     KeyMap
	help     help.Model
	progress progress.Model
	form     *huh.Form
	formData *CycleFormModel

	display  countdown.Display
	title    string
	history  []model.Cycle
	notice   string
	err      string
	width    int
	quitting bool
}

// NewModel creates the TUI model. It opens the form when no cycle is running.
func NewModel(controller CycleController, source Countdown, defaults Defaults, interval time.Duration, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	m := Model{
		cycles:    controller,
		countdown: source,
		defaults:  defaults,
		interval:  interval,
		logger:    logger,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient()),
	}
	m.refresh()
	if _, active := controller.ActiveCycle(); !active {
		m.openForm()
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), tea.SetWindowTitle(m.title)}
	if m.state == stateForm {
		cmds = append(cmds, m.form.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = clampWidth(msg.Width - 4)
	case tickMsg:
		previous := m.title
		m.refresh()
		cmds := []tea.Cmd{m.tick()}
		if m.title != previous {
			cmds = append(cmds, tea.SetWindowTitle(m.title))
		}
		if m.state == stateForm {
			return m.updateForm(msg, cmds...)
		}
		return m, tea.Batch(cmds...)
	}

	if m.state == stateForm {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case keyMatches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case keyMatches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case keyMatches(keyMsg, m.keys.Interrupt):
		return m, m.interrupt()
	case keyMatches(keyMsg, m.keys.New):
		if _, active := m.cycles.ActiveCycle(); active {
			m.notice = "Interrupt the running cycle before starting a new one."
			return m, nil
		}
		m.openForm()
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg, extra ...tea.Cmd) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.closeForm()
			return m, tea.Batch(extra...)
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds := append(extra, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.submitForm())
	case huh.StateAborted:
		m.closeForm()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) openForm() {
	m.formData = newCycleFormModel(m.defaults)
	m.form = NewCycleForm(m.formData)
	m.state = stateForm
	m.err = ""
	m.notice = ""
}

func (m *Model) closeForm() {
	m.state = stateCountdown
	m.form = nil
	m.formData = nil
}

func (m *Model) submitForm() tea.Cmd {
	if m.formData == nil {
		return nil
	}
	input, err := validationInput(m.formData)
	if err != nil {
		m.err = err.Error()
		m.form.State = huh.StateNormal
		return nil
	}

	cycle := cycles.NewCycle(input.Task, input.MinutesAmount, m.cycles.Clock().Now())
	if !m.cycles.StartCycle(cycle) {
		m.err = "a cycle is already running"
		m.closeForm()
		return nil
	}
	m.logger.Info("cycle started from terminal", zap.String("cycle_id", cycle.ID))
	m.closeForm()
	m.countdown.Sync()
	m.refresh()
	return tea.SetWindowTitle(m.title)
}

func (m *Model) interrupt() tea.Cmd {
	cycle, active := m.cycles.ActiveCycle()
	if !active {
		m.notice = "No cycle is running."
		return nil
	}
	m.cycles.InterruptCycle(cycle.ID)
	m.logger.Info("cycle interrupted from terminal", zap.String("cycle_id", cycle.ID))
	m.countdown.Sync()
	m.refresh()
	m.notice = "Cycle interrupted."
	return tea.SetWindowTitle(m.title)
}

func (m *Model) refresh() {
	m.display = m.countdown.Display()
	m.title = m.countdown.Title()
	history := m.cycles.Cycles()
	if len(history) > historyRows {
		history = history[len(history)-historyRows:]
	}
	m.history = history
}

// Run starts the terminal program and blocks until it exits or ctx is done.
func Run(ctx context.Context, controller CycleController, source Countdown, defaults Defaults, interval time.Duration, logger *zap.Logger) error {
	program := tea.NewProgram(
		NewModel(controller, source, defaults, interval, logger),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func clampWidth(width int) int {
	const maxWidth = 60
	if width > maxWidth {
		return maxWidth
	}
	if width < 10 {
		return 10
	}
	return width
}
