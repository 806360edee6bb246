package timer

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"cyclekeeper/internal/core/countdown"
	"cyclekeeper/internal/core/cycles"
	"cyclekeeper/internal/core/model"
	"cyclekeeper/internal/validation"
)

// Controller is the store surface the window drives.
type Controller interface {
	ActiveCycle() (model.Cycle, bool)
	Cycles() []model.Cycle
	StartCycle(cycle model.Cycle) bool
	InterruptCycle(cycleID string)
	Clock() cycles.Clock
}

// Countdown is the live countdown the window renders.
type Countdown interface {
	Display() countdown.Display
	Title() string
}

// Defaults pre-fill the task form.
type Defaults struct {
	Task    string
	Minutes int
}

var (
	clockColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	idleColor  = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
)

// Window is the main countdown window.
type Window struct {
	window     fyne.Window
	controller Controller
	countdown  Countdown
	logger     *zap.Logger

	clockText    *canvas.Text
	taskText     *canvas.Text
	progress     *widget.ProgressBar
	taskEntry    *widget.Entry
	minutesEntry *widget.Entry
	startButton  *widget.Button
	stopButton   *widget.Button
	historyList  *widget.List
	history      []model.Cycle
}

// New creates the timer window. Call Refresh whenever the countdown changes.
func New(app fyne.App, controller Controller, source Countdown, defaults Defaults, logger *zap.Logger) *Window {
	if logger == nil {
		logger = zap.NewNop()
	}
	window := app.NewWindow(source.Title())
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	clockText := canvas.NewText("00:00", idleColor)
	clockText.Alignment = fyne.TextAlignCenter
	clockText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clockText.TextSize = 72

	taskText := canvas.NewText("", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	taskText.Alignment = fyne.TextAlignCenter
	taskText.TextStyle = fyne.TextStyle{Bold: true}
	taskText.TextSize = 18

	taskEntry := widget.NewEntry()
	taskEntry.SetPlaceHolder("What are you working on?")
	taskEntry.Validator = func(text string) error {
		_, err := validation.Task(text)
		return err
	}

	minutesEntry := widget.NewEntry()
	minutesEntry.Validator = func(text string) error {
		_, err := validation.ParseMinutes(text)
		return err
	}

	timerWindow := &Window{
		window:       window,
		controller:   controller,
		countdown:    source,
		logger:       logger,
		clockText:    clockText,
		taskText:     taskText,
		progress:     widget.NewProgressBar(),
		taskEntry:    taskEntry,
		minutesEntry: minutesEntry,
	}
	timerWindow.startButton = widget.NewButton("Start", timerWindow.start)
	timerWindow.startButton.Importance = widget.HighImportance
	timerWindow.stopButton = widget.NewButton("Interrupt", timerWindow.interrupt)
	timerWindow.stopButton.Importance = widget.DangerImportance

	timerWindow.historyList = widget.NewList(
		func() int { return len(timerWindow.history) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, object fyne.CanvasObject) {
			if id < 0 || id >= len(timerWindow.history) {
				return
			}
			// Newest first.
			cycle := timerWindow.history[len(timerWindow.history)-1-id]
			object.(*widget.Label).SetText(HistoryRow(cycle))
		},
	)

	form := container.NewBorder(nil, nil, nil,
		container.NewHBox(minutesEntry, widget.NewLabel("min")),
		taskEntry,
	)
	buttons := container.NewHBox(layout.NewSpacer(), timerWindow.startButton, timerWindow.stopButton, layout.NewSpacer())
	header := container.New(&countdownLayout{}, clockText, taskText, timerWindow.progress)
	top := container.NewVBox(header, form, buttons, widget.NewSeparator(),
		widget.NewLabelWithStyle("History", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))

	window.SetContent(container.NewBorder(top, nil, nil, nil, timerWindow.historyList))
	window.Resize(fyne.NewSize(460, 560))
	window.SetCloseIntercept(window.Hide)

	timerWindow.SetDefaults(defaults)
	timerWindow.refreshUnsafe()
	return timerWindow
}

// Show displays the window.
func (timerWindow *Window) Show() {
	timerWindow.window.Show()
	timerWindow.window.RequestFocus()
}

// Window returns the underlying Fyne window, e.g. as a dialog parent.
func (timerWindow *Window) Window() fyne.Window {
	return timerWindow.window
}

// QuitOnClose makes closing the window quit app instead of hiding it.
func (timerWindow *Window) QuitOnClose(app fyne.App) {
	timerWindow.window.SetCloseIntercept(app.Quit)
}

// SetTitle updates the window title from any goroutine.
func (timerWindow *Window) SetTitle(title string) {
	fyne.Do(func() {
		timerWindow.window.SetTitle(title)
	})
}

// SetDefaults pre-fills the form unless a cycle is running.
func (timerWindow *Window) SetDefaults(defaults Defaults) {
	if _, active := timerWindow.controller.ActiveCycle(); active {
		return
	}
	timerWindow.taskEntry.SetText(defaults.Task)
	timerWindow.minutesEntry.SetText(strconv.Itoa(defaults.Minutes))
}

// Refresh re-renders from the countdown and the store from any goroutine.
func (timerWindow *Window) Refresh() {
	fyne.Do(timerWindow.refreshUnsafe)
}

func (timerWindow *Window) refreshUnsafe() {
	display := timerWindow.countdown.Display()

	timerWindow.clockText.Text = display.Clock()
	if display.Active {
		timerWindow.clockText.Color = clockColor
	} else {
		timerWindow.clockText.Color = idleColor
	}
	timerWindow.clockText.Refresh()

	timerWindow.taskText.Text = display.Task
	timerWindow.taskText.Refresh()
	timerWindow.progress.SetValue(display.Progress())

	timerWindow.setActiveUnsafe(display.Active)

	history := timerWindow.controller.Cycles()
	if len(history) != len(timerWindow.history) || changed(history, timerWindow.history) {
		timerWindow.history = history
		timerWindow.historyList.Refresh()
	}
}

func (timerWindow *Window) setActiveUnsafe(active bool) {
	if active {
		timerWindow.startButton.Disable()
		timerWindow.stopButton.Enable()
		timerWindow.taskEntry.Disable()
		timerWindow.minutesEntry.Disable()
		return
	}
	timerWindow.startButton.Enable()
	timerWindow.stopButton.Disable()
	timerWindow.taskEntry.Enable()
	timerWindow.minutesEntry.Enable()
}

func (timerWindow *Window) start() {
	input, err := validation.NewCycleInput(timerWindow.taskEntry.Text, timerWindow.minutesEntry.Text)
	if err != nil {
		dialog.ShowError(err, timerWindow.window)
		return
	}

	cycle := cycles.NewCycle(input.Task, input.MinutesAmount, timerWindow.controller.Clock().Now())
	if !timerWindow.controller.StartCycle(cycle) {
		dialog.ShowInformation("Cycle running", "Interrupt the running cycle before starting a new one.", timerWindow.window)
		return
	}
	timerWindow.logger.Info("cycle started from window", zap.String("cycle_id", cycle.ID))
	timerWindow.refreshUnsafe()
}

func (timerWindow *Window) interrupt() {
	cycle, active := timerWindow.controller.ActiveCycle()
	if !active {
		return
	}
	timerWindow.controller.InterruptCycle(cycle.ID)
	timerWindow.logger.Info("cycle interrupted from window", zap.String("cycle_id", cycle.ID))
	timerWindow.refreshUnsafe()
}

func changed(next, previous []model.Cycle) bool {
	for index := range next {
		if next[index].Status() != previous[index].Status() || next[index].ID != previous[index].ID {
			return true
		}
	}
	return false
}
