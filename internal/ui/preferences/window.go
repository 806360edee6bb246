package preferences

import (
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"cyclekeeper/internal/validation"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	taskEntry   *widget.Entry
	minutes     *widget.Entry
	idleCheck   *widget.Check
	idleMinutes *widget.Entry
	autostart   *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("CycleKeeper Settings")

	taskEntry := widget.NewEntry()
	taskEntry.Validator = func(text string) error {
		_, err := validation.Task(text)
		return err
	}

	minutes := widget.NewEntry()
	minutes.Validator = func(text string) error {
		_, err := validation.ParseMinutes(text)
		return err
	}

	idleCheck := widget.NewCheck("Interrupt the cycle when I am away", nil)
	idleMinutes := widget.NewEntry()
	idleCheck.OnChanged = func(checked bool) {
		if checked {
			idleMinutes.Enable()
			return
		}
		idleMinutes.Disable()
	}

	autostart := widget.NewCheck("Launch at login", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("New cycles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Default task"), nil, taskEntry),
		container.NewHBox(widget.NewLabel("Default duration"), minutes, widget.NewLabel("min")),
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		idleCheck,
		container.NewHBox(widget.NewLabel("Away for"), idleMinutes, widget.NewLabel("min")),
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 320))
	window.SetCloseIntercept(window.Hide)

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		taskEntry:   taskEntry,
		minutes:     minutes,
		idleCheck:   idleCheck,
		idleMinutes: idleMinutes,
		autostart:   autostart,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.taskEntry.SetText(settings.DefaultTask)
	prefs.minutes.SetText(strconv.Itoa(settings.DefaultMinutes))
	prefs.idleCheck.SetChecked(settings.IdleInterruptEnabled)
	prefs.idleMinutes.SetText(strconv.Itoa(int(settings.IdleInterruptAfter / time.Minute)))
	if settings.IdleInterruptEnabled {
		prefs.idleMinutes.Enable()
	} else {
		prefs.idleMinutes.Disable()
	}
	prefs.autostart.SetChecked(settings.LaunchAtLogin)
}

func (prefs *Window) handleSave() {
	input, err := validation.NewCycleInput(prefs.taskEntry.Text, prefs.minutes.Text)
	if err != nil {
		dialog.ShowError(err, prefs.window)
		return
	}

	settings := prefs.settings
	settings.DefaultTask = input.Task
	settings.DefaultMinutes = input.MinutesAmount
	settings.IdleInterruptEnabled = prefs.idleCheck.Checked
	if minutes, ok := parsePositiveInt(prefs.idleMinutes.Text); ok {
		settings.IdleInterruptAfter = time.Duration(minutes) * time.Minute
	}
	settings.LaunchAtLogin = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
