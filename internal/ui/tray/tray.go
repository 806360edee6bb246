package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"cyclekeeper/internal/core/countdown"
)

const menuTitle = "CycleKeeper"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowTimer    func()
	OnStartDefault func()
	OnInterrupt    func()
	OnPreferences  func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app           desktop.App
	callbacks     Callbacks
	statusItem    *fyne.MenuItem
	startItem     *fyne.MenuItem
	interruptItem *fyne.MenuItem
	statusLabel   string
	active        bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("Start default cycle", func() { call(manager.callbacks.OnStartDefault) })
	manager.interruptItem = fyne.NewMenuItem("Interrupt cycle", func() { call(manager.callbacks.OnInterrupt) })
	manager.interruptItem.Disabled = true

	manager.refreshMenu()
	return manager
}

// StatusLabel renders the tray status line for display.
func StatusLabel(display countdown.Display) string {
	if !display.Active {
		return "Status: idle"
	}
	label := "Status: " + display.Clock()
	if display.Task != "" {
		label += " · " + display.Task
	}
	return label
}

// Update reflects the countdown in the menu. Menu rebuilds only happen when something changed.
func (manager *Manager) Update(display countdown.Display) {
	label := StatusLabel(display)
	if label == manager.statusLabel && display.Active == manager.active {
		return
	}
	manager.statusLabel = label
	manager.active = display.Active
	manager.statusItem.Label = label
	manager.startItem.Disabled = display.Active
	manager.interruptItem.Disabled = !display.Active
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu(menuTitle,
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() { call(manager.callbacks.OnShowTimer) }),
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.interruptItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() { call(manager.callbacks.OnPreferences) }),
		fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) }),
	))
}

func call(callback func()) {
	if callback != nil {
		callback()
	}
}
