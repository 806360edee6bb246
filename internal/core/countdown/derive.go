package countdown

import (
	"fmt"
	"time"
)

// Display contains the values a surface renders for the countdown.
type Display struct {
	Active              bool
	CycleID             string
	Task                string
	TotalSeconds        int
	AmountSecondsPassed int
	CurrentSeconds      int
	MinutesAmount       int
	SecondsAmount       int
	Minutes             string
	Seconds             string
}

// Clock returns the remaining time as "MM:SS".
func (display Display) Clock() string {
	return display.Minutes + ":" + display.Seconds
}

// Title returns the window title for the display.
func (display Display) Title(idleTitle string) string {
	if !display.Active {
		return idleTitle
	}
	return display.Clock()
}

// Progress returns the elapsed fraction in [0, 1].
func (display Display) Progress() float64 {
	if !display.Active || display.TotalSeconds <= 0 {
		return 0
	}
	progress := float64(display.AmountSecondsPassed) / float64(display.TotalSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// SecondsBetween returns the whole seconds from start to now, truncated toward zero.
func SecondsBetween(now, start time.Time) int {
	return int(now.Sub(start) / time.Second)
}

// Derive computes the render values from the elapsed seconds.
func Derive(totalSeconds, amountSecondsPassed int, active bool) Display {
	currentSeconds := 0
	if active {
		currentSeconds = totalSeconds - amountSecondsPassed
		if currentSeconds < 0 {
			currentSeconds = 0
		}
	}
	minutesAmount := currentSeconds / 60
	secondsAmount := currentSeconds % 60

	return Display{
		Active:              active,
		TotalSeconds:        totalSeconds,
		AmountSecondsPassed: amountSecondsPassed,
		CurrentSeconds:      currentSeconds,
		MinutesAmount:       minutesAmount,
		SecondsAmount:       secondsAmount,
		Minutes:             fmt.Sprintf("%02d", minutesAmount),
		Seconds:             fmt.Sprintf("%02d", secondsAmount),
	}
}
