package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"cyclekeeper/internal/validation"
)

// CycleFormModel holds the values bound to the new cycle form.
type CycleFormModel struct {
	Task    string
	Minutes string
}

func newCycleFormModel(defaults Defaults) *CycleFormModel {
	return &CycleFormModel{
		Task:    defaults.Task,
		Minutes: strconv.Itoa(defaults.Minutes),
	}
}

// NewCycleForm builds the form used to start a cycle.
func NewCycleForm(fm *CycleFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task").
				Placeholder("What are you working on?").
				CharLimit(validation.MaxTaskLength).
				Value(&fm.Task).
				Validate(func(s string) error {
					_, err := validation.Task(s)
					return err
				}),
			huh.NewInput().
				Title("Minutes").
				Description("Between 1 and 600").
				Value(&fm.Minutes).
				Validate(func(s string) error {
					_, err := validation.ParseMinutes(s)
					return err
				}),
		),
	).WithShowHelp(true)
}
