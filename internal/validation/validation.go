package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxTaskLength = 120
	MinMinutes    = 1
	MaxMinutes    = 600
)

// Field names reported in validation errors.
const (
	FieldTask    = "task"
	FieldMinutes = "minutes_amount"
)

// Error describes a rejected form field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err carries a *Error.
func IsValidationError(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr)
}

// CycleInput is a validated request to start a cycle.
type CycleInput struct {
	Task          string
	MinutesAmount int
}

// Task checks a task label and returns it trimmed.
func Task(task string) (string, error) {
	trimmed := strings.TrimSpace(task)
	if trimmed == "" {
		return "", &Error{Field: FieldTask, Message: "task name is required"}
	}
	if utf8.RuneCountInString(trimmed) > MaxTaskLength {
		return "", &Error{Field: FieldTask, Message: fmt.Sprintf("task name must be at most %d characters", MaxTaskLength)}
	}
	return trimmed, nil
}

// Minutes checks a cycle duration.
func Minutes(minutes int) error {
	if minutes < MinMinutes || minutes > MaxMinutes {
		return &Error{Field: FieldMinutes, Message: fmt.Sprintf("duration must be between %d and %d minutes", MinMinutes, MaxMinutes)}
	}
	return nil
}

// ParseMinutes parses and checks a duration typed into a form.
func ParseMinutes(text string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &Error{Field: FieldMinutes, Message: "duration must be a whole number of minutes"}
	}
	if err := Minutes(minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

// NewCycleInput validates raw form values.
func NewCycleInput(task, minutesText string) (CycleInput, error) {
	trimmed, err := Task(task)
	if err != nil {
		return CycleInput{}, err
	}
	minutes, err := ParseMinutes(minutesText)
	if err != nil {
		return CycleInput{}, err
	}
	return CycleInput{Task: trimmed, MinutesAmount: minutes}, nil
}

// Validate checks an already-typed input.
func (input CycleInput) Validate() (CycleInput, error) {
	trimmed, err := Task(input.Task)
	if err != nil {
		return CycleInput{}, err
	}
	if err := Minutes(input.MinutesAmount); err != nil {
		return CycleInput{}, err
	}
	return CycleInput{Task: trimmed, MinutesAmount: input.MinutesAmount}, nil
}
