package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCycleInput(t *testing.T) {
	tests := []struct {
		name      string
		task      string
		minutes   string
		want      CycleInput
		wantField string
	}{
		{name: "valid", task: "Write docs", minutes: "25", want: CycleInput{Task: "Write docs", MinutesAmount: 25}},
		{name: "trims input", task: "  Review  ", minutes: " 5 ", want: CycleInput{Task: "Review", MinutesAmount: 5}},
		{name: "empty task", task: "   ", minutes: "25", wantField: FieldTask},
		{name: "long task", task: strings.Repeat("x", MaxTaskLength+1), minutes: "25", wantField: FieldTask},
		{name: "zero minutes", task: "a", minutes: "0", wantField: FieldMinutes},
		{name: "negative minutes", task: "a", minutes: "-3", wantField: FieldMinutes},
		{name: "too many minutes", task: "a", minutes: "601", wantField: FieldMinutes},
		{name: "not a number", task: "a", minutes: "ten", wantField: FieldMinutes},
		{name: "fractional", task: "a", minutes: "2.5", wantField: FieldMinutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCycleInput(tt.task, tt.minutes)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			var vErr *Error
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestCycleInputValidate(t *testing.T) {
	got, err := CycleInput{Task: " Plan ", MinutesAmount: 600}.Validate()
	require.NoError(t, err)
	assert.Equal(t, CycleInput{Task: "Plan", MinutesAmount: 600}, got)

	_, err = CycleInput{Task: "Plan", MinutesAmount: 0}.Validate()
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Field: FieldTask, Message: "task name is required"}
	assert.Equal(t, "task: task name is required", err.Error())
}
