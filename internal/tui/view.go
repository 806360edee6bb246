package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cyclekeeper/internal/core/model"
	"cyclekeeper/internal/validation"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, headerStyle.Render(m.title))

	if m.state == stateForm && m.form != nil {
		sections = append(sections, m.form.View())
		if m.err != "" {
			sections = append(sections, errorStyle.Render(m.err))
		}
		sections = append(sections, mutedStyle.Render("esc: back"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, clockStyle.Render(m.display.Clock()))
	if m.display.Active {
		sections = append(sections,
			taskStyle.Render(m.display.Task),
			m.progress.ViewAs(m.display.Progress()),
		)
	} else {
		sections = append(sections, mutedStyle.Render("No cycle running. Press n to start one."))
	}

	if m.err != "" {
		sections = append(sections, errorStyle.Render(m.err))
	} else if m.notice != "" {
		sections = append(sections, mutedStyle.Render(m.notice))
	}

	if len(m.history) > 0 {
		sections = append(sections, "", mutedStyle.Render("Recent cycles"), renderHistory(m.history))
	}

	sections = append(sections, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHistory(history []model.Cycle) string {
	lines := make([]string, 0, len(history))
	for index := len(history) - 1; index >= 0; index-- {
		cycle := history[index]
		status := cycle.Status()
		var style lipgloss.Style
		switch status {
		case model.CycleFinished:
			style = finishedStyle
		case model.CycleInterrupted:
			style = interruptedStyle
		default:
			style = activeStyle
		}
		lines = append(lines, fmt.Sprintf("%s  %-24s %3d min  %s",
			cycle.StartDate.Local().Format("15:04"),
			truncate(cycle.Task, 24),
			cycle.MinutesAmount,
			style.Render(string(status)),
		))
	}
	return strings.Join(lines, "\n")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

func validationInput(fm *CycleFormModel) (validation.CycleInput, error) {
	return validation.NewCycleInput(fm.Task, fm.Minutes)
}
