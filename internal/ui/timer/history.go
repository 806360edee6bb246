package timer

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"

	"cyclekeeper/internal/core/model"
)

const historyTimeLayout = "Jan 2 15:04"

// HistoryRow renders one history entry.
func HistoryRow(cycle model.Cycle) string {
	row := fmt.Sprintf("%s · %d min · %s · started %s",
		cycle.Task,
		cycle.MinutesAmount,
		cycle.Status(),
		cycle.StartDate.Local().Format(historyTimeLayout),
	)
	switch {
	case cycle.FinishedDate != nil:
		row += " · finished " + endedAt(*cycle.FinishedDate)
	case cycle.InterruptedDate != nil:
		row += " · interrupted " + endedAt(*cycle.InterruptedDate)
	}
	return row
}

func endedAt(date time.Time) string {
	return date.Local().Format("15:04")
}

type countdownLayout struct{}

func (layout *countdownLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 3 {
		return
	}
	clock := objects[0]
	task := objects[1]
	progress := objects[2]

	pad := size.Height * 0.05
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}

	clockSize := clock.MinSize()
	clock.Move(fyne.NewPos(pad, pad))
	clock.Resize(fyne.NewSize(availableWidth, clockSize.Height))

	taskSize := task.MinSize()
	taskY := pad + clockSize.Height + 4
	task.Move(fyne.NewPos(pad, taskY))
	task.Resize(fyne.NewSize(availableWidth, taskSize.Height))

	progressSize := progress.MinSize()
	progressY := size.Height - pad - progressSize.Height
	if progressY < taskY+taskSize.Height {
		progressY = taskY + taskSize.Height
	}
	progress.Move(fyne.NewPos(pad, progressY))
	progress.Resize(fyne.NewSize(availableWidth, progressSize.Height))
}

func (layout *countdownLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 3 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(24)
	for _, object := range objects {
		size := object.MinSize()
		if size.Width > width {
			width = size.Width
		}
		height += size.Height
	}
	return fyne.NewSize(width+20, height)
}
