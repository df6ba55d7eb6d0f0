package status

import (
	"github.com/febb0e/robotcode/internal/ui"
)

// Render draws the widgets as a single segmented row at y.
// A hidden surface clears the row.
func (s *Surface) Render(scr ui.Screen, y int) {
	ui.FillRow(scr, y, ' ', ui.DefaultStyle().Reverse())

	widgets := s.Widgets()
	if widgets == nil {
		return
	}

	w, _ := scr.Size()
	x := 1
	for i, wd := range widgets {
		if i > 0 {
			x = ui.DrawText(scr, x, y, " | ", ui.DefaultStyle().Reverse().Dim(), w-x)
		}
		style := ui.DefaultStyle().Reverse()
		if wd.Severity == SeverityError {
			style = style.WithForeground(ui.ColorRed).Bold()
		}
		x = ui.DrawText(scr, x, y, wd.Label+" ", ui.DefaultStyle().Reverse().Bold(), w-x)
		x = ui.DrawText(scr, x, y, wd.Text, style, w-x)
	}
}
