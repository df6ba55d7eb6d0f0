package logview

import (
	"fmt"

	"github.com/febb0e/robotcode/internal/ui"
)

// View drives a Model with keyboard input and renders it to a screen.
type View struct {
	model  *Model
	cursor int
	offset int
}

// NewView wraps a model.
func NewView(model *Model) *View {
	return &View{model: model}
}

// Model returns the underlying tree model.
func (v *View) Model() *Model {
	return v.model
}

// HandleEvent applies one key event and reports whether the view stays
// open.
func (v *View) HandleEvent(ev ui.Event) bool {
	if ev.Type != ui.EventKey {
		return true
	}

	rows := v.model.Rows()
	switch ev.Key {
	case ui.KeyEscape, ui.KeyCtrlC:
		return false
	case ui.KeyUp:
		v.move(-1, rows)
	case ui.KeyDown:
		v.move(1, rows)
	case ui.KeyPageUp:
		v.move(-20, rows)
	case ui.KeyPageDown:
		v.move(20, rows)
	case ui.KeyHome:
		v.cursor, v.offset = 0, 0
	case ui.KeyEnd:
		v.move(len(rows), rows)
	case ui.KeyEnter:
		if n := v.current(rows); n != nil {
			_ = v.model.Toggle(n.ID)
		}
	case ui.KeyRune:
		return v.handleRune(ev.Rune, rows)
	}
	return true
}

func (v *View) handleRune(r rune, rows []Row) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		if n := v.current(rows); n != nil {
			_ = v.model.Toggle(n.ID)
		}
	case 'f':
		if n := v.current(rows); n != nil {
			v.model.ExpandFailed(n.ID)
		}
	case 'e':
		v.model.ExpandAll()
	case 'c':
		v.model.CollapseAll()
	case 'l':
		v.cycleThreshold()
	case 'j':
		v.move(1, rows)
	case 'k':
		v.move(-1, rows)
	}
	return true
}

func (v *View) cycleThreshold() {
	next := v.model.Threshold() + 1
	if next > LevelNone {
		next = LevelTrace
	}
	v.model.SetThreshold(next)
}

func (v *View) current(rows []Row) *Node {
	if v.cursor < 0 || v.cursor >= len(rows) {
		return nil
	}
	return rows[v.cursor].Node
}

func (v *View) move(delta int, rows []Row) {
	v.cursor += delta
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor >= len(rows) {
		v.cursor = len(rows) - 1
	}
}

// Render draws the visible slice of the tree plus a footer line with
// the severity threshold and pending-work indicator.
func (v *View) Render(scr ui.Screen) {
	scr.Clear()
	w, h := scr.Size()
	body := h - 1
	if body < 1 {
		return
	}

	rows := v.model.Rows()
	if v.cursor >= len(rows) {
		v.cursor = len(rows) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+body {
		v.offset = v.cursor - body + 1
	}

	for i := 0; i < body && v.offset+i < len(rows); i++ {
		row := rows[v.offset+i]
		style := rowStyle(row.Node)
		if v.offset+i == v.cursor {
			style = style.Reverse()
		}

		x := row.Depth * 2
		x = ui.DrawText(scr, x, i, marker(row.Node), style, w-x)
		ui.DrawText(scr, x, i, rowText(row.Node), style, w-x)
	}

	footer := fmt.Sprintf(" level: %s  [l] filter  [f] expand failed  [e/c] all  [q] close", v.model.Threshold())
	if pending := v.model.Pending(); pending > 0 {
		footer = fmt.Sprintf("%s  expanding (%d)…", footer, pending)
	}
	ui.FillRow(scr, h-1, ' ', ui.DefaultStyle().Reverse())
	ui.DrawText(scr, 0, h-1, footer, ui.DefaultStyle().Reverse(), w)
}

func marker(n *Node) string {
	if n.Leaf() {
		return "  "
	}
	if n.Expanded() {
		return "▾ "
	}
	return "▸ "
}

func rowText(n *Node) string {
	if n.Type == TypeMessage {
		return fmt.Sprintf("[%s] %s", n.Level, n.Text)
	}
	return fmt.Sprintf("%s  %s", n.Status, n.Text)
}

func rowStyle(n *Node) ui.Style {
	if n.Type == TypeMessage {
		switch {
		case n.Level >= LevelFail:
			return ui.DefaultStyle().WithForeground(ui.ColorRed)
		case n.Level == LevelWarn:
			return ui.DefaultStyle().WithForeground(ui.ColorYellow)
		default:
			return ui.DefaultStyle().Dim()
		}
	}
	switch n.Status {
	case StatusPass:
		return ui.DefaultStyle().WithForeground(ui.ColorGreen)
	case StatusFail:
		return ui.DefaultStyle().WithForeground(ui.ColorRed).Bold()
	case StatusSkip:
		return ui.DefaultStyle().WithForeground(ui.ColorYellow)
	}
	return ui.DefaultStyle()
}

// Run drives the view until the user closes it. Queued expansion work
// drains one node per iteration, yielding to pending input between
// nodes so a collapse can abandon an in-flight pass.
func (v *View) Run(scr ui.Screen, events <-chan ui.Event) {
	for {
		v.Render(scr)
		scr.Show()

		if v.model.Pending() > 0 {
			select {
			case ev, ok := <-events:
				if !ok || !v.HandleEvent(ev) {
					return
				}
			default:
				v.model.Step()
			}
			continue
		}

		ev, ok := <-events
		if !ok || !v.HandleEvent(ev) {
			return
		}
	}
}
