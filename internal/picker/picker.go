// Package picker implements the quick-pick overlay: a filterable list the
// user narrows with fuzzy typing and confirms with enter. The action menu,
// profile selection and folder selection all run through it.
package picker

import (
	"errors"

	"github.com/febb0e/robotcode/internal/ui"
)

// ErrDismissed is returned when the user closes the picker without
// choosing an item.
var ErrDismissed = errors.New("picker: dismissed")

// Item is one selectable row.
type Item struct {
	// Label is the primary text, matched first during filtering.
	Label string

	// Detail is secondary text shown dimmed after the label.
	Detail string

	// Data carries the caller's payload through selection.
	Data any
}

// Outcome reports what a key event did to the picker.
type Outcome int

const (
	// OutcomeOpen means the picker is still active.
	OutcomeOpen Outcome = iota

	// OutcomeSelected means the user confirmed the highlighted item.
	OutcomeSelected

	// OutcomeDismissed means the user closed the picker.
	OutcomeDismissed
)

// Picker is the interactive state of one quick-pick session.
// It is a model driven by the application's event loop; it holds no
// goroutines of its own.
type Picker struct {
	title    string
	items    []Item
	query    string
	filtered []Item
	cursor   int
	offset   int
	maxRows  int
}

// New creates a picker over items. The title is shown above the input.
func New(title string, items []Item) *Picker {
	p := &Picker{
		title:   title,
		items:   items,
		maxRows: 10,
	}
	p.refilter()
	return p
}

// Query returns the current filter text.
func (p *Picker) Query() string {
	return p.query
}

// Filtered returns the items currently visible, best match first.
func (p *Picker) Filtered() []Item {
	return p.filtered
}

// Selection returns the highlighted item, if any.
func (p *Picker) Selection() (Item, bool) {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return Item{}, false
	}
	return p.filtered[p.cursor], true
}

// HandleEvent advances the picker with one key event.
func (p *Picker) HandleEvent(ev ui.Event) Outcome {
	if ev.Type != ui.EventKey {
		return OutcomeOpen
	}

	switch ev.Key {
	case ui.KeyEscape, ui.KeyCtrlC:
		return OutcomeDismissed
	case ui.KeyEnter:
		if _, ok := p.Selection(); ok {
			return OutcomeSelected
		}
		return OutcomeOpen
	case ui.KeyUp:
		p.move(-1)
	case ui.KeyDown, ui.KeyTab:
		p.move(1)
	case ui.KeyPageUp:
		p.move(-p.maxRows)
	case ui.KeyPageDown:
		p.move(p.maxRows)
	case ui.KeyHome:
		p.cursor = 0
		p.offset = 0
	case ui.KeyEnd:
		p.move(len(p.filtered))
	case ui.KeyBackspace:
		if p.query != "" {
			p.query = p.query[:len(p.query)-1]
			p.refilter()
		}
	case ui.KeyRune:
		p.query += string(ev.Rune)
		p.refilter()
	}
	return OutcomeOpen
}

func (p *Picker) move(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.maxRows {
		p.offset = p.cursor - p.maxRows + 1
	}
}

func (p *Picker) refilter() {
	p.filtered = filterItems(p.items, p.query)
	p.cursor = 0
	p.offset = 0
}

// Render draws the picker as a centered overlay.
func (p *Picker) Render(scr ui.Screen) {
	w, h := scr.Size()
	width := w * 3 / 4
	if width < 20 {
		width = w
	}
	x0 := (w - width) / 2

	rows := p.maxRows
	if rows > len(p.filtered) {
		rows = len(p.filtered)
	}
	height := rows + 2 // title + input
	y0 := (h - height) / 3
	if y0 < 0 {
		y0 = 0
	}

	titleStyle := ui.DefaultStyle().Bold()
	inputStyle := ui.DefaultStyle().Reverse()
	dimStyle := ui.DefaultStyle().Dim()

	ui.DrawText(scr, x0, y0, p.title, titleStyle, width)

	// Input line with a trailing cursor block.
	for x := x0; x < x0+width; x++ {
		scr.SetCell(x, y0+1, ' ', inputStyle)
	}
	end := ui.DrawText(scr, x0+1, y0+1, "> "+p.query, inputStyle, width-2)
	scr.SetCell(end, y0+1, ' ', inputStyle.Bold())

	for i := 0; i < rows; i++ {
		it := p.filtered[p.offset+i]
		y := y0 + 2 + i
		style := ui.DefaultStyle()
		if p.offset+i == p.cursor {
			style = style.Reverse()
			for x := x0; x < x0+width; x++ {
				scr.SetCell(x, y, ' ', style)
			}
		}
		end := ui.DrawText(scr, x0+1, y, it.Label, style, width-2)
		if it.Detail != "" {
			detail := "  " + it.Detail
			ds := dimStyle
			if p.offset+i == p.cursor {
				ds = style
			}
			ui.DrawText(scr, end, y, detail, ds, x0+width-end-1)
		}
	}
}

// Run drives a picker to completion against a blocking event source.
// It returns ErrDismissed when the user cancels.
func Run(scr ui.Screen, poll func() ui.Event, title string, items []Item) (Item, error) {
	p := New(title, items)
	for {
		p.Render(scr)
		scr.Show()

		switch p.HandleEvent(poll()) {
		case OutcomeSelected:
			it, _ := p.Selection()
			return it, nil
		case OutcomeDismissed:
			return Item{}, ErrDismissed
		}
	}
}
