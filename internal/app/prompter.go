package app

import (
	"github.com/febb0e/robotcode/internal/picker"
	"github.com/febb0e/robotcode/internal/ui"
)

// terminalPrompter backs the menu's prompts with the live terminal.
// Before the event loop attaches a screen, every prompt dismisses.
type terminalPrompter struct {
	scr       ui.Screen
	events    <-chan ui.Event
	onMessage func(string)
}

func (p *terminalPrompter) attach(scr ui.Screen, events <-chan ui.Event, onMessage func(string)) {
	p.scr = scr
	p.events = events
	p.onMessage = onMessage
}

func (p *terminalPrompter) poll() ui.Event {
	ev, ok := <-p.events
	if !ok {
		return ui.KeyEvent(ui.KeyEscape)
	}
	return ev
}

// Pick runs the quick-pick overlay.
func (p *terminalPrompter) Pick(title string, items []picker.Item) (picker.Item, error) {
	if p.scr == nil {
		return picker.Item{}, picker.ErrDismissed
	}
	p.scr.Clear()
	return picker.Run(p.scr, p.poll, title, items)
}

// Input runs a one-line editor modal.
func (p *terminalPrompter) Input(title, initial string) (string, error) {
	if p.scr == nil {
		return "", picker.ErrDismissed
	}

	value := []rune(initial)
	for {
		p.renderInput(title, string(value))

		ev := p.poll()
		if ev.Type != ui.EventKey {
			continue
		}
		switch ev.Key {
		case ui.KeyEscape, ui.KeyCtrlC:
			return "", picker.ErrDismissed
		case ui.KeyEnter:
			return string(value), nil
		case ui.KeyBackspace:
			if len(value) > 0 {
				value = value[:len(value)-1]
			}
		case ui.KeyRune:
			value = append(value, ev.Rune)
		}
	}
}

func (p *terminalPrompter) renderInput(title, value string) {
	p.scr.Clear()
	w, h := p.scr.Size()
	y := h / 3
	ui.DrawText(p.scr, 1, y, title, ui.DefaultStyle().Bold(), w-2)
	ui.FillRow(p.scr, y+1, ' ', ui.DefaultStyle().Reverse())
	end := ui.DrawText(p.scr, 1, y+1, "> "+value, ui.DefaultStyle().Reverse(), w-2)
	p.scr.SetCell(end, y+1, ' ', ui.DefaultStyle().Reverse().Bold())
	p.scr.Show()
}

// Message surfaces a transient informational line.
func (p *terminalPrompter) Message(text string) {
	if p.onMessage != nil {
		p.onMessage(text)
	}
}
