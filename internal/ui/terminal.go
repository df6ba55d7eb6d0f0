package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Terminal is the tcell-backed Screen used by the running application.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal initializes the terminal screen.
func NewTerminal() (*Terminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse()
	s.Clear()
	return &Terminal{screen: s}, nil
}

// Size returns the terminal dimensions.
func (t *Terminal) Size() (int, int) {
	return t.screen.Size()
}

// SetCell writes one rune.
func (t *Terminal) SetCell(x, y int, r rune, style Style) {
	t.screen.SetContent(x, y, r, nil, toTcell(style))
}

// Clear blanks the terminal.
func (t *Terminal) Clear() {
	t.screen.Clear()
}

// Show flushes pending drawing.
func (t *Terminal) Show() {
	t.screen.Show()
}

// Fini restores the terminal. Safe to call once at shutdown.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// PollEvent blocks for the next terminal event, translated to the
// package's event type. A nil tcell event (screen finalized) returns
// an EventNone event.
func (t *Terminal) PollEvent() Event {
	for {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			return translateKey(ev)
		case *tcell.EventResize:
			w, h := ev.Size()
			t.screen.Sync()
			return Event{Type: EventResize, Width: w, Height: h}
		case *tcell.EventInterrupt:
			return Event{Type: EventInterrupt}
		case nil:
			return Event{Type: EventNone}
		}
	}
}

// Interrupt wakes a blocked PollEvent. Used to request a redraw from
// goroutines outside the event loop.
func (t *Terminal) Interrupt() {
	t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func translateKey(ev *tcell.EventKey) Event {
	switch ev.Key() {
	case tcell.KeyEnter:
		return KeyEvent(KeyEnter)
	case tcell.KeyEscape:
		return KeyEvent(KeyEscape)
	case tcell.KeyTab:
		return KeyEvent(KeyTab)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyEvent(KeyBackspace)
	case tcell.KeyUp:
		return KeyEvent(KeyUp)
	case tcell.KeyDown:
		return KeyEvent(KeyDown)
	case tcell.KeyLeft:
		return KeyEvent(KeyLeft)
	case tcell.KeyRight:
		return KeyEvent(KeyRight)
	case tcell.KeyPgUp:
		return KeyEvent(KeyPageUp)
	case tcell.KeyPgDn:
		return KeyEvent(KeyPageDown)
	case tcell.KeyHome:
		return KeyEvent(KeyHome)
	case tcell.KeyEnd:
		return KeyEvent(KeyEnd)
	case tcell.KeyCtrlC:
		return KeyEvent(KeyCtrlC)
	case tcell.KeyCtrlP:
		return KeyEvent(KeyCtrlP)
	case tcell.KeyCtrlR:
		return KeyEvent(KeyCtrlR)
	case tcell.KeyRune:
		return RuneEvent(ev.Rune())
	}
	return Event{Type: EventNone}
}

func toTcell(style Style) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(toTcellColor(style.Fg)).
		Background(toTcellColor(style.Bg))
	if style.Attrs&AttrBold != 0 {
		st = st.Bold(true)
	}
	if style.Attrs&AttrDim != 0 {
		st = st.Dim(true)
	}
	if style.Attrs&AttrUnderline != 0 {
		st = st.Underline(true)
	}
	if style.Attrs&AttrReverse != 0 {
		st = st.Reverse(true)
	}
	return st
}

func toTcellColor(c Color) tcell.Color {
	switch c {
	case ColorBlack:
		return tcell.ColorBlack
	case ColorRed:
		return tcell.ColorRed
	case ColorGreen:
		return tcell.ColorGreen
	case ColorYellow:
		return tcell.ColorYellow
	case ColorBlue:
		return tcell.ColorBlue
	case ColorMagenta:
		return tcell.ColorDarkMagenta
	case ColorCyan:
		return tcell.ColorDarkCyan
	case ColorWhite:
		return tcell.ColorWhite
	case ColorGray:
		return tcell.ColorGray
	}
	return tcell.ColorDefault
}
