// Package ui provides a minimal terminal rendering abstraction for the
// companion's widgets: the status row, the quick pick and the log tree.
//
// The Screen interface decouples widgets from the terminal so tests render
// into an in-memory implementation.
package ui

// Attribute is a text attribute bitmask.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrUnderline
	AttrReverse
)

// Color is a terminal palette color.
type Color int

const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
)

// Style combines foreground, background and attributes.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attribute
}

// DefaultStyle returns the terminal default style.
func DefaultStyle() Style {
	return Style{}
}

// Bold returns the style with bold added.
func (s Style) Bold() Style {
	s.Attrs |= AttrBold
	return s
}

// Dim returns the style with dim added.
func (s Style) Dim() Style {
	s.Attrs |= AttrDim
	return s
}

// Reverse returns the style with reverse video added.
func (s Style) Reverse() Style {
	s.Attrs |= AttrReverse
	return s
}

// WithForeground returns the style with the given foreground.
func (s Style) WithForeground(c Color) Style {
	s.Fg = c
	return s
}

// WithBackground returns the style with the given background.
func (s Style) WithBackground(c Color) Style {
	s.Bg = c
	return s
}

// Key identifies a pressed key.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyCtrlC
	KeyCtrlP
	KeyCtrlR
)

// EventType identifies a terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventInterrupt
)

// Event is one terminal event.
type Event struct {
	Type EventType
	Key  Key
	Rune rune

	// Width and Height carry the new size for resize events.
	Width  int
	Height int
}

// KeyEvent builds a key event.
func KeyEvent(k Key) Event {
	return Event{Type: EventKey, Key: k}
}

// RuneEvent builds a printable-key event.
func RuneEvent(r rune) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r}
}

// Screen is the drawing surface widgets render into.
type Screen interface {
	// Size returns the current width and height in cells.
	Size() (int, int)

	// SetCell writes one rune at (x, y). Out-of-bounds writes are dropped.
	SetCell(x, y int, r rune, style Style)

	// Clear blanks the whole surface with the default style.
	Clear()

	// Show flushes buffered drawing to the terminal.
	Show()
}

// DrawText writes s starting at (x, y), clipped to maxWidth cells, and
// returns the x position after the last rune written.
func DrawText(scr Screen, x, y int, s string, style Style, maxWidth int) int {
	for _, r := range s {
		if maxWidth <= 0 {
			break
		}
		scr.SetCell(x, y, r, style)
		x++
		maxWidth--
	}
	return x
}

// FillRow paints a full row with one rune.
func FillRow(scr Screen, y int, r rune, style Style) {
	w, _ := scr.Size()
	for x := 0; x < w; x++ {
		scr.SetCell(x, y, r, style)
	}
}
