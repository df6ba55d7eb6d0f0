package ui

import "strings"

// MemoryScreen is an in-memory Screen used by widget tests.
type MemoryScreen struct {
	width  int
	height int
	runes  [][]rune
	styles [][]Style
	shows  int
}

// NewMemoryScreen creates a blank in-memory screen.
func NewMemoryScreen(width, height int) *MemoryScreen {
	m := &MemoryScreen{width: width, height: height}
	m.Clear()
	return m
}

// Size returns the screen dimensions.
func (m *MemoryScreen) Size() (int, int) {
	return m.width, m.height
}

// SetCell writes one rune, dropping out-of-bounds writes.
func (m *MemoryScreen) SetCell(x, y int, r rune, style Style) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.runes[y][x] = r
	m.styles[y][x] = style
}

// Clear blanks every cell.
func (m *MemoryScreen) Clear() {
	m.runes = make([][]rune, m.height)
	m.styles = make([][]Style, m.height)
	for y := 0; y < m.height; y++ {
		m.runes[y] = make([]rune, m.width)
		m.styles[y] = make([]Style, m.width)
		for x := 0; x < m.width; x++ {
			m.runes[y][x] = ' '
		}
	}
}

// Show counts flushes; tests assert on content, not on flushing.
func (m *MemoryScreen) Show() {
	m.shows++
}

// Shows returns how many times Show was called.
func (m *MemoryScreen) Shows() int {
	return m.shows
}

// Row returns row y as a right-trimmed string.
func (m *MemoryScreen) Row(y int) string {
	if y < 0 || y >= m.height {
		return ""
	}
	return strings.TrimRight(string(m.runes[y]), " ")
}

// StyleAt returns the style of one cell.
func (m *MemoryScreen) StyleAt(x, y int) Style {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return Style{}
	}
	return m.styles[y][x]
}

// Contains reports whether any row contains the substring.
func (m *MemoryScreen) Contains(s string) bool {
	for y := 0; y < m.height; y++ {
		if strings.Contains(m.Row(y), s) {
			return true
		}
	}
	return false
}
