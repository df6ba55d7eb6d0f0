package picker

import (
	"testing"

	"github.com/febb0e/robotcode/internal/ui"
)

func sampleItems() []Item {
	return []Item{
		{Label: "Restart Language Server"},
		{Label: "Clear Cache and Restart"},
		{Label: "Select Configuration Profiles"},
		{Label: "Show Logs", Detail: "open the run log viewer"},
	}
}

func TestFilterItems(t *testing.T) {
	tests := []struct {
		name  string
		query string
		first string
		count int
	}{
		{"empty keeps order", "", "Restart Language Server", 4},
		{"prefix", "restart", "Restart Language Server", 2},
		{"subsequence", "scp", "Select Configuration Profiles", 1},
		{"detail match", "viewer", "Show Logs", 1},
		{"no match", "zzz", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterItems(sampleItems(), tt.query)
			if len(got) != tt.count {
				t.Fatalf("filterItems(%q) returned %d items, want %d", tt.query, len(got), tt.count)
			}
			if tt.count > 0 && got[0].Label != tt.first {
				t.Errorf("first match = %q, want %q", got[0].Label, tt.first)
			}
		})
	}
}

func TestPicker_TypeAndSelect(t *testing.T) {
	p := New("Actions", sampleItems())

	for _, r := range "clear" {
		if out := p.HandleEvent(ui.RuneEvent(r)); out != OutcomeOpen {
			t.Fatalf("typing closed the picker: %v", out)
		}
	}

	if out := p.HandleEvent(ui.KeyEvent(ui.KeyEnter)); out != OutcomeSelected {
		t.Fatalf("enter outcome = %v, want selected", out)
	}
	sel, ok := p.Selection()
	if !ok || sel.Label != "Clear Cache and Restart" {
		t.Errorf("selection = %+v", sel)
	}
}

func TestPicker_BackspaceWidensResults(t *testing.T) {
	p := New("Actions", sampleItems())
	for _, r := range "logsx" {
		p.HandleEvent(ui.RuneEvent(r))
	}
	if len(p.Filtered()) != 0 {
		t.Fatalf("bogus query still matched %d items", len(p.Filtered()))
	}

	// Subsequence matching keeps scattered matches ("logs" is also a
	// subsequence of "Select Configuration Profiles"), so the contract is
	// ranking: the tight match comes back first.
	p.HandleEvent(ui.KeyEvent(ui.KeyBackspace))
	got := p.Filtered()
	if len(got) == 0 || got[0].Label != "Show Logs" {
		t.Errorf("after backspace filtered = %+v, want Show Logs ranked first", got)
	}
	sel, ok := p.Selection()
	if !ok || sel.Label != "Show Logs" {
		t.Errorf("selection after backspace = %+v", sel)
	}
}

func TestPicker_DismissAndCursorClamping(t *testing.T) {
	p := New("Actions", sampleItems())

	// Cursor never leaves the list.
	for i := 0; i < 10; i++ {
		p.HandleEvent(ui.KeyEvent(ui.KeyDown))
	}
	sel, ok := p.Selection()
	if !ok || sel.Label != "Show Logs" {
		t.Errorf("cursor overran the list: %+v", sel)
	}
	for i := 0; i < 10; i++ {
		p.HandleEvent(ui.KeyEvent(ui.KeyUp))
	}
	if sel, _ := p.Selection(); sel.Label != "Restart Language Server" {
		t.Errorf("cursor underran the list: %+v", sel)
	}

	if out := p.HandleEvent(ui.KeyEvent(ui.KeyEscape)); out != OutcomeDismissed {
		t.Errorf("escape outcome = %v, want dismissed", out)
	}
}

func TestPicker_EnterOnEmptyListStaysOpen(t *testing.T) {
	p := New("Actions", sampleItems())
	for _, r := range "nomatch" {
		p.HandleEvent(ui.RuneEvent(r))
	}
	if out := p.HandleEvent(ui.KeyEvent(ui.KeyEnter)); out != OutcomeOpen {
		t.Errorf("enter on empty result list closed the picker: %v", out)
	}
}

func TestPicker_RenderShowsItems(t *testing.T) {
	scr := ui.NewMemoryScreen(80, 24)
	p := New("Actions", sampleItems())
	p.Render(scr)

	if !scr.Contains("Actions") {
		t.Error("title not rendered")
	}
	if !scr.Contains("Restart Language Server") {
		t.Error("items not rendered")
	}
}

func TestRun_Dismiss(t *testing.T) {
	scr := ui.NewMemoryScreen(80, 24)
	events := []ui.Event{ui.RuneEvent('x'), ui.KeyEvent(ui.KeyEscape)}
	i := 0
	poll := func() ui.Event {
		ev := events[i]
		i++
		return ev
	}

	_, err := Run(scr, poll, "Actions", sampleItems())
	if err != ErrDismissed {
		t.Errorf("Run() error = %v, want ErrDismissed", err)
	}
	if scr.Shows() == 0 {
		t.Error("Run never flushed the screen")
	}
}
