package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/logview"
	"github.com/febb0e/robotcode/internal/menu"
	"github.com/febb0e/robotcode/internal/ui"
	"github.com/febb0e/robotcode/internal/workspace"
)

// maxListedFiles caps the workspace file scan.
const maxListedFiles = 500

// Run owns the terminal until the user quits.
func (a *Application) Run(ctx context.Context) error {
	term, err := ui.NewTerminal()
	if err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer term.Fini()

	events := make(chan ui.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := term.PollEvent()
			if ev.Type == ui.EventNone {
				return
			}
			events <- ev
		}
	}()

	// Background events (watcher reloads, server state changes) wake the
	// loop for a redraw.
	a.bus.Subscribe("**", func(event.Topic, any) {
		term.Interrupt()
	})

	var message string
	a.prompter.attach(term, events, func(text string) {
		message = text
		a.logger.Info("message: %s", text)
	})

	files := a.scanFiles()
	cursor := 0
	if len(files) > 0 {
		a.Focus(files[0])
		cursor = 0
	}

	for {
		a.render(term, files, cursor, message)

		ev, ok := <-events
		if !ok {
			return nil
		}
		switch ev.Type {
		case ui.EventInterrupt, ui.EventResize:
			continue
		case ui.EventKey:
			// Any keypress clears the previous transient message.
			message = ""
		default:
			continue
		}

		switch {
		case ev.Key == ui.KeyCtrlC:
			return a.Shutdown(ctx)
		case ev.Key == ui.KeyRune && ev.Rune == 'q':
			return a.Shutdown(ctx)
		case ev.Key == ui.KeyUp || (ev.Key == ui.KeyRune && ev.Rune == 'k'):
			if cursor > 0 {
				cursor--
			}
		case ev.Key == ui.KeyDown || (ev.Key == ui.KeyRune && ev.Rune == 'j'):
			if cursor < len(files)-1 {
				cursor++
			}
		case ev.Key == ui.KeyEnter:
			if cursor < len(files) {
				a.Focus(files[cursor])
			}
		case ev.Key == ui.KeyCtrlP || (ev.Key == ui.KeyRune && ev.Rune == ':'):
			a.menu.Open(ctx, nil, a.focus)
		case ev.Key == ui.KeyCtrlR:
			files = a.scanFiles()
			if cursor >= len(files) {
				cursor = len(files) - 1
			}
		case ev.Key == ui.KeyRune && ev.Rune == 'l':
			a.showLogsOn(term, events)
		case ev.Key == ui.KeyRune && ev.Rune == 's':
			a.selectStatus(ctx)
		}
	}
}

// selectStatus opens the status-row segments as a pick list; each
// segment runs the menu action it is bound to.
func (a *Application) selectStatus(ctx context.Context) {
	widgets := a.surface.Widgets()
	refs := make([]menu.WidgetRef, 0, len(widgets))
	for _, w := range widgets {
		refs = append(refs, menu.WidgetRef{Label: w.Label, Detail: w.Text, Command: w.Command})
	}
	a.menu.OpenWidgets(ctx, refs, nil, a.focus)
}

// showLogs opens the log viewer from a menu action; the event loop's
// screen and events are already attached to the prompter.
func (a *Application) showLogs() {
	if a.prompter.scr == nil {
		return
	}
	a.showLogsOn(a.prompter.scr, a.prompter.events)
}

func (a *Application) showLogsOn(scr ui.Screen, events <-chan ui.Event) {
	path, ok := a.reportPath()
	if !ok {
		if path == "" {
			a.prompter.Message("no workspace folder focused")
		} else {
			a.prompter.Message("no run report at " + path)
		}
		return
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		a.prompter.Message(fmt.Sprintf("read report: %v", err))
		return
	}
	src, err := logview.NewReportSource(doc)
	if err != nil {
		a.prompter.Message(fmt.Sprintf("parse report: %v", err))
		return
	}
	model, err := logview.NewModel(src)
	if err != nil {
		a.prompter.Message(fmt.Sprintf("load report: %v", err))
		return
	}
	logview.NewView(model).Run(scr, events)
}

// scanFiles collects Robot Framework files across the workspace.
func (a *Application) scanFiles() []string {
	var files []string
	for _, folder := range a.workspace.Folders() {
		_ = filepath.WalkDir(folder.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				name := d.Name()
				if name != folder.Name && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if workspace.DetectLanguageID(path) == workspace.LanguageID {
				files = append(files, path)
			}
			if len(files) >= maxListedFiles {
				return filepath.SkipAll
			}
			return nil
		})
	}
	sort.Strings(files)
	return files
}

func (a *Application) render(term *ui.Terminal, files []string, cursor int, message string) {
	term.Clear()
	w, h := term.Size()

	title := "robotcode"
	if f, ok := a.focusFolder(); ok {
		title += " — " + f.Name
	}
	ui.DrawText(term, 1, 0, title, ui.DefaultStyle().Bold(), w-2)
	ui.DrawText(term, 1, 1, "[enter] focus  [^P] actions  [s] status  [l] run logs  [^R] rescan  [q] quit",
		ui.DefaultStyle().Dim(), w-2)

	body := h - 4
	top := 3
	offset := 0
	if cursor >= body {
		offset = cursor - body + 1
	}
	for i := 0; i < body && offset+i < len(files); i++ {
		path := files[offset+i]
		style := ui.DefaultStyle()
		if offset+i == cursor {
			style = style.Reverse()
		}
		if a.focus != nil && a.focus.Path == path {
			style = style.Bold()
		}
		ui.DrawText(term, 1, top+i, displayPath(a.workspace, path), style, w-2)
	}
	if len(files) == 0 {
		ui.DrawText(term, 1, top, "no .robot or .resource files found", ui.DefaultStyle().Dim(), w-2)
	}

	if message != "" {
		ui.DrawText(term, 1, h-2, message, ui.DefaultStyle().WithForeground(ui.ColorYellow), w-2)
	}

	a.surface.Render(term, h-1)
	term.Show()
}

func displayPath(ws *workspace.Workspace, path string) string {
	if folder, ok := ws.FolderOf(path); ok {
		if rel, err := filepath.Rel(folder.Path, path); err == nil {
			return rel
		}
	}
	return path
}
