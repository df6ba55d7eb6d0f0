// Package status maintains the per-tool status widgets shown for the
// focused Robot Framework editor: interpreter, Robot Framework, Robocop
// and Robotidy. Widgets recompute on focus, environment and server-state
// events and degrade to "not installed" placeholders when data is absent.
package status

import (
	"context"
	"sync"

	"github.com/febb0e/robotcode/internal/environment"
	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/workspace"
)

// Severity classifies a widget's state.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityError
)

// Placeholder text rendered when a tool cannot be resolved.
const NotInstalled = "not installed"

// Widget IDs, stable across recomputes.
const (
	WidgetInterpreter = "interpreter"
	WidgetRobot       = "robot"
	WidgetRobocop     = "robocop"
	WidgetTidy        = "tidy"
)

// Widget is one tool's display unit. Widgets are value snapshots; the
// surface replaces them wholesale on recompute.
type Widget struct {
	// ID identifies the tracked tool.
	ID string

	// Label is the fixed tool name shown before the text.
	Label string

	// Text is the resolved version or the NotInstalled placeholder.
	Text string

	// Detail is secondary text (the interpreter path, when known).
	Detail string

	// Severity is SeverityError whenever Text is a placeholder.
	Severity Severity

	// Command names the menu action bound to selecting the widget.
	Command string
}

// Surface recomputes widgets from the resolver for the focused editor.
//
// Update is idempotent: repeated calls with the same focus and cache
// state produce identical widgets, so overlapping event sources are safe.
type Surface struct {
	resolver  *environment.Resolver
	workspace *workspace.Workspace

	mu      sync.Mutex
	editor  *workspace.Editor
	widgets []Widget
	visible bool
}

// NewSurface creates a surface over the resolver and workspace.
func NewSurface(resolver *environment.Resolver, ws *workspace.Workspace) *Surface {
	return &Surface{
		resolver:  resolver,
		workspace: ws,
	}
}

// Widgets returns the current widget snapshots, nil while hidden.
func (s *Surface) Widgets() []Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		return nil
	}
	out := make([]Widget, len(s.widgets))
	copy(out, s.widgets)
	return out
}

// Visible reports whether the surface currently shows widgets.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Update recomputes every widget for the given editor. Editors outside
// the supported language leave the surface untouched; a nil editor hides
// it.
func (s *Surface) Update(ctx context.Context, editor *workspace.Editor) {
	s.mu.Lock()
	if editor == nil {
		s.editor = nil
		s.visible = false
		s.widgets = nil
		s.mu.Unlock()
		return
	}
	if !editor.IsRobot() {
		s.mu.Unlock()
		return
	}
	s.editor = editor
	s.mu.Unlock()

	folder, ok := s.workspace.FolderOf(editor.Path)
	if !ok {
		s.apply(placeholderWidgets())
		return
	}

	pc, ok := s.resolver.Resolve(ctx, folder)
	if !ok {
		s.apply(placeholderWidgets())
		return
	}
	s.apply(contextWidgets(pc))
}

// Refresh recomputes for the last focused editor, if any.
func (s *Surface) Refresh(ctx context.Context) {
	s.mu.Lock()
	editor := s.editor
	s.mu.Unlock()
	if editor != nil {
		s.Update(ctx, editor)
	}
}

func (s *Surface) apply(widgets []Widget) {
	s.mu.Lock()
	s.widgets = widgets
	s.visible = true
	s.mu.Unlock()
}

// Bind subscribes the surface's recompute triggers: editor focus updates
// directly, environment and server-state changes refresh the last focus.
func (s *Surface) Bind(bus *event.Bus) {
	bus.Subscribe(event.TopicEditorFocus, func(_ event.Topic, payload any) {
		ef, ok := payload.(event.EditorFocus)
		if !ok {
			return
		}
		if ef.Path == "" {
			s.Update(context.Background(), nil)
			return
		}
		s.Update(context.Background(), &workspace.Editor{Path: ef.Path, LanguageID: ef.LanguageID})
	})

	refresh := func(event.Topic, any) {
		s.Refresh(context.Background())
	}
	bus.Subscribe(event.TopicEnvironmentChanged, refresh)
	bus.Subscribe(event.TopicServerState, refresh)
}

func toolWidget(id, label string, info environment.ToolInfo, command string) Widget {
	w := Widget{ID: id, Label: label, Command: command}
	if !info.Installed() {
		w.Text = NotInstalled
		w.Severity = SeverityError
		return w
	}
	w.Text = info.Version
	w.Detail = info.Path
	return w
}

func contextWidgets(pc *environment.ProjectContext) []Widget {
	return []Widget{
		toolWidget(WidgetInterpreter, "Python", pc.Interpreter, "robot.selectEnvironment"),
		toolWidget(WidgetRobot, "Robot", pc.Robot, "robot.showLogs"),
		toolWidget(WidgetRobocop, "Robocop", pc.Robocop, "robot.toggleRobocop"),
		toolWidget(WidgetTidy, "Tidy", pc.Tidy, "robot.showLogs"),
	}
}

func placeholderWidgets() []Widget {
	return contextWidgets(&environment.ProjectContext{})
}
