package status

import (
	"context"
	"strings"
	"testing"

	"github.com/febb0e/robotcode/internal/environment"
	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/langserver"
	"github.com/febb0e/robotcode/internal/ui"
	"github.com/febb0e/robotcode/internal/workspace"
)

type fakeSource struct {
	infos map[string]*langserver.EnvironmentInfo
}

func (f *fakeSource) EnvironmentInfo(_ context.Context, folder workspace.Folder) (*langserver.EnvironmentInfo, error) {
	info, ok := f.infos[folder.Path]
	if !ok {
		return nil, langserver.ErrNoSession
	}
	return info, nil
}

func newSurface(infos map[string]*langserver.EnvironmentInfo, folders ...string) (*Surface, *environment.Resolver) {
	ws := workspace.New()
	for _, f := range folders {
		ws.Add(workspace.FolderFromPath(f))
	}
	r := environment.NewResolver(&fakeSource{infos: infos})
	return NewSurface(r, ws), r
}

func robotEditor(path string) *workspace.Editor {
	return &workspace.Editor{Path: path, LanguageID: workspace.LanguageID}
}

func widgetByID(t *testing.T, s *Surface, id string) Widget {
	t.Helper()
	for _, w := range s.Widgets() {
		if w.ID == id {
			return w
		}
	}
	t.Fatalf("widget %q not found", id)
	return Widget{}
}

func TestSurface_UpdateResolvesTools(t *testing.T) {
	s, _ := newSurface(map[string]*langserver.EnvironmentInfo{
		"/proj": {
			PythonVersion: "3.12.1",
			PythonPath:    "/proj/.venv/bin/python",
			RobotVersion:  "7.0.1",
		},
	}, "/proj")

	s.Update(context.Background(), robotEditor("/proj/tests/login.robot"))

	if !s.Visible() {
		t.Fatal("surface hidden after update for a robot editor")
	}

	py := widgetByID(t, s, WidgetInterpreter)
	if py.Text != "3.12.1" || py.Severity != SeverityOK {
		t.Errorf("interpreter widget = %+v", py)
	}
	if py.Detail != "/proj/.venv/bin/python" {
		t.Errorf("interpreter detail = %q", py.Detail)
	}

	// Robocop is absent from the environment: placeholder, error severity,
	// while the other widgets stay healthy.
	rc := widgetByID(t, s, WidgetRobocop)
	if rc.Text != NotInstalled || rc.Severity != SeverityError {
		t.Errorf("robocop widget = %+v", rc)
	}
	if rf := widgetByID(t, s, WidgetRobot); rf.Severity != SeverityOK {
		t.Errorf("robot widget degraded by robocop's absence: %+v", rf)
	}
}

func TestSurface_NoSessionRendersPlaceholders(t *testing.T) {
	s, _ := newSurface(nil, "/proj")
	s.Update(context.Background(), robotEditor("/proj/tests/login.robot"))

	for _, w := range s.Widgets() {
		if w.Text != NotInstalled {
			t.Errorf("widget %s text = %q, want placeholder", w.ID, w.Text)
		}
		if w.Severity != SeverityError {
			t.Errorf("widget %s severity = %v, want error", w.ID, w.Severity)
		}
	}
}

func TestSurface_NonRobotEditorIsNoop(t *testing.T) {
	s, _ := newSurface(map[string]*langserver.EnvironmentInfo{
		"/proj": {PythonVersion: "3.12.1"},
	}, "/proj")

	s.Update(context.Background(), robotEditor("/proj/tests/login.robot"))
	before := widgetByID(t, s, WidgetInterpreter)

	s.Update(context.Background(), &workspace.Editor{Path: "/proj/readme.md", LanguageID: "markdown"})

	if !s.Visible() {
		t.Error("surface hidden by a non-robot editor")
	}
	if after := widgetByID(t, s, WidgetInterpreter); after != before {
		t.Errorf("widgets changed by a non-robot editor: %+v -> %+v", before, after)
	}
}

func TestSurface_NilEditorHides(t *testing.T) {
	s, _ := newSurface(map[string]*langserver.EnvironmentInfo{
		"/proj": {PythonVersion: "3.12.1"},
	}, "/proj")

	s.Update(context.Background(), robotEditor("/proj/tests/login.robot"))
	s.Update(context.Background(), nil)

	if s.Visible() {
		t.Error("surface still visible with no editor")
	}
	if s.Widgets() != nil {
		t.Error("widgets still served while hidden")
	}
}

func TestSurface_UpdateIsIdempotent(t *testing.T) {
	s, _ := newSurface(map[string]*langserver.EnvironmentInfo{
		"/proj": {PythonVersion: "3.12.1", RobotVersion: "7.0.1"},
	}, "/proj")

	ed := robotEditor("/proj/tests/login.robot")
	s.Update(context.Background(), ed)
	first := s.Widgets()
	s.Update(context.Background(), ed)
	second := s.Widgets()

	if len(first) != len(second) {
		t.Fatalf("widget count changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("widget %d changed on repeat update: %+v -> %+v", i, first[i], second[i])
		}
	}
}

func TestSurface_BusRecompute(t *testing.T) {
	src := &fakeSource{infos: map[string]*langserver.EnvironmentInfo{
		"/proj": {PythonVersion: "3.12.1"},
	}}
	ws := workspace.New()
	ws.Add(workspace.FolderFromPath("/proj"))
	r := environment.NewResolver(src)
	s := NewSurface(r, ws)

	bus := event.NewBus()
	r.Bind(bus)
	s.Bind(bus)

	bus.Publish(event.TopicEditorFocus, event.EditorFocus{
		Path:       "/proj/tests/login.robot",
		LanguageID: workspace.LanguageID,
	})
	if got := widgetByID(t, s, WidgetInterpreter).Text; got != "3.12.1" {
		t.Fatalf("after focus, interpreter = %q", got)
	}

	// The environment changes behind our back; the change event must both
	// invalidate the cache and recompute the surface.
	src.infos["/proj"] = &langserver.EnvironmentInfo{PythonVersion: "3.13.0"}
	bus.Publish(event.TopicEnvironmentChanged, event.EnvironmentChanged{Folder: "/proj"})

	if got := widgetByID(t, s, WidgetInterpreter).Text; got != "3.13.0" {
		t.Errorf("after environment change, interpreter = %q, want 3.13.0", got)
	}
}

func TestSurface_RenderRow(t *testing.T) {
	s, _ := newSurface(map[string]*langserver.EnvironmentInfo{
		"/proj": {PythonVersion: "3.12.1", RobotVersion: "7.0.1"},
	}, "/proj")
	s.Update(context.Background(), robotEditor("/proj/tests/login.robot"))

	scr := ui.NewMemoryScreen(120, 3)
	s.Render(scr, 2)

	row := scr.Row(2)
	for _, want := range []string{"Python 3.12.1", "Robot 7.0.1", "Robocop " + NotInstalled} {
		if !strings.Contains(row, want) {
			t.Errorf("row %q missing %q", row, want)
		}
	}
}
