package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/febb0e/robotcode/internal/config"
	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/status"
)

func TestLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf, Prefix: "robotcode"})

	l.Debug("hidden")
	l.Info("session %s ready", "/proj")
	l.WithComponent("server").Warn("slow response")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, "[INFO] robotcode: session /proj ready") {
		t.Errorf("info line malformed: %q", out)
	}
	if !strings.Contains(out, "component=server") {
		t.Errorf("field missing: %q", out)
	}
}

func TestLogger_NullDiscards(t *testing.T) {
	// Must not panic despite the zero-value internals.
	NullLogger.Error("dropped")
	NullLogger.WithField("k", "v").Info("dropped")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"WARN", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func newTestApp(t *testing.T, folder string) *Application {
	t.Helper()
	a, err := New(Options{
		Folders:        []string{folder},
		ServerCommand:  []string{"robotcode-test-server-that-does-not-exist"},
		UserConfigFile: filepath.Join(t.TempDir(), "settings.json"),
		ActionsDir:     filepath.Join(t.TempDir(), "actions"),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
	})
	return a
}

func TestNew_WiresWithoutSpawning(t *testing.T) {
	folder := t.TempDir()
	a := newTestApp(t, folder)

	if a.workspace.Len() != 1 {
		t.Fatalf("workspace folders = %d", a.workspace.Len())
	}
	if a.manager.HasSession(folder) {
		t.Error("New() started a server session")
	}
	if _, ok := a.registry.Lookup("robot.restartServer"); !ok {
		t.Error("built-in actions not registered")
	}
}

func TestFocus_DrivesStatusSurface(t *testing.T) {
	folder := t.TempDir()
	a := newTestApp(t, folder)

	suite := filepath.Join(folder, "login.robot")
	if err := os.WriteFile(suite, []byte("*** Test Cases ***\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The configured server command cannot spawn, so resolution fails
	// soft and every widget degrades to its placeholder.
	a.Focus(suite)

	widgets := a.surface.Widgets()
	if widgets == nil {
		t.Fatal("surface hidden after focusing a robot file")
	}
	for _, w := range widgets {
		if w.Text != status.NotInstalled || w.Severity != status.SeverityError {
			t.Errorf("widget %s = %+v, want placeholder", w.ID, w)
		}
	}

	// A non-robot focus leaves the surface as-is.
	a.Focus(filepath.Join(folder, "notes.txt"))
	if a.surface.Widgets() == nil {
		t.Error("surface hidden by non-robot focus")
	}
}

func TestConfigChangesReachTheBus(t *testing.T) {
	folder := t.TempDir()
	a := newTestApp(t, folder)

	changed := make(chan event.ConfigChanged, 4)
	a.bus.Subscribe(event.TopicConfigChanged, func(_ event.Topic, payload any) {
		if cc, ok := payload.(event.ConfigChanged); ok {
			select {
			case changed <- cc:
			default:
			}
		}
	})

	if err := a.store.Set(folder, config.KeyRobocopEnabled, false); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	select {
	case cc := <-changed:
		if cc.Folder != folder || cc.Key != config.KeyRobocopEnabled {
			t.Errorf("bus change = %+v", cc)
		}
	default:
		t.Error("no config.changed event published for Set")
	}
}

func TestReportPath(t *testing.T) {
	folder := t.TempDir()
	a := newTestApp(t, folder)

	suite := filepath.Join(folder, "login.robot")
	if err := os.WriteFile(suite, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	a.Focus(suite)

	if _, ok := a.reportPath(); ok {
		t.Error("reportPath found a report that does not exist")
	}

	if err := os.WriteFile(filepath.Join(folder, defaultReportName), []byte(`{"root":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	path, ok := a.reportPath()
	if !ok || filepath.Base(path) != defaultReportName {
		t.Errorf("reportPath() = %q, %v", path, ok)
	}
}

func TestScanFiles(t *testing.T) {
	folder := t.TempDir()
	mustWrite := func(rel string) {
		path := filepath.Join(folder, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("suites/login.robot")
	mustWrite("resources/common.resource")
	mustWrite("readme.md")
	mustWrite(".hidden/skipped.robot")

	a := newTestApp(t, folder)
	files := a.scanFiles()

	if len(files) != 2 {
		t.Fatalf("scanFiles() = %v, want 2 entries", files)
	}
	for _, f := range files {
		if strings.Contains(f, ".hidden") {
			t.Errorf("hidden directory scanned: %s", f)
		}
	}
}
