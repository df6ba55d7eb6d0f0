package environment

import (
	"context"
	"testing"

	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/langserver"
	"github.com/febb0e/robotcode/internal/workspace"
)

type fakeSource struct {
	calls int
	infos map[string]*langserver.EnvironmentInfo
}

func (f *fakeSource) EnvironmentInfo(_ context.Context, folder workspace.Folder) (*langserver.EnvironmentInfo, error) {
	f.calls++
	info, ok := f.infos[folder.Path]
	if !ok {
		return nil, langserver.ErrNoSession
	}
	return info, nil
}

func testFolder(path string) workspace.Folder {
	return workspace.Folder{Path: path, Name: path}
}

func TestResolver_ResolveCachesPerFolder(t *testing.T) {
	src := &fakeSource{infos: map[string]*langserver.EnvironmentInfo{
		"/a": {PythonVersion: "3.12.0", RobotVersion: "7.0"},
	}}
	r := NewResolver(src)

	pc, ok := r.Resolve(context.Background(), testFolder("/a"))
	if !ok {
		t.Fatal("Resolve() absent for known folder")
	}
	if pc.Interpreter.Version != "3.12.0" || !pc.Robot.Installed() {
		t.Errorf("context = %+v", pc)
	}
	if pc.Robocop.Installed() {
		t.Error("robocop reported installed with empty version")
	}

	// Second resolve is served from cache.
	r.Resolve(context.Background(), testFolder("/a"))
	if src.calls != 1 {
		t.Errorf("source queried %d times, want 1", src.calls)
	}
}

func TestResolver_FailsSoftWithoutSession(t *testing.T) {
	src := &fakeSource{infos: map[string]*langserver.EnvironmentInfo{}}
	r := NewResolver(src)

	if _, ok := r.Resolve(context.Background(), testFolder("/a")); ok {
		t.Error("Resolve() succeeded without a session")
	}

	// Failures are not cached; the next resolve retries.
	r.Resolve(context.Background(), testFolder("/a"))
	if src.calls != 2 {
		t.Errorf("source queried %d times, want 2 (no negative caching)", src.calls)
	}
}

func TestResolver_InvalidateIsFolderScoped(t *testing.T) {
	src := &fakeSource{infos: map[string]*langserver.EnvironmentInfo{
		"/a": {PythonVersion: "3.12.0"},
		"/b": {PythonVersion: "3.11.9"},
	}}
	r := NewResolver(src)

	r.Resolve(context.Background(), testFolder("/a"))
	r.Resolve(context.Background(), testFolder("/b"))

	r.Invalidate("/a")

	if _, ok := r.Cached("/a"); ok {
		t.Error("folder /a still cached after Invalidate")
	}
	if _, ok := r.Cached("/b"); !ok {
		t.Error("folder /b dropped by an invalidation scoped to /a")
	}
}

func TestResolver_BusInvalidation(t *testing.T) {
	src := &fakeSource{infos: map[string]*langserver.EnvironmentInfo{
		"/a": {PythonVersion: "3.12.0"},
		"/b": {PythonVersion: "3.11.9"},
	}}
	r := NewResolver(src)
	bus := event.NewBus()
	r.Bind(bus)

	resolve := func(path string) {
		if _, ok := r.Resolve(context.Background(), testFolder(path)); !ok {
			t.Fatalf("Resolve(%s) absent", path)
		}
	}
	resolve("/a")
	resolve("/b")

	// Server restarting invalidates only its folder.
	bus.Publish(event.TopicServerState, langserver.StateChange{Folder: "/a", State: langserver.StateStarting})
	if _, ok := r.Cached("/a"); ok {
		t.Error("/a cached after server restart event")
	}
	if _, ok := r.Cached("/b"); !ok {
		t.Error("/b invalidated by /a's restart event")
	}

	// Ready transitions do not invalidate.
	resolve("/a")
	bus.Publish(event.TopicServerState, langserver.StateChange{Folder: "/a", State: langserver.StateReady})
	if _, ok := r.Cached("/a"); !ok {
		t.Error("/a invalidated by a ready transition")
	}

	// Folder-scoped environment change.
	bus.Publish(event.TopicEnvironmentChanged, event.EnvironmentChanged{Folder: "/b"})
	if _, ok := r.Cached("/b"); ok {
		t.Error("/b cached after environment change")
	}
	if _, ok := r.Cached("/a"); !ok {
		t.Error("/a invalidated by /b's environment change")
	}

	// Global reset clears everything.
	resolve("/b")
	bus.Publish(event.TopicEnvironmentChanged, event.EnvironmentChanged{})
	if _, ok := r.Cached("/a"); ok {
		t.Error("/a cached after global reset")
	}
	if _, ok := r.Cached("/b"); ok {
		t.Error("/b cached after global reset")
	}

	// Config changes re-enter through environment.changed.
	resolve("/a")
	bus.Publish(event.TopicConfigChanged, event.ConfigChanged{Folder: "/a", Key: "robotcode.profiles"})
	if _, ok := r.Cached("/a"); ok {
		t.Error("/a cached after config change")
	}
}
