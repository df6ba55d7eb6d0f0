// Package environment resolves, per workspace folder, which tool versions
// are active: the Python interpreter, Robot Framework itself, the Robocop
// linter and the Robotidy formatter.
//
// Resolution is delegated to the folder's analysis-server session and cached
// until an invalidation event. A folder with no usable session resolves to
// absent; callers render that as "not installed" rather than failing.
package environment

import (
	"context"
	"sync"

	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/langserver"
	"github.com/febb0e/robotcode/internal/workspace"
)

// ToolInfo describes one resolved tool.
type ToolInfo struct {
	// Version is the tool version string, "" when not installed.
	Version string

	// Path is the executable path when known (interpreter only).
	Path string
}

// Installed reports whether the tool was found.
func (t ToolInfo) Installed() bool {
	return t.Version != ""
}

// ProjectContext is the cached environment snapshot for one folder.
type ProjectContext struct {
	Folder      workspace.Folder
	Interpreter ToolInfo
	Robot       ToolInfo
	Robocop     ToolInfo
	Tidy        ToolInfo
}

// InfoSource queries the live environment for a folder.
// *langserver.Manager is adapted to this by the application.
type InfoSource interface {
	EnvironmentInfo(ctx context.Context, folder workspace.Folder) (*langserver.EnvironmentInfo, error)
}

// InfoSourceFunc adapts a function to InfoSource.
type InfoSourceFunc func(ctx context.Context, folder workspace.Folder) (*langserver.EnvironmentInfo, error)

// EnvironmentInfo implements InfoSource.
func (f InfoSourceFunc) EnvironmentInfo(ctx context.Context, folder workspace.Folder) (*langserver.EnvironmentInfo, error) {
	return f(ctx, folder)
}

// Resolver caches ProjectContext per folder.
// Entries are keyed by folder path and never shared across folders.
type Resolver struct {
	mu     sync.RWMutex
	cache  map[string]*ProjectContext
	source InfoSource
}

// NewResolver creates a resolver backed by source.
func NewResolver(source InfoSource) *Resolver {
	return &Resolver{
		cache:  make(map[string]*ProjectContext),
		source: source,
	}
}

// Resolve returns the environment for a folder, querying the analysis server
// on a cache miss. The second return is false when no environment could be
// resolved; that is an expected state, not an error.
func (r *Resolver) Resolve(ctx context.Context, folder workspace.Folder) (*ProjectContext, bool) {
	r.mu.RLock()
	cached, ok := r.cache[folder.Path]
	r.mu.RUnlock()
	if ok {
		return cached, true
	}

	info, err := r.source.EnvironmentInfo(ctx, folder)
	if err != nil || info == nil {
		return nil, false
	}

	pc := &ProjectContext{
		Folder:      folder,
		Interpreter: ToolInfo{Version: info.PythonVersion, Path: info.PythonPath},
		Robot:       ToolInfo{Version: info.RobotVersion},
		Robocop:     ToolInfo{Version: info.RobocopVersion},
		Tidy:        ToolInfo{Version: info.TidyVersion},
	}

	r.mu.Lock()
	r.cache[folder.Path] = pc
	r.mu.Unlock()
	return pc, true
}

// Cached returns the cached context without querying, if present.
func (r *Resolver) Cached(folder string) (*ProjectContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.cache[folder]
	return pc, ok
}

// Invalidate drops the cache entry for one folder.
func (r *Resolver) Invalidate(folder string) {
	r.mu.Lock()
	delete(r.cache, folder)
	r.mu.Unlock()
}

// Reset drops every cache entry.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*ProjectContext)
	r.mu.Unlock()
}

// Bind subscribes the resolver's invalidation rules to the bus:
// a session transitioning to "starting" drops that folder's entry, an
// environment change drops the named folder's entry (or everything when the
// folder is empty), and a config change marks the folder's environment stale.
func (r *Resolver) Bind(bus *event.Bus) {
	bus.Subscribe(event.TopicServerState, func(_ event.Topic, payload any) {
		sc, ok := payload.(langserver.StateChange)
		if !ok {
			return
		}
		if sc.State == langserver.StateStarting {
			r.Invalidate(sc.Folder)
		}
	})

	bus.Subscribe(event.TopicEnvironmentChanged, func(_ event.Topic, payload any) {
		ec, ok := payload.(event.EnvironmentChanged)
		if !ok {
			return
		}
		if ec.Folder == "" {
			r.Reset()
			return
		}
		r.Invalidate(ec.Folder)
	})

	bus.Subscribe(event.TopicConfigChanged, func(_ event.Topic, payload any) {
		cc, ok := payload.(event.ConfigChanged)
		if !ok {
			return
		}
		bus.Publish(event.TopicEnvironmentChanged, event.EnvironmentChanged{Folder: cc.Folder})
	})
}
