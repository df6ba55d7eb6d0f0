package langserver

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StateChange is published whenever a folder's session changes state.
type StateChange struct {
	Folder string
	State  State
}

// ConfigProvider supplies the session configuration for a folder at start
// time, so restarts pick up current settings.
type ConfigProvider func(folder string) Config

// Manager owns one supervised session per workspace folder.
// Sessions are started lazily on first use and keyed by folder path;
// at most one session per folder exists at a time.
type Manager struct {
	mu          sync.RWMutex
	supervisors map[string]*Supervisor

	configFor        ConfigProvider
	supervisorConfig SupervisorConfig
	onState          func(StateChange)
	logHandler       func(folder string, level int, message string)
}

// ManagerOption configures the manager.
type ManagerOption func(*Manager)

// WithSupervisorConfig overrides the default crash-recovery parameters.
func WithSupervisorConfig(c SupervisorConfig) ManagerOption {
	return func(m *Manager) { m.supervisorConfig = c }
}

// WithStateCallback registers an observer for session state changes.
func WithStateCallback(fn func(StateChange)) ManagerOption {
	return func(m *Manager) { m.onState = fn }
}

// WithLogHandler registers a sink for server log messages.
func WithLogHandler(fn func(folder string, level int, message string)) ManagerOption {
	return func(m *Manager) { m.logHandler = fn }
}

// NewManager creates a manager that obtains per-folder configuration from
// configFor.
func NewManager(configFor ConfigProvider, opts ...ManagerOption) *Manager {
	m := &Manager{
		supervisors:      make(map[string]*Supervisor),
		configFor:        configFor,
		supervisorConfig: DefaultSupervisorConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SessionFor returns the ready session for a folder, starting one if needed.
func (m *Manager) SessionFor(ctx context.Context, folder WorkspaceFolder) (*Session, error) {
	path := uriToFilePath(folder.URI)

	m.mu.RLock()
	sup, exists := m.supervisors[path]
	m.mu.RUnlock()

	if exists {
		return m.sessionFromSupervisor(path, sup)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sup, exists = m.supervisors[path]; exists {
		return m.sessionFromSupervisor(path, sup)
	}

	sup = NewSupervisor(m.configFor(path), folder, m.supervisorConfig)
	if m.onState != nil {
		cb := m.onState
		sup.OnStateChange(func(folder string, state State) {
			cb(StateChange{Folder: folder, State: state})
		})
	}
	if m.logHandler != nil {
		handler := m.logHandler
		sup.OnLogMessage(func(level int, message string) {
			handler(path, level, message)
		})
	}

	if err := sup.Start(ctx); err != nil {
		// Keep the failed supervisor registered so later lookups fail
		// fast instead of respawning on every recompute; an explicit
		// Restart resets it.
		m.supervisors[path] = sup
		return nil, &SessionError{Folder: path, Err: err}
	}

	m.supervisors[path] = sup
	return sup.Session(), nil
}

func (m *Manager) sessionFromSupervisor(path string, sup *Supervisor) (*Session, error) {
	if sup.State() == SupervisorFailed {
		return nil, &SessionError{Folder: path, Err: ErrSupervisorFailed}
	}
	sess := sup.Session()
	if sess == nil {
		return nil, &SessionError{Folder: path, Err: ErrSessionNotReady}
	}
	return sess, nil
}

// ActiveSession returns the session for a folder without starting one.
func (m *Manager) ActiveSession(folder string) (*Session, bool) {
	m.mu.RLock()
	sup, exists := m.supervisors[folder]
	m.mu.RUnlock()
	if !exists {
		return nil, false
	}
	sess := sup.Session()
	if sess == nil || sess.State() != StateReady {
		return nil, false
	}
	return sess, true
}

// HasSession reports whether a session (in any state) exists for the folder.
func (m *Manager) HasSession(folder string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.supervisors[folder]
	return exists
}

// StateOf returns the session state for a folder, StateStopped when none.
func (m *Manager) StateOf(folder string) State {
	m.mu.RLock()
	sup, exists := m.supervisors[folder]
	m.mu.RUnlock()
	if !exists {
		return StateStopped
	}
	sess := sup.Session()
	if sess == nil {
		return StateStopped
	}
	return sess.State()
}

// Restart restarts the session for a folder with fresh configuration.
func (m *Manager) Restart(ctx context.Context, folder string) error {
	m.mu.RLock()
	sup, exists := m.supervisors[folder]
	m.mu.RUnlock()
	if !exists {
		return &SessionError{Folder: folder, Err: ErrNoSession}
	}
	if err := sup.Restart(ctx); err != nil {
		return &SessionError{Folder: folder, Err: err}
	}
	return nil
}

// ClearCacheRestart clears the server's analysis caches and restarts it.
func (m *Manager) ClearCacheRestart(ctx context.Context, folder string) error {
	if sess, ok := m.ActiveSession(folder); ok {
		// Best effort: the restart wipes in-memory state regardless.
		clearCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = sess.ClearCache(clearCtx)
		cancel()
	}
	return m.Restart(ctx, folder)
}

// Drop shuts down and forgets the session for a folder.
func (m *Manager) Drop(ctx context.Context, folder string) error {
	m.mu.Lock()
	sup, exists := m.supervisors[folder]
	if exists {
		delete(m.supervisors, folder)
	}
	m.mu.Unlock()
	if !exists {
		return nil
	}
	return sup.Stop(ctx)
}

// Folders returns the folders that currently have a session.
func (m *Manager) Folders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.supervisors))
	for folder := range m.supervisors {
		out = append(out, folder)
	}
	return out
}

// Shutdown stops every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	sups := make([]*Supervisor, 0, len(m.supervisors))
	for _, sup := range m.supervisors {
		sups = append(sups, sup)
	}
	m.supervisors = make(map[string]*Supervisor)
	m.mu.Unlock()

	var errs []error
	for _, sup := range sups {
		if err := sup.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
