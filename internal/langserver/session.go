// Package langserver is the client side of the external analysis server for
// Robot Framework. One server process is spawned per workspace folder and
// reached over JSON-RPC 2.0 on its stdio pipes.
//
// The server itself (parsing, diagnostics, test discovery) is an external
// collaborator; this package only manages process lifecycle, the handshake,
// and the handful of requests the companion UI needs.
package langserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State indicates the lifecycle state of a session.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateInitializing
	StateReady
	StateShuttingDown
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting down"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Config defines how to start an analysis server for a folder.
type Config struct {
	// Command is the server executable.
	Command string

	// Args are command-line arguments.
	Args []string

	// Env are additional environment variables.
	Env map[string]string

	// Options are sent as initializationOptions during the handshake.
	Options InitializationOptions

	// Timeout bounds individual requests (default 30s).
	Timeout time.Duration
}

// Session is one running analysis-server process bound to a workspace folder.
type Session struct {
	mu sync.Mutex

	id     string
	config Config
	folder WorkspaceFolder

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	transport *Transport

	state      atomic.Int32
	serverInfo *ServerInfoData
	lastError  error

	// logHandler receives window/logMessage notifications.
	logHandler func(level int, message string)

	ctx       context.Context
	cancel    context.CancelFunc
	exitCh    chan error
	closeOnce sync.Once
}

// NewSession creates a session for the folder (not yet started).
func NewSession(config Config, folder WorkspaceFolder) *Session {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	s := &Session{
		id:     uuid.NewString(),
		config: config,
		folder: folder,
		exitCh: make(chan error, 1),
	}
	s.state.Store(int32(StateStopped))
	return s
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Folder returns the workspace folder this session serves.
func (s *Session) Folder() WorkspaceFolder { return s.folder }

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// ServerInfo returns the server's self-reported identity, nil before the
// handshake completes.
func (s *Session) ServerInfo() *ServerInfoData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverInfo
}

// LastError returns the error that put the session in StateError, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// OnLogMessage registers a handler for server log output.
// Must be called before Start.
func (s *Session) OnLogMessage(fn func(level int, message string)) {
	s.mu.Lock()
	s.logHandler = fn
	s.mu.Unlock()
}

// Exited returns a channel that receives the process exit error once.
func (s *Session) Exited() <-chan error {
	return s.exitCh
}

// Start spawns the server process and performs the initialize handshake.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateStopped {
		return ErrAlreadyStarted
	}

	s.state.Store(int32(StateStarting))
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.startProcess(); err != nil {
		s.state.Store(int32(StateError))
		s.lastError = err
		return err
	}

	s.transport = NewTransport(s.stdout, s.stdin, nil)
	s.registerNotificationHandlers()
	s.transport.Start(s.ctx)

	go s.monitorProcess()

	s.state.Store(int32(StateInitializing))
	if err := s.initialize(s.ctx); err != nil {
		s.state.Store(int32(StateError))
		s.lastError = err
		s.stopProcess()
		return fmt.Errorf("initialize: %w", err)
	}

	s.state.Store(int32(StateReady))
	return nil
}

func (s *Session) startProcess() error {
	cmd := exec.CommandContext(s.ctx, s.config.Command, s.config.Args...)

	cmd.Env = os.Environ()
	for k, v := range s.config.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Dir = uriToFilePath(s.folder.URI)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return fmt.Errorf("start process: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	s.stderr = stderr
	return nil
}

func (s *Session) monitorProcess() {
	if s.cmd == nil {
		return
	}
	err := s.cmd.Wait()
	select {
	case s.exitCh <- err:
	default:
	}
}

func (s *Session) stopProcess() {
	if s.transport != nil {
		s.transport.Close()
	}
	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.stderr != nil {
		s.stderr.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

func (s *Session) initialize(ctx context.Context) error {
	params := InitializeParams{
		ProcessID:             os.Getpid(),
		ClientInfo:            &ClientInfo{Name: "robotcode-companion"},
		RootURI:               s.folder.URI,
		WorkspaceFolders:      []WorkspaceFolder{s.folder},
		InitializationOptions: s.config.Options,
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var result InitializeResult
	if err := s.transport.Call(ctx, MethodInitialize, params, &result); err != nil {
		return fmt.Errorf("initialize request: %w", err)
	}
	s.serverInfo = result.ServerInfo

	if err := s.transport.Notify(MethodInitialized, struct{}{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}
	return nil
}

func (s *Session) registerNotificationHandlers() {
	s.transport.OnNotification(MethodWindowLogMessage, func(_ string, params json.RawMessage) {
		var p LogMessageParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		s.mu.Lock()
		handler := s.logHandler
		s.mu.Unlock()
		if handler != nil {
			handler(p.Type, p.Message)
		}
	})
}

// call issues a request with the session's configured timeout.
func (s *Session) call(ctx context.Context, method string, params, result any) error {
	if s.State() != StateReady {
		return ErrSessionNotReady
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return s.transport.Call(ctx, method, params, result)
}

// EnvironmentInfo queries the resolved tool environment for the folder.
func (s *Session) EnvironmentInfo(ctx context.Context) (*EnvironmentInfo, error) {
	var info EnvironmentInfo
	err := s.call(ctx, MethodEnvironmentInfo, EnvironmentInfoParams{FolderURI: s.folder.URI}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ClearCache asks the server to drop its analysis caches.
func (s *Session) ClearCache(ctx context.Context) error {
	return s.call(ctx, MethodClearCache, nil, nil)
}

// SetLogLevel adjusts server-side log verbosity.
func (s *Session) SetLogLevel(ctx context.Context, level string, extraArgs []string) error {
	return s.call(ctx, MethodSetLogLevel, SetLogLevelParams{Level: level, ExtraArgs: extraArgs}, nil)
}

// NotifyConfiguration pushes updated settings to the server.
func (s *Session) NotifyConfiguration(settings any) error {
	if s.State() != StateReady {
		return ErrSessionNotReady
	}
	return s.transport.Notify(MethodDidChangeConfiguration, DidChangeConfigurationParams{Settings: settings})
}

// Shutdown performs the shutdown/exit sequence and stops the process.
func (s *Session) Shutdown(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateShuttingDown))

		if s.transport != nil && !s.transport.IsClosed() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			_ = s.transport.Call(shutdownCtx, MethodShutdown, nil, nil)
			cancel()
			_ = s.transport.Notify(MethodExit, nil)
		}

		s.stopProcess()
		if s.cancel != nil {
			s.cancel()
		}
		s.state.Store(int32(StateStopped))
	})
	return err
}

// uriToFilePath converts a file URI back to a filesystem path.
func uriToFilePath(uri string) string {
	const prefix = "file://"
	if len(uri) > len(prefix) && uri[:len(prefix)] == prefix {
		return uri[len(prefix):]
	}
	return uri
}
