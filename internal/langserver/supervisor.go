package langserver

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// SupervisorConfig bounds crash recovery.
type SupervisorConfig struct {
	// MaxRestarts is the restart budget before the session is declared
	// permanently failed. Default 5.
	MaxRestarts int

	// InitialBackoff is the delay before the first restart. Default 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between restarts. Default 60s.
	MaxBackoff time.Duration

	// BackoffMultiplier scales the delay after each failure. Default 2.0.
	BackoffMultiplier float64

	// ResetWindow resets the restart count after the server has run this
	// long without crashing. Default 5m.
	ResetWindow time.Duration
}

// DefaultSupervisorConfig returns the default supervision parameters.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		MaxRestarts:       5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
		ResetWindow:       5 * time.Minute,
	}
}

// Backoff returns the delay before restart attempt n (1-based).
func (c SupervisorConfig) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return c.InitialBackoff
	}
	d := float64(c.InitialBackoff) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if d > float64(c.MaxBackoff) {
		return c.MaxBackoff
	}
	return time.Duration(d)
}

// SupervisorState is the state of a supervised session.
type SupervisorState int

const (
	SupervisorIdle SupervisorState = iota
	SupervisorRunning
	SupervisorRestarting
	SupervisorFailed
	SupervisorStopped
)

// String returns a human-readable state name.
func (s SupervisorState) String() string {
	switch s {
	case SupervisorIdle:
		return "idle"
	case SupervisorRunning:
		return "running"
	case SupervisorRestarting:
		return "restarting"
	case SupervisorFailed:
		return "failed"
	case SupervisorStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Supervisor keeps one session alive for a folder, restarting it with
// exponential backoff after crashes.
type Supervisor struct {
	mu sync.Mutex

	config        SupervisorConfig
	sessionConfig Config
	folder        WorkspaceFolder

	session      *Session
	restartCount int
	lastStart    time.Time

	// onState observes the underlying session state as supervision runs.
	onState func(folder string, state State)

	// onLog is attached to every session this supervisor starts, so
	// crash restarts keep forwarding server log output.
	onLog func(level int, message string)

	// newSession and startSession are seams replaced in tests; nil means
	// NewSession and (*Session).Start.
	newSession   func() *Session
	startSession func(ctx context.Context, sess *Session) error

	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSupervisor creates a supervisor for one folder.
func NewSupervisor(sessionConfig Config, folder WorkspaceFolder, config SupervisorConfig) *Supervisor {
	s := &Supervisor{
		config:        config,
		sessionConfig: sessionConfig,
		folder:        folder,
	}
	s.state.Store(int32(SupervisorIdle))
	return s
}

// OnStateChange registers an observer for session state transitions.
// Must be called before Start.
func (s *Supervisor) OnStateChange(fn func(folder string, state State)) {
	s.mu.Lock()
	s.onState = fn
	s.mu.Unlock()
}

// OnLogMessage registers a sink for server log output. The sink carries
// over to sessions started after a crash. Must be called before Start.
func (s *Supervisor) OnLogMessage(fn func(level int, message string)) {
	s.mu.Lock()
	s.onLog = fn
	s.mu.Unlock()
}

// State returns the supervisor state.
func (s *Supervisor) State() SupervisorState {
	return SupervisorState(s.state.Load())
}

// Session returns the current session, which may be nil mid-restart.
func (s *Supervisor) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// IsReady reports whether the supervised session can take requests.
func (s *Supervisor) IsReady() bool {
	sess := s.Session()
	return sess != nil && sess.State() == StateReady
}

// RestartCount returns the number of restarts since the last reset window.
func (s *Supervisor) RestartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restartCount
}

// Start launches the session and begins supervision.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != SupervisorIdle {
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.startSessionLocked(); err != nil {
		s.state.Store(int32(SupervisorFailed))
		return err
	}
	s.state.Store(int32(SupervisorRunning))
	return nil
}

// startSessionLocked spawns and initializes a fresh session. Caller holds mu.
func (s *Supervisor) startSessionLocked() error {
	s.notifyLocked(StateStarting)

	var session *Session
	if s.newSession != nil {
		session = s.newSession()
	} else {
		session = NewSession(s.sessionConfig, s.folder)
	}
	if s.onLog != nil {
		session.OnLogMessage(s.onLog)
	}

	start := s.startSession
	if start == nil {
		start = func(ctx context.Context, sess *Session) error { return sess.Start(ctx) }
	}
	if err := start(s.ctx, session); err != nil {
		s.notifyLocked(StateError)
		return err
	}

	s.session = session
	s.lastStart = time.Now()
	s.notifyLocked(StateReady)

	go s.watch(session)
	return nil
}

func (s *Supervisor) notifyLocked(state State) {
	if s.onState != nil {
		s.onState(uriToFilePath(s.folder.URI), state)
	}
}

// watch waits for one session's process to exit and, if that session is
// still the active one, drives the restart loop. Restart and Stop detach the
// session first, so an expected exit is not treated as a crash.
func (s *Supervisor) watch(session *Session) {
	select {
	case <-s.ctx.Done():
		return
	case exitErr := <-session.Exited():
		s.mu.Lock()
		current := s.session == session
		s.mu.Unlock()
		if !current {
			return
		}
		s.restartAfterCrash(exitErr)
	}
}

// restartAfterCrash retries until the session recovers (a recovered session
// gets its own watch goroutine), the restart budget is exhausted, or the
// supervisor is stopped. Returns true on recovery.
func (s *Supervisor) restartAfterCrash(exitErr error) bool {
	for {
		s.mu.Lock()

		if s.State() == SupervisorStopped {
			s.mu.Unlock()
			return false
		}

		if time.Since(s.lastStart) > s.config.ResetWindow {
			s.restartCount = 0
		}
		s.restartCount++

		if s.restartCount > s.config.MaxRestarts {
			s.state.Store(int32(SupervisorFailed))
			s.notifyLocked(StateError)
			s.mu.Unlock()
			return false
		}

		delay := s.config.Backoff(s.restartCount)
		s.state.Store(int32(SupervisorRestarting))
		s.mu.Unlock()

		select {
		case <-s.ctx.Done():
			return false
		case <-time.After(delay):
		}

		s.mu.Lock()
		if s.State() == SupervisorStopped {
			s.mu.Unlock()
			return false
		}

		if err := s.startSessionLocked(); err != nil {
			exitErr = err
			s.mu.Unlock()
			continue
		}

		s.state.Store(int32(SupervisorRunning))
		s.mu.Unlock()
		return true
	}
}

// Restart tears down the current session and brings a new one up
// immediately, outside the crash/backoff path.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if session != nil {
		_ = session.Shutdown(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() == SupervisorStopped {
		return ErrNotStarted
	}
	s.restartCount = 0
	if err := s.startSessionLocked(); err != nil {
		s.state.Store(int32(SupervisorFailed))
		return err
	}
	s.state.Store(int32(SupervisorRunning))
	return nil
}

// Stop ends supervision and shuts the session down.
func (s *Supervisor) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	state := s.State()
	if state == SupervisorStopped || state == SupervisorIdle {
		s.mu.Unlock()
		return nil
	}
	s.state.Store(int32(SupervisorStopped))
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if session != nil {
		return session.Shutdown(ctx)
	}
	return nil
}
