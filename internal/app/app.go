// Package app wires the companion together: workspace, settings,
// supervised analysis-server sessions, environment resolution, the
// status row, the action menu and the log viewer, all joined by the
// event bus and driven from one terminal event loop.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/febb0e/robotcode/internal/config"
	"github.com/febb0e/robotcode/internal/environment"
	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/langserver"
	"github.com/febb0e/robotcode/internal/menu"
	"github.com/febb0e/robotcode/internal/plugin"
	"github.com/febb0e/robotcode/internal/status"
	"github.com/febb0e/robotcode/internal/workspace"
)

// Options configures the application.
type Options struct {
	// Folders are the workspace folders to open. Empty falls back to
	// the detected project root of the working directory.
	Folders []string

	// ServerCommand launches the analysis server, e.g.
	// ["robotcode", "language-server"].
	ServerCommand []string

	// UserConfigFile overrides the user-level settings path.
	UserConfigFile string

	// ActionsDir holds user Lua actions. Empty selects the default
	// next to the user settings file.
	ActionsDir string

	// ReportName is the run report file looked up per folder for the
	// log viewer.
	ReportName string

	// LogFile receives structured logs. Empty disables logging, since
	// stderr belongs to the terminal UI.
	LogFile string

	// LogLevel is the minimum level written to LogFile.
	LogLevel string
}

// DefaultServerCommand is used when Options.ServerCommand is empty.
var DefaultServerCommand = []string{"robotcode", "language-server"}

const defaultReportName = "output.json"

// Application owns every long-lived component.
type Application struct {
	opts   Options
	logger *Logger

	bus       *event.Bus
	workspace *workspace.Workspace
	store     *config.Store
	watcher   *config.Watcher
	manager   *langserver.Manager
	resolver  *environment.Resolver
	surface   *status.Surface
	registry  *menu.Registry
	menu      *menu.Menu

	prompter  *terminalPrompter
	logClose  io.Closer
	stateCh   chan langserver.StateChange
	stateDone chan struct{}

	focus *workspace.Editor
}

// New builds and wires an application. Sessions start lazily on first
// focus; New itself spawns nothing.
func New(opts Options) (*Application, error) {
	a := &Application{opts: opts, logger: NullLogger, bus: event.NewBus()}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logClose = f
		a.logger = NewLogger(LoggerConfig{
			Level:  ParseLogLevel(opts.LogLevel),
			Output: f,
			Prefix: "robotcode",
		})
	}

	if err := a.initWorkspace(); err != nil {
		return nil, err
	}
	if err := a.initConfig(); err != nil {
		return nil, err
	}
	a.initServers()
	a.initStatus()
	a.initMenu()

	a.logger.Info("application wired: %d folder(s)", a.workspace.Len())
	return a, nil
}

// Logger returns the application's logger.
func (a *Application) Logger() *Logger {
	return a.logger
}

// Bus returns the event bus.
func (a *Application) Bus() *event.Bus {
	return a.bus
}

func (a *Application) initWorkspace() error {
	a.workspace = workspace.New()

	if len(a.opts.Folders) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		a.workspace.Add(workspace.DetectRoot(wd))
		return nil
	}
	for _, f := range a.opts.Folders {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("folder %s: %w", f, err)
		}
		a.workspace.Add(workspace.FolderFromPath(abs))
	}
	return nil
}

func (a *Application) initConfig() error {
	userFile := a.opts.UserConfigFile
	if userFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			userFile = filepath.Join(home, ".config", "robotcode", "settings.json")
		}
	}
	a.store = config.NewStore(userFile)

	// Settings changes fan out to the bus so the resolver and surface
	// recompute without knowing about the store.
	a.store.Notifier().Subscribe(func(c config.Change) {
		a.bus.Publish(event.TopicConfigChanged, event.ConfigChanged{Folder: c.Folder, Key: c.Key})
	})

	w, err := config.NewWatcher(a.store, 0)
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	a.watcher = w
	for _, f := range a.workspace.Folders() {
		if err := w.AddFolder(f.Path); err != nil {
			a.logger.Warn("watch %s: %v", f.Path, err)
		}
	}
	if err := w.AddUserFile(); err != nil {
		a.logger.Warn("watch user settings: %v", err)
	}
	return nil
}

func (a *Application) initServers() {
	command := a.opts.ServerCommand
	if len(command) == 0 {
		command = DefaultServerCommand
	}

	configFor := func(folder string) langserver.Config {
		args := append([]string(nil), command[1:]...)
		args = append(args, a.store.GetStringSlice(folder, config.KeyExtraArgs)...)

		cfg := langserver.Config{
			Command: command[0],
			Args:    args,
			Options: langserver.InitializationOptions{
				Profiles:       a.store.GetStringSlice(folder, config.KeyProfiles),
				DiagnosticMode: a.store.GetString(folder, config.KeyDiagnosticMode),
				RobocopEnabled: a.store.GetBool(folder, config.KeyRobocopEnabled),
				ExtraArgs:      a.store.GetStringSlice(folder, config.KeyExtraArgs),
			},
		}
		if python := a.store.GetString(folder, config.KeyPythonPath); python != "" {
			cfg.Env = map[string]string{"ROBOTCODE_PYTHON": python}
		}
		return cfg
	}

	// State callbacks fire while session locks are held; publishing
	// through a dispatcher goroutine keeps bus handlers free to call
	// back into the manager.
	a.stateCh = make(chan langserver.StateChange, 64)
	a.stateDone = make(chan struct{})
	go func() {
		for {
			select {
			case sc := <-a.stateCh:
				a.bus.Publish(event.TopicServerState, sc)
			case <-a.stateDone:
				return
			}
		}
	}()

	serverLog := a.logger.WithComponent("server")
	a.manager = langserver.NewManager(configFor,
		langserver.WithStateCallback(func(sc langserver.StateChange) {
			a.logger.Debug("server %s -> %s", sc.Folder, sc.State)
			select {
			case a.stateCh <- sc:
			case <-a.stateDone:
			}
		}),
		langserver.WithLogHandler(func(folder string, level int, message string) {
			serverLog.WithField("folder", folder).Info("%s", message)
		}),
	)

	a.resolver = environment.NewResolver(environment.InfoSourceFunc(
		func(ctx context.Context, folder workspace.Folder) (*langserver.EnvironmentInfo, error) {
			session, err := a.manager.SessionFor(ctx, langserver.WorkspaceFolder{
				URI:  folder.URI(),
				Name: folder.Name,
			})
			if err != nil {
				return nil, err
			}
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return session.EnvironmentInfo(ctx)
		}))
	a.resolver.Bind(a.bus)
}

func (a *Application) initStatus() {
	a.surface = status.NewSurface(a.resolver, a.workspace)
	a.surface.Bind(a.bus)
}

func (a *Application) initMenu() {
	a.prompter = &terminalPrompter{}
	servers := &serverControl{manager: a.manager}

	deps := menu.Deps{
		Config:   a.store,
		Servers:  servers,
		Bus:      a.bus,
		Prompter: a.prompter,
		ShowLogs: a.showLogs,
	}
	a.registry = menu.NewRegistry(menu.Builtins(deps)...)

	actionsDir := a.opts.ActionsDir
	if actionsDir == "" && a.store.UserFile() != "" {
		actionsDir = filepath.Join(filepath.Dir(a.store.UserFile()), "actions")
	}
	scripts, errs := plugin.Load(actionsDir)
	for _, err := range errs {
		a.logger.Warn("%v", err)
	}
	for _, s := range scripts {
		a.registry.Register(s.Action())
	}

	a.menu = menu.New(a.registry, a.workspace, servers, a.prompter)
}

// Focus sets the active editor and publishes the focus event.
func (a *Application) Focus(path string) {
	ed := &workspace.Editor{Path: path, LanguageID: workspace.DetectLanguageID(path)}
	a.focus = ed
	a.bus.Publish(event.TopicEditorFocus, event.EditorFocus{Path: ed.Path, LanguageID: ed.LanguageID})
}

// focusFolder resolves the folder the UI currently operates on.
func (a *Application) focusFolder() (workspace.Folder, bool) {
	if a.focus != nil {
		if f, ok := a.workspace.FolderOf(a.focus.Path); ok {
			return f, true
		}
	}
	if folders := a.workspace.Folders(); len(folders) == 1 {
		return folders[0], true
	}
	return workspace.Folder{}, false
}

// reportPath returns the run report for the focused folder.
func (a *Application) reportPath() (string, bool) {
	folder, ok := a.focusFolder()
	if !ok {
		return "", false
	}
	name := a.opts.ReportName
	if name == "" {
		name = defaultReportName
	}
	path := filepath.Join(folder.Path, name)
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// Shutdown stops sessions and watchers.
func (a *Application) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.manager != nil {
		if err := a.manager.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.stateDone != nil {
		close(a.stateDone)
		a.stateDone = nil
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.logger.Info("shutdown complete")
	if a.logClose != nil {
		_ = a.logClose.Close()
	}
	return firstErr
}
