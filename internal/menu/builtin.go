package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/febb0e/robotcode/internal/config"
	"github.com/febb0e/robotcode/internal/event"
	"github.com/febb0e/robotcode/internal/picker"
	"github.com/febb0e/robotcode/internal/workspace"
)

// ServerControl is the slice of the session manager the built-in actions
// need. The application adapts its manager to this.
type ServerControl interface {
	HasSession(folder string) bool
	Restart(ctx context.Context, folder string) error
	ClearCacheRestart(ctx context.Context, folder string) error
	SetLogLevel(ctx context.Context, folder, level string, extraArgs []string) error
}

// Deps carries what the built-in actions operate on.
type Deps struct {
	Config   *config.Store
	Servers  ServerControl
	Bus      *event.Bus
	Prompter Prompter

	// ShowLogs raises the log viewer panel.
	ShowLogs func()
}

// Builtins returns the standard action set in menu order.
func Builtins(d Deps) []Action {
	return []Action{
		toggleRobocop(d),
		switchDiagnosticsMode(d),
		selectProfiles(d),
		restartServer(d),
		clearCacheRestart(d),
		showLogs(d),
		selectEnvironment(d),
		setLogVerbosity(d),
	}
}

func toggleRobocop(d Deps) Action {
	return Action{
		ID: "robot.toggleRobocop",
		Label: func(f workspace.Folder) string {
			if d.Config.GetBool(f.Path, config.KeyRobocopEnabled) {
				return "Disable Robocop Linting"
			}
			return "Enable Robocop Linting"
		},
		Run: func(_ context.Context, f workspace.Folder) error {
			_, err := d.Config.Toggle(f.Path, config.KeyRobocopEnabled)
			return err
		},
	}
}

func switchDiagnosticsMode(d Deps) Action {
	other := func(f workspace.Folder) string {
		if d.Config.GetString(f.Path, config.KeyDiagnosticMode) == config.DiagnosticModeWorkspace {
			return config.DiagnosticModeOpenFiles
		}
		return config.DiagnosticModeWorkspace
	}
	return Action{
		ID: "robot.switchDiagnosticsMode",
		Label: func(f workspace.Folder) string {
			return fmt.Sprintf("Switch Diagnostics Mode to %q", other(f))
		},
		Detail: func(f workspace.Folder) string {
			return "currently " + d.Config.GetString(f.Path, config.KeyDiagnosticMode)
		},
		Run: func(_ context.Context, f workspace.Folder) error {
			return d.Config.Set(f.Path, config.KeyDiagnosticMode, other(f))
		},
	}
}

func selectProfiles(d Deps) Action {
	return Action{
		ID:    "robot.selectProfiles",
		Label: StaticLabel("Select Configuration Profiles"),
		Detail: func(f workspace.Folder) string {
			active := d.Config.GetStringSlice(f.Path, config.KeyProfiles)
			if len(active) == 0 {
				return "none active"
			}
			return strings.Join(active, ", ")
		},
		Run: func(_ context.Context, f workspace.Folder) error {
			profiles := config.Profiles(f.Path)
			if len(profiles) == 0 {
				d.Prompter.Message("no profiles defined in robot.toml")
				return nil
			}

			active := d.Config.GetStringSlice(f.Path, config.KeyProfiles)
			activeSet := make(map[string]bool, len(active))
			for _, name := range active {
				activeSet[name] = true
			}

			items := make([]picker.Item, len(profiles))
			for i, p := range profiles {
				mark := "  "
				if activeSet[p.Name] {
					mark = "* "
				}
				items[i] = picker.Item{Label: mark + p.Name, Detail: p.Description, Data: p.Name}
			}

			sel, err := d.Prompter.Pick("Toggle profile", items)
			if err != nil {
				return nil
			}
			name, _ := sel.Data.(string)

			if activeSet[name] {
				next := make([]string, 0, len(active)-1)
				for _, n := range active {
					if n != name {
						next = append(next, n)
					}
				}
				active = next
			} else {
				active = append(active, name)
			}
			return d.Config.Set(f.Path, config.KeyProfiles, active)
		},
	}
}

func restartServer(d Deps) Action {
	return Action{
		ID:    "robot.restartServer",
		Label: StaticLabel("Restart Language Server"),
		Run: func(ctx context.Context, f workspace.Folder) error {
			if !d.Servers.HasSession(f.Path) {
				d.Prompter.Message("no language server running for " + f.Name)
				return nil
			}
			return d.Servers.Restart(ctx, f.Path)
		},
	}
}

func clearCacheRestart(d Deps) Action {
	return Action{
		ID:    "robot.clearCacheRestart",
		Label: StaticLabel("Clear Cache and Restart Language Server"),
		Run: func(ctx context.Context, f workspace.Folder) error {
			if !d.Servers.HasSession(f.Path) {
				d.Prompter.Message("no language server running for " + f.Name)
				return nil
			}
			return d.Servers.ClearCacheRestart(ctx, f.Path)
		},
	}
}

func showLogs(d Deps) Action {
	return Action{
		ID:    "robot.showLogs",
		Label: StaticLabel("Show Run Logs"),
		Run: func(context.Context, workspace.Folder) error {
			if d.ShowLogs != nil {
				d.ShowLogs()
			}
			return nil
		},
	}
}

func selectEnvironment(d Deps) Action {
	return Action{
		ID:    "robot.selectEnvironment",
		Label: StaticLabel("Select Python Environment"),
		Detail: func(f workspace.Folder) string {
			if path := d.Config.GetString(f.Path, config.KeyPythonPath); path != "" {
				return path
			}
			return "system default"
		},
		Run: func(_ context.Context, f workspace.Folder) error {
			current := d.Config.GetString(f.Path, config.KeyPythonPath)
			path, err := d.Prompter.Input("Python interpreter path", current)
			if err != nil {
				return nil
			}
			if err := d.Config.Set(f.Path, config.KeyPythonPath, path); err != nil {
				return err
			}
			d.Bus.Publish(event.TopicEnvironmentChanged, event.EnvironmentChanged{Folder: f.Path})
			return nil
		},
	}
}

func setLogVerbosity(d Deps) Action {
	return Action{
		ID:    "robot.setLogVerbosity",
		Label: StaticLabel("Set Log Verbosity Arguments"),
		Detail: func(f workspace.Folder) string {
			args := d.Config.GetStringSlice(f.Path, config.KeyExtraArgs)
			if len(args) == 0 {
				return "none"
			}
			return strings.Join(args, " ")
		},
		Run: func(ctx context.Context, f workspace.Folder) error {
			current := strings.Join(d.Config.GetStringSlice(f.Path, config.KeyExtraArgs), " ")
			line, err := d.Prompter.Input("Extra language server arguments", current)
			if err != nil {
				return nil
			}
			args := strings.Fields(line)
			if err := d.Config.Set(f.Path, config.KeyExtraArgs, args); err != nil {
				return err
			}
			// Apply live when a session exists; the restart path picks the
			// args up from configuration otherwise.
			if d.Servers.HasSession(f.Path) {
				return d.Servers.SetLogLevel(ctx, f.Path, "", args)
			}
			return nil
		},
	}
}
