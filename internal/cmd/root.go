// Package cmd defines the robotcode command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/febb0e/robotcode/internal/app"
)

var (
	rootFolders    []string
	rootServerCmd  []string
	rootUserConfig string
	rootActionsDir string
	rootReportName string
	rootLogFile    string
	rootLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "robotcode",
	Short: "Terminal companion for the Robot Framework analysis server",
	Long: `robotcode runs a terminal UI next to a Robot Framework project:
per-folder analysis-server sessions, environment status, configuration
actions and a run-log viewer.

With no --folder flags the project root of the working directory is
detected via robot.toml, pyproject.toml or .git.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&rootFolders, "folder", "f", nil, "workspace folder (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&rootServerCmd, "server", nil, "analysis server command and arguments")
	rootCmd.PersistentFlags().StringVar(&rootUserConfig, "config", "", "user settings file")
	rootCmd.PersistentFlags().StringVar(&rootActionsDir, "actions", "", "directory of Lua action scripts")
	rootCmd.PersistentFlags().StringVar(&rootReportName, "report", "", "run report file name relative to the folder root")
	rootCmd.PersistentFlags().StringVar(&rootLogFile, "log-file", "", "write structured logs to this file")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func runRoot(cmd *cobra.Command, _ []string) error {
	a, err := app.New(app.Options{
		Folders:        rootFolders,
		ServerCommand:  rootServerCmd,
		UserConfigFile: rootUserConfig,
		ActionsDir:     rootActionsDir,
		ReportName:     rootReportName,
		LogFile:        rootLogFile,
		LogLevel:       rootLogLevel,
	})
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	return a.Run(cmd.Context())
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
