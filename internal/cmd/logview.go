package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/febb0e/robotcode/internal/logview"
	"github.com/febb0e/robotcode/internal/ui"
)

var logviewCmd = &cobra.Command{
	Use:   "logview <report.json>",
	Short: "Browse a run report without starting the full UI",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogview,
}

func init() {
	rootCmd.AddCommand(logviewCmd)
}

func runLogview(_ *cobra.Command, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	src, err := logview.NewReportSource(doc)
	if err != nil {
		return err
	}
	model, err := logview.NewModel(src)
	if err != nil {
		return err
	}

	term, err := ui.NewTerminal()
	if err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer term.Fini()

	events := make(chan ui.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := term.PollEvent()
			if ev.Type == ui.EventNone {
				return
			}
			events <- ev
		}
	}()

	logview.NewView(model).Run(term, events)
	return nil
}
