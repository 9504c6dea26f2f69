package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/proxima-one/proxima-cli/internal/cli/ui"
	"github.com/proxima-one/proxima-cli/internal/history"
)

var historyColumns = []string{"WHEN", "COMMAND", "FROM", "TO", "OUTCOME", "DURATION", "ERROR"}

const outcomeColumn = 4

var outcomeColors = map[history.Outcome]*color.Color{
	history.OutcomeOK:     color.New(color.FgGreen),
	history.OutcomeDenied: color.New(color.FgYellow),
	history.OutcomeFailed: color.New(color.FgRed),
}

// outcomeStyle colors the OUTCOME column of the history table.
func outcomeStyle(col int, value string) *color.Color {
	if col != outcomeColumn {
		return nil
	}
	return outcomeColors[history.Outcome(value)]
}

// NewHistoryCommand creates the history command
func NewHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lifecycle commands",
		Long: `List the lifecycle commands recorded for this project, newest first,
with the state they started from, the state they left and how they ended.

Examples:
  proxima history
  proxima history --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				ui.WriteError(out, ui.ErrorOptions{
					Level:        ui.ErrorLevelInfo,
					Problem:      "No history recorded yet.",
					HelpCommands: []string{"Lifecycle commands are recorded as they run: proxima init"},
					NoColor:      a.noColor,
				})
				return nil
			}

			table := ui.NewTable(out, historyColumns, &ui.TableOptions{NoColor: a.noColor, Style: outcomeStyle})
			for _, e := range entries {
				table.AddRow(
					e.StartedAt.Local().Format(time.DateTime),
					e.Command.String(),
					e.From.String(),
					e.To.String(),
					string(e.Outcome),
					formatDuration(e),
					e.Error,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show (0 for all)")

	return cmd
}

func formatDuration(e history.Entry) string {
	if e.Duration == 0 {
		return "-"
	}
	return e.Duration.Round(time.Millisecond).String()
}
