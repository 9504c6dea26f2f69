package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/proxima-one/proxima-cli/internal/cli/ui"
	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

// NewStatusCommand creates the status command
func NewStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the project's lifecycle state",
		Long: `Show where the project stands in the init → gen → build pipeline and
which commands are currently allowed. Nothing is changed.

Examples:
  proxima status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.orch.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Header(out, "Proxima project", a.noColor)

			table := ui.NewKeyValueTable(out, a.noColor)
			table.AddRow("Root", st.Root)
			if st.Record != nil {
				table.AddRow("Name", st.Record.Name)
				if st.Record.ID != "" {
					table.AddRow("ID", st.Record.ID)
				}
				table.AddRow("App config", st.Record.AppConfigPath())
				if !st.Record.CreatedAt.IsZero() {
					table.AddRow("Created", st.Record.CreatedAt.Local().Format(time.RFC1123))
				}
			}
			table.AddColoredRow("State", st.State.String(), stateColor(st.State))
			table.AddRow("Allowed", commandList(st.Allowed))
			table.Render()

			if st.Record == nil {
				fmt.Fprintln(out, "\nNo project here yet. Start one with: proxima init")
			}
			return nil
		},
	}
}

func commandList(cmds []lifecycle.Command) string {
	if len(cmds) == 0 {
		return "none"
	}
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// stateColor highlights how far along the pipeline a project is.
func stateColor(s lifecycle.State) *color.Color {
	switch s {
	case lifecycle.Built:
		return color.New(color.FgGreen, color.Bold)
	case lifecycle.Uninitialized:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
