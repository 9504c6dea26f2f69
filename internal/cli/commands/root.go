package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	dir     string
	verbose bool
	noColor bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "proxima",
		Short: "Build, run and deploy Proxima data applications",
		Long: color.CyanString(`Proxima - blockchain data application toolkit

A Proxima project moves through a fixed pipeline:

  init  →  gen  →  build  →  run | test | deploy | benchmark

Each step is only allowed once the previous one has completed. The
current stage is recorded in .proxima.yml at the project root.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "Project directory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInitCommand(opts))
	rootCmd.AddCommand(NewGenCommand(opts))
	rootCmd.AddCommand(NewBuildCommand(opts))
	rootCmd.AddCommand(NewRunCommand(opts))
	rootCmd.AddCommand(NewTestCommand(opts))
	rootCmd.AddCommand(NewDeployCommand(opts))
	rootCmd.AddCommand(NewBenchmarkCommand(opts))
	rootCmd.AddCommand(NewStatusCommand(opts))
	rootCmd.AddCommand(NewHistoryCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the Proxima CLI version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "Proxima version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command and renders any error it returns.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		renderError(cmd.ErrOrStderr(), err, noColor)
		return err
	}
	return nil
}
