package commands

import (
	"github.com/spf13/cobra"

	"github.com/proxima-one/proxima-cli/internal/cli/ui"
	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

type messages struct {
	start string
	done  string
}

var stageMessages = map[lifecycle.Command]messages{
	lifecycle.Init:      {"Initializing a new project....", "Initialized"},
	lifecycle.Gen:       {"Generating project files....", "Project Generated."},
	lifecycle.Build:     {"Building proxima project....", "Application Built."},
	lifecycle.Run:       {"Starting proxima project....", "Project Running."},
	lifecycle.Test:      {"Testing project....", "Project Tested."},
	lifecycle.Deploy:    {"Deploying proxima project....", "Project Deployed."},
	lifecycle.Benchmark: {"Benchmarking proxima project....", "Project Benchmarked"},
}

func messagesFor(c lifecycle.Command) messages {
	return stageMessages[c]
}

// newStageCommand builds the cobra command for a gated lifecycle step.
func newStageCommand(opts *globalOptions, command lifecycle.Command, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   command.String(),
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.orch.Execute(cmd.Context(), command); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), messagesFor(command).done, a.noColor)
			return nil
		},
	}
}

// NewGenCommand creates the gen command
func NewGenCommand(opts *globalOptions) *cobra.Command {
	return newStageCommand(opts, lifecycle.Gen,
		"Generate project files from the schema",
		`Process the GraphQL schema and app-config.yml and generate the database
configuration, vertex client, event handlers and blockchain client.

Requires an initialized project. On success the project is recorded as
generated.

Examples:
  proxima gen
  proxima gen -C ./my-app`)
}

// NewBuildCommand creates the build command
func NewBuildCommand(opts *globalOptions) *cobra.Command {
	return newStageCommand(opts, lifecycle.Build,
		"Build the data aggregator and vertex images",
		`Generate the data aggregator, data vertex and docker-compose file, then
build the application images with docker compose.

Requires a generated project. On success the project is recorded as built.

Examples:
  proxima build`)
}

// NewRunCommand creates the run command
func NewRunCommand(opts *globalOptions) *cobra.Command {
	return newStageCommand(opts, lifecycle.Run,
		"Run the built application",
		`Start the application containers with docker compose.

Requires a built project. Running does not change the recorded state.

Examples:
  proxima run`)
}

// NewTestCommand creates the test command
func NewTestCommand(opts *globalOptions) *cobra.Command {
	return newStageCommand(opts, lifecycle.Test,
		"Run the data vertex test suite",
		`Run the Go tests of the generated data vertex package.

Requires a built project. Testing does not change the recorded state.

Examples:
  proxima test`)
}

// NewDeployCommand creates the deploy command
func NewDeployCommand(opts *globalOptions) *cobra.Command {
	return newStageCommand(opts, lifecycle.Deploy,
		"Push the built application images",
		`Push the application images to their registry with docker compose.

Requires a built project. Deploying does not change the recorded state.

Examples:
  proxima deploy`)
}

// NewBenchmarkCommand creates the benchmark command
func NewBenchmarkCommand(opts *globalOptions) *cobra.Command {
	return newStageCommand(opts, lifecycle.Benchmark,
		"Benchmark the data vertex against a local database",
		`Start a throwaway database container, run the data vertex benchmarks
against it and stop the container afterwards.

Requires a built project. Benchmarking does not change the recorded state.

Examples:
  proxima benchmark`)
}
