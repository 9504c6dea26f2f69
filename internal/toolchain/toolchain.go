// Package toolchain performs the real work behind each lifecycle command by
// driving external tools: the proxima-autogen code generator, docker compose
// and the go test runner. Every call blocks until the tool exits; failures
// are returned as-is and never retried.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/proxima-one/proxima-cli/internal/cli/config"
	"github.com/proxima-one/proxima-cli/internal/scaffold"
)

// Toolchain implements the lifecycle collaborators.
type Toolchain struct {
	fs     afero.Fs
	runner Runner
	logger *zap.Logger
}

// New creates a toolchain that executes processes through runner.
func New(fsys afero.Fs, runner Runner, logger *zap.Logger) *Toolchain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toolchain{fs: fsys, runner: runner, logger: logger}
}

// generatorStep is one proxima-autogen subcommand and the output directory
// it writes to, if any.
type generatorStep struct {
	name string
	out  func(*config.AppConfig) string
}

var generateSteps = []generatorStep{
	{name: "schema"},
	{name: "database", out: func(a *config.AppConfig) string { return a.Output.Database }},
	{name: "vertex-client", out: func(a *config.AppConfig) string { return a.Output.VertexClient }},
	{name: "handlers", out: func(a *config.AppConfig) string { return a.Output.Handlers }},
	{name: "blockchain-client", out: func(a *config.AppConfig) string { return a.Output.BlockchainClient }},
}

var buildSteps = []generatorStep{
	{name: "data-aggregator", out: func(a *config.AppConfig) string { return a.Output.DataAggregator }},
	{name: "data-vertex", out: func(a *config.AppConfig) string { return a.Output.DataVertex }},
}

var testStructsStep = generatorStep{
	name: "test-structs",
	out:  func(a *config.AppConfig) string { return a.Output.DataVertex },
}

var composeStep = generatorStep{
	name: "compose",
	out:  func(a *config.AppConfig) string { return a.Docker.ComposeFile },
}

// Scaffold writes the starter project files for init.
func (t *Toolchain) Scaffold(ctx context.Context, root, name string) error {
	res, err := scaffold.Write(t.fs, root, name)
	if err != nil {
		return err
	}
	for _, p := range res.Created {
		t.logger.Debug("created", zap.String("path", p))
	}
	for _, p := range res.Skipped {
		t.logger.Info("kept existing file", zap.String("path", p))
	}
	return nil
}

// Generate processes the schema and produces the database config, vertex
// client, event handlers and blockchain client.
func (t *Toolchain) Generate(ctx context.Context, app *config.AppConfig) error {
	env, err := t.environ(app)
	if err != nil {
		return err
	}
	for _, step := range generateSteps {
		if err := t.generator(ctx, app, env, step); err != nil {
			return err
		}
	}
	return nil
}

// Build produces the data aggregator and data vertex applications, the
// compose descriptor, and builds the container images.
func (t *Toolchain) Build(ctx context.Context, app *config.AppConfig) error {
	env, err := t.environ(app)
	if err != nil {
		return err
	}

	steps := append([]generatorStep{}, buildSteps...)
	if app.Generator.TestStructs {
		steps = append(steps, testStructsStep)
	}
	steps = append(steps, composeStep)

	for _, step := range steps {
		if err := t.generator(ctx, app, env, step); err != nil {
			return err
		}
	}

	return t.runner.Run(ctx, t.compose(app, env, "build"))
}

// Run starts the application containers in the foreground.
func (t *Toolchain) Run(ctx context.Context, app *config.AppConfig) error {
	env, err := t.environ(app)
	if err != nil {
		return err
	}
	return t.runner.Run(ctx, t.compose(app, env, "up"))
}

// Deploy pushes the built images to their registry.
func (t *Toolchain) Deploy(ctx context.Context, app *config.AppConfig) error {
	env, err := t.environ(app)
	if err != nil {
		return err
	}
	return t.runner.Run(ctx, t.compose(app, env, "push"))
}

// Test runs the data vertex test suite.
func (t *Toolchain) Test(ctx context.Context, app *config.AppConfig) error {
	env, err := t.environ(app)
	if err != nil {
		return err
	}
	dir, err := t.vertexDir(app)
	if err != nil {
		return err
	}
	return t.runner.Run(ctx, Cmd{Dir: dir, Name: "go", Args: []string{"test", "-v", "./..."}, Env: env})
}

// Benchmark starts the proxima database container, runs the data vertex
// benchmarks against it and stops the container again.
func (t *Toolchain) Benchmark(ctx context.Context, app *config.AppConfig) error {
	env, err := t.environ(app)
	if err != nil {
		return err
	}
	dir, err := t.vertexDir(app)
	if err != nil {
		return err
	}

	port := fmt.Sprintf("%d:%d", app.Docker.DBPort, app.Docker.DBPort)
	id, err := t.runner.Output(ctx, Cmd{
		Dir:  app.Dir(),
		Name: app.Docker.Command,
		Args: []string{"run", "-d", "--rm", "-p", port, app.Docker.DBImage},
		Env:  env,
	})
	if err != nil {
		return fmt.Errorf("failed to start database container: %w", err)
	}
	t.logger.Debug("database container started", zap.String("container", id))

	defer func() {
		stop := Cmd{Dir: app.Dir(), Name: app.Docker.Command, Args: []string{"stop", id}, Env: env}
		if _, err := t.runner.Output(context.WithoutCancel(ctx), stop); err != nil {
			t.logger.Warn("failed to stop database container", zap.String("container", id), zap.Error(err))
		}
	}()

	return t.runner.Run(ctx, Cmd{Dir: dir, Name: "go", Args: []string{"test", "-run", "^$", "-bench=.", "./..."}, Env: env})
}

func (t *Toolchain) generator(ctx context.Context, app *config.AppConfig, env []string, step generatorStep) error {
	args := []string{step.name, "--config", app.Path}
	if step.out != nil {
		args = append(args, "--out", app.Resolve(step.out(app)))
	}

	t.logger.Debug("generator step", zap.String("step", step.name))
	err := t.runner.Run(ctx, Cmd{Dir: app.Dir(), Name: app.Generator.Command, Args: args, Env: env})
	if err != nil {
		return fmt.Errorf("generator step %s: %w", step.name, err)
	}
	return nil
}

func (t *Toolchain) compose(app *config.AppConfig, env []string, args ...string) Cmd {
	full := []string{"compose", "-f", app.Resolve(app.Docker.ComposeFile), "-p", app.Docker.Project}
	return Cmd{Dir: app.Dir(), Name: app.Docker.Command, Args: append(full, args...), Env: env}
}

func (t *Toolchain) vertexDir(app *config.AppConfig) (string, error) {
	dir := app.Resolve(filepath.Join(app.Output.DataVertex, "pkg", "vertex"))
	ok, err := afero.DirExists(t.fs, dir)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("data vertex package not found at %s", dir)
	}
	return dir, nil
}

// environ returns the process environment extended with the project's .env
// file and PROXIMA_PROJECT.
func (t *Toolchain) environ(app *config.AppConfig) ([]string, error) {
	env := os.Environ()

	dotenv := filepath.Join(app.Dir(), ".env")
	f, err := t.fs.Open(dotenv)
	switch {
	case err == nil:
		defer f.Close()
		vars, err := godotenv.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", dotenv, err)
		}
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			env = append(env, k+"="+vars[k])
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to open %s: %w", dotenv, err)
	}

	return append(env, "PROXIMA_PROJECT="+app.Name), nil
}
