package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Cmd is an external process invocation.
type Cmd struct {
	Dir  string
	Name string
	Args []string
	Env  []string
}

func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external processes and waits for them to finish.
type Runner interface {
	// Run streams the process output to the user.
	Run(ctx context.Context, cmd Cmd) error
	// Output captures stdout and returns it trimmed.
	Output(ctx context.Context, cmd Cmd) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger
}

// NewExecRunner returns a runner attached to the process stdio.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

func (r *ExecRunner) command(ctx context.Context, cmd Cmd) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	r.Logger.Debug("exec", zap.Stringer("cmd", cmd), zap.String("dir", cmd.Dir))
	return c
}

func (r *ExecRunner) Run(ctx context.Context, cmd Cmd) error {
	c := r.command(ctx, cmd)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func (r *ExecRunner) Output(ctx context.Context, cmd Cmd) (string, error) {
	var stderr bytes.Buffer
	c := r.command(ctx, cmd)
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", cmd, err, msg)
		}
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return strings.TrimSpace(string(out)), nil
}
