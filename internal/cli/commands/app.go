package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/proxima-one/proxima-cli/internal/history"
	"github.com/proxima-one/proxima-cli/internal/lifecycle"
	"github.com/proxima-one/proxima-cli/internal/orchestrator"
	"github.com/proxima-one/proxima-cli/internal/project"
	"github.com/proxima-one/proxima-cli/internal/toolchain"
)

// Replaced in tests.
var (
	appFs = afero.NewOsFs()

	newCollaborators = func(fsys afero.Fs, logger *zap.Logger) orchestrator.Collaborators {
		return toolchain.New(fsys, toolchain.NewExecRunner(logger), logger)
	}
)

// app wires the orchestrator for a single command invocation.
type app struct {
	root    string
	journal *history.Journal
	orch    *orchestrator.Orchestrator
	logger  *zap.Logger
	noColor bool
}

// newApp resolves the project root from --dir. When discover is set the
// directory tree is searched upwards for an existing .proxima.yml; init
// always works in the directory it was given.
func newApp(cmd *cobra.Command, opts *globalOptions, discover bool) (*app, error) {
	logger := newLogger(opts.verbose, cmd.ErrOrStderr())

	root, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	if discover {
		if root, err = project.FindRoot(appFs, root); err != nil {
			return nil, err
		}
	}
	logger.Debug("project root", zap.String("root", root))

	store := project.NewStore(appFs, root)
	journal := history.New(appFs, history.Path(root))
	out := cmd.OutOrStdout()
	orch := orchestrator.New(store, newCollaborators(appFs, logger),
		orchestrator.WithJournal(journal),
		orchestrator.WithLogger(logger),
		orchestrator.WithStartHook(func(c lifecycle.Command) {
			if msg := messagesFor(c).start; msg != "" {
				color.New(color.FgGreen).Fprintln(out, msg)
			}
		}),
	)

	return &app{
		root:    root,
		journal: journal,
		orch:    orch,
		logger:  logger,
		noColor: opts.noColor,
	}, nil
}

func (a *app) Close() {
	if err := a.journal.Close(); err != nil {
		a.logger.Warn("failed to close history", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newLogger logs to w: everything at debug level with --verbose, otherwise
// only warnings and errors.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	if verbose {
		encCfg.TimeKey = "T"
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
