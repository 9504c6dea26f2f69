package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/proxima-one/proxima-cli/internal/cli/config"
	"github.com/proxima-one/proxima-cli/internal/cli/ui"
	"github.com/proxima-one/proxima-cli/internal/lifecycle"
	"github.com/proxima-one/proxima-cli/internal/orchestrator"
	"github.com/proxima-one/proxima-cli/internal/project"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitError            = 1
	ExitDenied           = 2
	ExitCommandFailed    = 3
	ExitStateNotRecorded = 4
)

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		denied *lifecycle.GuardDeniedError
		failed *orchestrator.CollaboratorError
		werr   *project.ConfigWriteError
	)
	switch {
	case errors.As(err, &denied):
		return ExitDenied
	case errors.As(err, &failed):
		return ExitCommandFailed
	case errors.As(err, &werr):
		return ExitStateNotRecorded
	default:
		return ExitError
	}
}

// renderError writes err to w in the form matching its kind.
func renderError(w io.Writer, err error, noColor bool) {
	var (
		denied    *lifecycle.GuardDeniedError
		failed    *orchestrator.CollaboratorError
		notStored *orchestrator.StateNotRecordedError
		werr      *project.ConfigWriteError
	)

	switch {
	case errors.As(err, &denied):
		switch denied.Reason {
		case lifecycle.ReasonAlreadyInitialized:
			fmt.Fprint(w, ui.AlreadyInitializedError(denied.Error(), noColor))
		case lifecycle.ReasonAlreadyAdvanced:
			fmt.Fprint(w, ui.AlreadyAdvancedError(denied.Error(), noColor))
		default:
			fmt.Fprint(w, ui.NotReadyError(denied.Error(), missingStep(denied.Required), noColor))
		}
	case errors.As(err, &failed):
		fmt.Fprint(w, ui.CommandFailedError(failed.Command.String(), failed.Err.Error(), noColor))
	case errors.As(err, &notStored):
		fmt.Fprint(w, ui.StateNotRecordedError(notStored.Err.Error(),
			notStored.Recorded.String(), notStored.Completed.String(), noColor))
	case errors.As(err, &werr):
		ui.WriteError(w, ui.ErrorOptions{
			Level:       ui.ErrorLevelError,
			Context:     "STATE NOT RECORDED",
			Problem:     werr.Error(),
			Consequence: "The previous .proxima.yml was left untouched.",
			NoColor:     noColor,
		})
	case errors.Is(err, config.ErrNotFound), errors.Is(err, config.ErrInvalid):
		fmt.Fprint(w, ui.ConfigError(err.Error(), noColor))
	default:
		ui.WriteError(w, ui.ErrorOptions{
			Level:   ui.ErrorLevelError,
			Problem: err.Error(),
			HelpCommands: []string{
				"Get help: proxima --help",
			},
			NoColor: noColor,
		})
	}
}

// missingStep names the command that brings a project to state s.
func missingStep(s lifecycle.State) string {
	for _, c := range lifecycle.Commands() {
		req, err := lifecycle.Requirement(c)
		if err == nil && req != s && lifecycle.Next(c, req) == s {
			return c.String()
		}
	}
	return ""
}
