package orchestrator

import (
	"fmt"

	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

// CollaboratorError wraps a failure of the work delegated for a command.
// The lifecycle state is not advanced when it is returned.
type CollaboratorError struct {
	Command lifecycle.Command
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// StateNotRecordedError reports a command whose work completed but whose
// next state could not be written. Err is the underlying
// *project.ConfigWriteError.
type StateNotRecordedError struct {
	Command   lifecycle.Command
	Recorded  lifecycle.State
	Completed lifecycle.State
	Err       error
}

func (e *StateNotRecordedError) Error() string {
	return fmt.Sprintf("%s completed but the project is still recorded as %s: %v", e.Command, e.Recorded, e.Err)
}

func (e *StateNotRecordedError) Unwrap() error {
	return e.Err
}
