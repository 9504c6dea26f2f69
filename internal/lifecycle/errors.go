package lifecycle

import "fmt"

// DenyReason classifies a guard denial so callers can word it.
type DenyReason int

const (
	// ReasonNotReady: the project has not reached the required stage yet.
	ReasonNotReady DenyReason = iota
	// ReasonAlreadyInitialized: init ran against an existing project.
	ReasonAlreadyInitialized
	// ReasonAlreadyAdvanced: the project moved past the stage the command
	// needs and there is no way back.
	ReasonAlreadyAdvanced
)

// GuardDeniedError reports a command refused by the lifecycle guard.
type GuardDeniedError struct {
	Command  Command
	State    State
	Required State
	Reason   DenyReason
	// Cause is set when the denial was derived from another error, such as
	// a missing .proxima.yml.
	Cause error
}

func (e *GuardDeniedError) Error() string {
	switch e.Reason {
	case ReasonAlreadyInitialized:
		return "A Proxima project is already initialized here."
	case ReasonAlreadyAdvanced:
		return fmt.Sprintf("This Proxima project is already %s; %s only runs on a project that is %s.",
			e.State.verb(), e.Command, e.Required.verb())
	default:
		return fmt.Sprintf("A Proxima project needs to be %s here.", e.Required.verb())
	}
}

func (e *GuardDeniedError) Unwrap() error {
	return e.Cause
}
