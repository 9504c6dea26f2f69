package lifecycle

import (
	"fmt"
)

// transition describes the state a command requires and the state it
// leaves behind when it succeeds.
type transition struct {
	requires State
	yields   State
}

func rule(c Command) (transition, bool) {
	switch c {
	case Init:
		return transition{requires: Uninitialized, yields: Initialized}, true
	case Gen:
		return transition{requires: Initialized, yields: Generated}, true
	case Build:
		return transition{requires: Generated, yields: Built}, true
	case Run, Test, Deploy, Benchmark:
		return transition{requires: Built, yields: Built}, true
	default:
		return transition{}, false
	}
}

// Requirement returns the state a project must be in for c to run.
func Requirement(c Command) (State, error) {
	t, ok := rule(c)
	if !ok {
		return Uninitialized, fmt.Errorf("no lifecycle rule for %s", c)
	}
	return t.requires, nil
}

// Next returns the state recorded after c completes successfully from s.
// Commands that do not advance the lifecycle return s unchanged.
func Next(c Command, s State) State {
	t, ok := rule(c)
	if !ok || s != t.requires {
		return s
	}
	return t.yields
}

// CanRun reports whether c may run on a project in state s.
func CanRun(c Command, s State) bool {
	t, ok := rule(c)
	return ok && s == t.requires
}

// Allowed lists the commands the guard accepts in state s.
func Allowed(s State) []Command {
	var out []Command
	for _, c := range Commands() {
		if CanRun(c, s) {
			out = append(out, c)
		}
	}
	return out
}

// Check returns nil when c may run in state s and a *GuardDeniedError
// describing why not otherwise.
func Check(c Command, s State) error {
	t, ok := rule(c)
	if !ok {
		return fmt.Errorf("no lifecycle rule for %s", c)
	}
	if s == t.requires {
		return nil
	}

	denied := &GuardDeniedError{Command: c, State: s, Required: t.requires}
	switch {
	case c == Init:
		denied.Reason = ReasonAlreadyInitialized
	case s < t.requires:
		denied.Reason = ReasonNotReady
	default:
		denied.Reason = ReasonAlreadyAdvanced
	}
	return denied
}
