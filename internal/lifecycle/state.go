// Package lifecycle models the project lifecycle of a Proxima application:
// the ordered set of states recorded in .proxima.yml, the CLI commands that
// act on a project, and the guard deciding which command may run in which
// state.
//
// The lifecycle is a one-way pipeline:
//
//	Uninitialized → Initialized → Generated → Built
//
// init, gen and build each advance the project by one stage. run, test,
// deploy and benchmark require a built project and leave the state alone.
package lifecycle

import (
	"fmt"
	"strings"
)

// State is the lifecycle stage recorded for a project.
type State int

const (
	// Uninitialized is the state of a directory without a .proxima.yml record.
	Uninitialized State = iota
	// Initialized means init scaffolded the project and created the record.
	Initialized
	// Generated means gen produced handlers, clients and database config.
	Generated
	// Built means build produced the deployable application and compose file.
	Built
)

var stateNames = [...]string{
	Uninitialized: "Uninitialized",
	Initialized:   "Initialized",
	Generated:     "Generated",
	Built:         "Built",
}

// States returns every lifecycle state in pipeline order.
func States() []State {
	return []State{Uninitialized, Initialized, Generated, Built}
}

// String returns the name persisted in the state field of .proxima.yml.
func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Valid reports whether s is one of the known lifecycle states.
func (s State) Valid() bool {
	return s >= Uninitialized && s <= Built
}

// ParseState converts a persisted state name into a State. Matching is
// case-insensitive and the empty string maps to Uninitialized.
func ParseState(name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Uninitialized, nil
	}
	for i, n := range stateNames {
		if strings.EqualFold(n, name) {
			return State(i), nil
		}
	}
	return Uninitialized, fmt.Errorf("unknown lifecycle state %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid lifecycle state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// verb is the past participle used in user messages ("needs to be built").
func (s State) verb() string {
	return strings.ToLower(s.String())
}
