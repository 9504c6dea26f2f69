package lifecycle

import "fmt"

// Command is a CLI command gated by the project lifecycle.
type Command int

const (
	Init Command = iota
	Gen
	Build
	Run
	Test
	Deploy
	Benchmark
)

var commandNames = [...]string{
	Init:      "init",
	Gen:       "gen",
	Build:     "build",
	Run:       "run",
	Test:      "test",
	Deploy:    "deploy",
	Benchmark: "benchmark",
}

// Commands returns every gated command in pipeline order.
func Commands() []Command {
	return []Command{Init, Gen, Build, Run, Test, Deploy, Benchmark}
}

func (c Command) String() string {
	if c < Init || c > Benchmark {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// ParseCommand looks up a command by its CLI name.
func ParseCommand(name string) (Command, error) {
	for i, n := range commandNames {
		if n == name {
			return Command(i), nil
		}
	}
	return Init, fmt.Errorf("unknown command %q", name)
}
