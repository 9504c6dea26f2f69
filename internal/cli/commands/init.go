package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/proxima-one/proxima-cli/internal/cli/ui"
	"github.com/proxima-one/proxima-cli/internal/lifecycle"
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Replaced in tests.
var (
	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	askProjectName = func(defaultName string) (string, error) {
		var name string
		prompt := &survey.Input{
			Message: "Project name:",
			Default: defaultName,
		}
		err := survey.AskOne(prompt, &name, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validateProjectName(s)
		}))
		return name, err
	}
)

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// The pattern already rules out dots, so ".." cannot get through.
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

// NewInitCommand creates the init command
func NewInitCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new Proxima project",
		Long: `Initialize a new Proxima project in the project directory.

Writes .proxima.yml together with a starter app-config.yml, GraphQL schema,
abi/ directory and .gitignore. Existing files are left untouched, and init
refuses to run where a project is already initialized.

If no project name is provided and the terminal is interactive, you will be
prompted for one. Otherwise the directory name is used.

Examples:
  proxima init my-indexer
  proxima init -C ./my-indexer`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			name, err := resolveProjectName(args, a.root)
			if err != nil {
				return err
			}

			if err := a.orch.Init(cmd.Context(), name); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.WriteSuccess(out, messagesFor(lifecycle.Init).done, a.noColor)

			infoColor := color.New(color.FgCyan)
			if a.noColor {
				infoColor.DisableColor()
			}
			infoColor.Fprintf(out, "\nNext steps:\n")
			fmt.Fprintf(out, "  1. Describe your data in schema/schema.graphql\n")
			fmt.Fprintf(out, "  2. Add your contracts to app-config.yml and abi/\n")
			fmt.Fprintf(out, "  3. proxima gen\n")
			return nil
		},
	}
}

// resolveProjectName takes the name from args, then from a prompt, then
// from the directory name.
func resolveProjectName(args []string, root string) (string, error) {
	var name string
	switch {
	case len(args) > 0:
		name = args[0]
	case isInteractive():
		promptColor := color.New(color.FgYellow)
		promptColor.Println("No project name given.")
		answer, err := askProjectName(filepath.Base(root))
		if err != nil {
			return "", fmt.Errorf("failed to read project name: %w", err)
		}
		name = answer
	default:
		name = filepath.Base(root)
	}

	name = strings.TrimSpace(name)
	if err := validateProjectName(name); err != nil {
		return "", err
	}
	return name, nil
}
