package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with help commands
//
// Example output:
//
//	❌ NOT READY: A Proxima project needs to be generated here.
//
//	   → Check project state: proxima status
//	   → Generate the project: proxima gen
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// NotReadyError is shown when the guard refuses a command because an
// earlier stage has not run yet.
func NotReadyError(message, nextCommand string, noColor bool) string {
	help := []string{"Check project state: proxima status"}
	if nextCommand != "" {
		help = append(help, "Run the missing step: proxima "+nextCommand)
	}
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "NOT READY",
		Problem:      message,
		HelpCommands: help,
		NoColor:      noColor,
	})
}

// AlreadyInitializedError is shown when init finds an existing project.
func AlreadyInitializedError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Context: "ALREADY INITIALIZED",
		Problem: message,
		HelpCommands: []string{
			"Check project state: proxima status",
		},
		NoColor: noColor,
	})
}

// AlreadyAdvancedError is shown when a command targets a stage the project
// has already moved past.
func AlreadyAdvancedError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "NOT ALLOWED",
		Problem:     message,
		Consequence: "Lifecycle stages only move forward; there is no command to go back.",
		HelpCommands: []string{
			"Check project state: proxima status",
		},
		NoColor: noColor,
	})
}

// CommandFailedError is shown when the work behind a command failed.
func CommandFailedError(command, message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     strings.ToUpper(command) + " FAILED",
		Problem:     message,
		Consequence: "The project state was not changed.",
		HelpCommands: []string{
			"Review recent runs: proxima history",
			"Get help: proxima " + command + " --help",
		},
		NoColor: noColor,
	})
}

// StateNotRecordedError is shown when a command's work succeeded but the new
// state could not be written to .proxima.yml.
func StateNotRecordedError(message, recorded, completed string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "STATE NOT RECORDED",
		Problem: message,
		Consequence: fmt.Sprintf(
			"The work completed (%s) but .proxima.yml still records %s. Fix the file permissions and set `state: %s` by hand.",
			completed, recorded, completed),
		HelpCommands: []string{
			"Check project state: proxima status",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat app-config.yml",
			"Get help: proxima --help",
		},
		NoColor: noColor,
	})
}
