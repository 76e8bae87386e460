package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExecutionContext carries the values every installer step needs.
//
// It is created at the start of a run. Interpreter is filled in by the
// detection step; after that the context is treated as read-only.
type ExecutionContext struct {
	// Interpreter is the command chosen by detection (e.g. "python3").
	// It is used to create the virtual environment.
	Interpreter string

	// Launcher is the interpreter whose version gates the installation.
	// It is resolved independently of Interpreter.
	Launcher string

	// ProjectRoot is the absolute path of the project being installed.
	ProjectRoot string

	// VenvPath is the absolute path of the virtual environment directory.
	VenvPath string

	// Platform is the host platform identifier (runtime.GOOS style).
	Platform string
}

// Validate checks the invariant that an interpreter has been selected
// before any environment operation runs.
func (c *ExecutionContext) Validate() error {
	if strings.TrimSpace(c.Interpreter) == "" {
		return errors.New("no interpreter command selected")
	}
	if c.VenvPath == "" {
		return errors.New("virtual environment path is empty")
	}
	return nil
}

// CommandResult is the outcome of a single external command invocation.
type CommandResult struct {
	// ExitCode is the process exit status. It is -1 when the process
	// never started or was killed.
	ExitCode int

	// Stdout and Stderr hold captured output. Both are empty when the
	// command ran attached to the terminal.
	Stdout string
	Stderr string

	// TimedOut reports whether the per-command timeout expired.
	TimedOut bool

	// Err is the start or wait error, if any.
	Err error

	// Duration is the wall time the command took.
	Duration time.Duration
}

// Succeeded reports whether the command exited 0 within its timeout.
// Timeouts and non-zero exits are treated the same way.
func (r CommandResult) Succeeded() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// Output returns stdout, falling back to stderr when stdout is empty.
// Some interpreters print their version on stderr.
func (r CommandResult) Output() string {
	if out := strings.TrimSpace(r.Stdout); out != "" {
		return out
	}
	return strings.TrimSpace(r.Stderr)
}

// FailureReason describes why the command did not succeed, for use in
// progress output. It returns an empty string on success.
func (r CommandResult) FailureReason() string {
	switch {
	case r.Succeeded():
		return ""
	case r.TimedOut:
		return "timed out"
	case r.Err != nil && r.ExitCode < 0:
		return r.Err.Error()
	}
	if stderr := strings.TrimSpace(r.Stderr); stderr != "" {
		return stderr
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}

// Severity classifies what a step failure does to the overall run.
type Severity int

const (
	// SeveritySoft failures are reported and the run continues.
	SeveritySoft Severity = iota

	// SeverityHard failures terminate the run with ExitGeneralError.
	SeverityHard
)

// String returns the string representation of Severity.
func (s Severity) String() string {
	switch s {
	case SeveritySoft:
		return "soft"
	case SeverityHard:
		return "hard"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ExitCode defines the process exit codes of the installer.
type ExitCode int

const (
	// ExitSuccess indicates the installation completed, or the user
	// cancelled it.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates a hard failure: unsupported runtime
	// version, environment creation failure, install failure, or an
	// unexpected error.
	ExitGeneralError ExitCode = 1
)

// ErrCancelled is returned when the run was interrupted by the user.
// The CLI maps it to ExitSuccess.
var ErrCancelled = errors.New("installation cancelled")

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate step failures into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
