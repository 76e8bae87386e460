// Package runner executes external commands for the installer.
//
// Every invocation is bounded by its own timeout. A timeout, a start error
// and a non-zero exit all produce a CommandResult whose Succeeded method
// returns false; callers decide what that failure means for their step.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shinji-kodama/pybootstrap/internal/model"
)

// WaitDelay is how long Run waits for output to drain after the child
// has been killed.
const WaitDelay = 2 * time.Second

// Command describes a single external command invocation.
type Command struct {
	// Name is the executable, resolved through PATH when it has no
	// path separator.
	Name string

	// Args are passed to the executable verbatim.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Timeout bounds the run. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// Capture stores stdout/stderr in the result instead of streaming
	// them to the terminal.
	Capture bool
}

// Runner runs external commands. The installer depends on this interface
// so tests can substitute scripted results.
type Runner interface {
	Run(ctx context.Context, cmd Command) model.CommandResult
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stdout and Stderr receive output of non-captured commands.
	// They default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner attached to the process's stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes cmd and waits for it to finish or time out.
//
// The child is killed when either the timeout expires or ctx is
// cancelled. TimedOut is set only for the former, so callers can tell an
// interrupt from a slow command by checking ctx.Err().
func (r *ExecRunner) Run(ctx context.Context, cmd Command) model.CommandResult {
	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the command line is assembled from configuration, not user input
	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	setProcessGroup(c)
	// Output pipes held open by surviving grandchildren must not block
	// Wait past the deadline.
	c.WaitDelay = WaitDelay

	var stdout, stderr bytes.Buffer
	if cmd.Capture {
		c.Stdout = &stdout
		c.Stderr = &stderr
	} else {
		c.Stdout = r.stdout()
		c.Stderr = r.stderr()
	}

	start := time.Now()
	err := c.Run()
	result := model.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	// The deadline check comes first: a killed child reports an ExitError
	// too, and the timeout is the more useful explanation.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		result.TimedOut = true
		result.ExitCode = -1
		result.Err = runCtx.Err()
		return result
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			result.ExitCode = exitErr.ExitCode()
			return result
		}
		result.ExitCode = -1
		result.Err = err
	}
	return result
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// CommandError reports a command that did not succeed.
type CommandError struct {
	// Line is the command as shown to the user.
	Line string

	// Result is the failed result.
	Result model.CommandResult
}

// Error satisfies the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Line, e.Result.FailureReason())
}

// Unwrap returns the start or wait error, if any.
func (e *CommandError) Unwrap() error {
	return e.Result.Err
}

// Check runs cmd and converts an unsuccessful result into a
// *CommandError. A cancelled ctx is returned as ctx.Err() so callers can
// tell an interrupt from a failure.
func Check(ctx context.Context, r Runner, cmd Command) error {
	res := r.Run(ctx, cmd)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if res.Succeeded() {
		return nil
	}
	return &CommandError{Line: cmd.String(), Result: res}
}

// String renders the command line for messages.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}
