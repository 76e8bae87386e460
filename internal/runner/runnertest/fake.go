// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shinji-kodama/pybootstrap/internal/model"
	"github.com/shinji-kodama/pybootstrap/internal/runner"
)

// ErrNotScripted is the start error reported for commands without a
// scripted response when the Fake has no Default.
var ErrNotScripted = errors.New("executable file not found in $PATH")

// Fake returns scripted results keyed by the command line
// ("name arg1 arg2") and records every call.
type Fake struct {
	mu sync.Mutex

	// Responses maps a command line to its result.
	Responses map[string]model.CommandResult

	// Hooks run before the response for a command line is returned.
	// Tests use them to cancel the context or create files mid-run.
	Hooks map[string]func()

	// Default is returned for unscripted commands. When nil, unscripted
	// commands fail to start.
	Default *model.CommandResult

	calls []runner.Command
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		Responses: make(map[string]model.CommandResult),
		Hooks:     make(map[string]func()),
	}
}

// Line renders a command the way Fake keys its responses.
func Line(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// On scripts the result for a command line and returns f for chaining.
func (f *Fake) On(line string, res model.CommandResult) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[line] = res
	return f
}

// OnSuccess scripts a zero exit with the given stdout.
func (f *Fake) OnSuccess(line, stdout string) *Fake {
	return f.On(line, model.CommandResult{Stdout: stdout})
}

// OnExit scripts a non-zero exit with the given stderr.
func (f *Fake) OnExit(line string, code int, stderr string) *Fake {
	return f.On(line, model.CommandResult{ExitCode: code, Stderr: stderr})
}

// OnTimeout scripts a timeout.
func (f *Fake) OnTimeout(line string) *Fake {
	return f.On(line, model.CommandResult{ExitCode: -1, TimedOut: true, Err: context.DeadlineExceeded})
}

// Before registers a hook for a command line and returns f for chaining.
func (f *Fake) Before(line string, hook func()) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Hooks[line] = hook
	return f
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, cmd runner.Command) model.CommandResult {
	line := Line(cmd.Name, cmd.Args...)

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	hook := f.Hooks[line]
	res, ok := f.Responses[line]
	def := f.Default
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if ctx.Err() != nil {
		return model.CommandResult{ExitCode: -1, Err: ctx.Err()}
	}
	if ok {
		return res
	}
	if def != nil {
		return *def
	}
	return model.CommandResult{ExitCode: -1, Err: ErrNotScripted}
}

// Calls returns the recorded commands in call order.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]runner.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the recorded command lines in call order.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, Line(c.Name, c.Args...))
	}
	return out
}
