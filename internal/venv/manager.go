// Package venv manages the project's virtual environment.
//
// This package wraps the interpreter's "-m venv" module and the
// environment's own pip executable. Paths inside the environment come from
// the platform Layout, so nothing here branches on the host OS.
//
// Errors from external commands are returned as *runner.CommandError, or
// as ctx.Err() when the run was interrupted. Whether a failure is fatal is
// decided by the caller.
package venv

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shinji-kodama/pybootstrap/internal/model"
	"github.com/shinji-kodama/pybootstrap/internal/platform"
	"github.com/shinji-kodama/pybootstrap/internal/runner"
)

// Manager provides virtual environment operations by invoking external
// tools through a runner.
type Manager struct {
	runner runner.Runner
	layout platform.Layout

	// Timeout bounds each environment or install command.
	Timeout time.Duration
}

// NewManager creates a Manager for the given platform layout.
func NewManager(r runner.Runner, layout platform.Layout, timeout time.Duration) *Manager {
	return &Manager{runner: r, layout: layout, Timeout: timeout}
}

// Exists reports whether anything already occupies venvPath. An existing
// path is never recreated or inspected further.
func (m *Manager) Exists(venvPath string) bool {
	_, err := os.Stat(venvPath)
	return err == nil
}

// Create runs "<interpreter> -m venv <venvPath>".
//
// The interpreter must already be selected; Create refuses to run with an
// incomplete ExecutionContext. Output streams to the terminal.
func (m *Manager) Create(ctx context.Context, ec *model.ExecutionContext) error {
	if err := ec.Validate(); err != nil {
		return fmt.Errorf("cannot create environment: %w", err)
	}
	return runner.Check(ctx, m.runner, runner.Command{
		Name:    ec.Interpreter,
		Args:    []string{"-m", "venv", ec.VenvPath},
		Dir:     ec.ProjectRoot,
		Timeout: m.Timeout,
	})
}

// Pip returns the path of the environment's pip executable.
func (m *Manager) Pip(venvPath string) string {
	return m.layout.Pip(venvPath)
}

// UpgradePip runs "<pip> install --upgrade pip" inside the environment.
func (m *Manager) UpgradePip(ctx context.Context, venvPath string) error {
	return runner.Check(ctx, m.runner, runner.Command{
		Name:    m.Pip(venvPath),
		Args:    []string{"install", "--upgrade", "pip"},
		Timeout: m.Timeout,
		Capture: true,
	})
}

// InstallEditable runs "<pip> install -e <projectRoot>" so source changes
// in projectRoot take effect without reinstalling.
func (m *Manager) InstallEditable(ctx context.Context, venvPath, projectRoot string) error {
	return runner.Check(ctx, m.runner, runner.Command{
		Name:    m.Pip(venvPath),
		Args:    []string{"install", "-e", projectRoot},
		Dir:     projectRoot,
		Timeout: m.Timeout,
		Capture: true,
	})
}
