package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shinji-kodama/pybootstrap/internal/config"
	"github.com/shinji-kodama/pybootstrap/internal/console"
	"github.com/shinji-kodama/pybootstrap/internal/interpreter"
)

// ErrVersionTooOld is returned when the checked interpreter is older than
// the minimum version.
var ErrVersionTooOld = errors.New("interpreter version too old")

// detect selects the interpreter. A miss is reported as a soft failure
// but the fallback is still recorded, so later steps always have one.
func (i *Installer) detect(ctx context.Context) error {
	cmd, err := i.detector.Detect(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	i.ec.Interpreter = cmd
	return err
}

// queryVersion prints the chosen command and its reported version.
func (i *Installer) queryVersion(ctx context.Context) error {
	i.printer.OK("Using command: %s", i.ec.Interpreter)

	out, err := i.detector.QueryVersion(ctx, i.ec.Interpreter)
	if err != nil {
		return err
	}
	i.versionOutput = out
	if out == "" {
		out = "(no version output)"
	}
	i.printer.OK("%s", out)
	return nil
}

// checkVersion enforces the minimum version.
//
// By default the launcher is checked rather than the detected interpreter,
// even when the two differ; version_check: interpreter changes that.
func (i *Installer) checkVersion(ctx context.Context) error {
	target := i.ec.Launcher
	output := ""
	if i.cfg.VersionCheck == config.CheckInterpreter {
		target = i.ec.Interpreter
		output = i.versionOutput
	} else if target != i.ec.Interpreter {
		i.logger.Debug("version check uses the launcher, not the detected interpreter",
			"launcher", target, "interpreter", i.ec.Interpreter)
	}

	if output == "" {
		out, err := i.detector.QueryVersion(ctx, target)
		if err != nil {
			return fmt.Errorf("cannot determine %s version: %w", target, err)
		}
		output = out
	}

	v, err := interpreter.ParseVersion(output)
	if err != nil {
		return fmt.Errorf("cannot determine %s version: %w", target, err)
	}
	if !v.AtLeast(i.minimum) {
		return fmt.Errorf("%w: Python %s or newer is required, %s is %s",
			ErrVersionTooOld, i.minimum.Short(), target, v)
	}
	if target != i.ec.Interpreter {
		i.printer.Hint("Version check: %s is %s", target, v)
	}
	i.logger.Debug("version check passed", "command", target, "version", v, "minimum", i.minimum)
	return nil
}

func (i *Installer) venvExists() (string, bool) {
	if i.venv.Exists(i.ec.VenvPath) {
		return "Virtual environment already exists, skipping creation", true
	}
	return "", false
}

func (i *Installer) createEnv(ctx context.Context) error {
	return i.venv.Create(ctx, &i.ec)
}

func (i *Installer) upgradePip(ctx context.Context) error {
	return i.venv.UpgradePip(ctx, i.ec.VenvPath)
}

func (i *Installer) installProject(ctx context.Context) error {
	return i.venv.InstallEditable(ctx, i.ec.VenvPath, i.ec.ProjectRoot)
}

// instructions builds the completion block for the host platform.
func (i *Installer) instructions() console.Instructions {
	entry := i.cfg.EntryPoint
	if entry == "" {
		entry = i.project.EntryPoint()
	}

	in := console.Instructions{
		Shell:    i.layout.ShellName,
		Activate: i.layout.ActivateCommand(i.ec.VenvPath),
	}
	if entry == "" {
		in.Direct = i.layout.CommandLine(i.layout.Executable(i.ec.VenvPath, "python"))
		return in
	}
	in.Run = i.layout.CommandLine(entry, i.cfg.RunArgs...)
	in.Direct = i.layout.CommandLine(i.layout.Executable(i.ec.VenvPath, entry), i.cfg.RunArgs...)
	return in
}
