// Package installer drives the fixed installation sequence:
//
//  1. Detect the interpreter and check the version
//  2. Create the virtual environment
//  3. Upgrade pip and install the project in editable mode
//  4. Print activation and run instructions
//
// Each step carries an explicit model.Severity. A soft failure prints a
// warning and the sequence continues; a hard failure stops the run with a
// *model.CLIError carrying model.ExitGeneralError. An interrupt at any
// point ends the run with model.ErrCancelled.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/pybootstrap/internal/config"
	"github.com/shinji-kodama/pybootstrap/internal/console"
	"github.com/shinji-kodama/pybootstrap/internal/interpreter"
	"github.com/shinji-kodama/pybootstrap/internal/model"
	"github.com/shinji-kodama/pybootstrap/internal/platform"
	"github.com/shinji-kodama/pybootstrap/internal/project"
	"github.com/shinji-kodama/pybootstrap/internal/runner"
	"github.com/shinji-kodama/pybootstrap/internal/venv"
)

// totalStages counts the completion stage too.
const totalStages = 4

// Options configures an Installer.
type Options struct {
	// Config holds validated settings.
	Config config.Config

	// ProjectRoot is the absolute path of the project to install.
	ProjectRoot string

	// Project is the project's metadata. Nil means unknown.
	Project *project.Metadata

	// Layout is the platform layout. Zero value means platform.Current().
	Layout platform.Layout

	// Runner executes external commands.
	Runner runner.Runner

	// Out receives progress output.
	Out io.Writer

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger

	// LookPath resolves the launcher when none is configured. Nil means
	// exec.LookPath.
	LookPath func(string) (string, error)
}

// Installer runs the installation sequence once.
type Installer struct {
	cfg      config.Config
	project  *project.Metadata
	layout   platform.Layout
	detector *interpreter.Detector
	venv     *venv.Manager
	printer  *console.Printer
	logger   *log.Logger

	ec            model.ExecutionContext
	minimum       interpreter.Version
	versionOutput string
}

// New creates an Installer from opts.
func New(opts Options) *Installer {
	layout := opts.Layout
	if layout.ID == "" {
		layout = platform.Current()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	meta := opts.Project
	if meta == nil {
		meta = &project.Metadata{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	cfg := opts.Config

	minimum := cfg.MinimumVersion()
	if lower, ok := interpreter.ParseRequiresPython(meta.RequiresPython); ok {
		minimum = interpreter.Max(minimum, lower)
		logger.Debug("requires-python lower bound", "requires-python", meta.RequiresPython, "minimum", minimum)
	}

	launcher := strings.TrimSpace(cfg.Launcher)
	if launcher == "" {
		lookPath := opts.LookPath
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		var found bool
		launcher, found = interpreter.ResolveLauncher(layout.Launchers, lookPath)
		logger.Debug("resolved launcher", "launcher", launcher, "found", found, "searched", layout.Launchers)
	}

	return &Installer{
		cfg:     cfg,
		project: meta,
		layout:  layout,
		detector: interpreter.NewDetector(opts.Runner, cfg.Candidates, cfg.DefaultInterpreter,
			cfg.Timeouts.Probe.D(), cfg.Timeouts.Version.D()),
		venv:    venv.NewManager(opts.Runner, layout, cfg.Timeouts.Install.D()),
		printer: console.New(out),
		logger:  logger,
		ec: model.ExecutionContext{
			Launcher:    launcher,
			ProjectRoot: opts.ProjectRoot,
			VenvPath:    cfg.VenvPath(opts.ProjectRoot),
			Platform:    layout.ID,
		},
		minimum: minimum,
	}
}

// Context returns a copy of the execution context as it stands.
func (i *Installer) Context() model.ExecutionContext {
	return i.ec
}

// step is one action within a stage.
type step struct {
	// name is shown in progress and failure lines.
	name string

	severity model.Severity

	// announce prints "⏳ name..." before and "✅ name done" after.
	announce bool

	// skip, when it returns true, replaces the step with its message.
	skip func() (string, bool)

	run func(ctx context.Context) error

	// warning is printed after a soft failure. Empty means the error
	// text is printed instead.
	warning string
}

type stage struct {
	glyph string
	title string
	steps []step
}

func (i *Installer) stages() []stage {
	return []stage{
		{
			glyph: "📋",
			title: "Detect Python interpreter",
			steps: []step{
				{name: "Detect interpreter", severity: model.SeveritySoft, run: i.detect},
				{name: "Query interpreter version", severity: model.SeveritySoft, run: i.queryVersion},
				{name: "Check interpreter version", severity: model.SeverityHard, run: i.checkVersion},
			},
		},
		{
			glyph: "📦",
			title: "Create virtual environment",
			steps: []step{
				{
					name:     "Create virtual environment",
					severity: model.SeverityHard,
					announce: true,
					skip:     i.venvExists,
					run:      i.createEnv,
				},
			},
		},
		{
			glyph: "🔧",
			title: "Install dependencies",
			steps: []step{
				{
					name:     "Upgrade pip",
					severity: model.SeveritySoft,
					announce: true,
					run:      i.upgradePip,
					warning:  "pip upgrade failed, continuing with the installation...",
				},
				{
					name:     "Install " + i.projectLabel(),
					severity: model.SeverityHard,
					announce: true,
					run:      i.installProject,
				},
			},
		},
	}
}

// Run executes the sequence. It returns nil on success, model.ErrCancelled
// when ctx is cancelled, and a *model.CLIError on a hard failure.
func (i *Installer) Run(ctx context.Context) error {
	i.printer.Banner(fmt.Sprintf("🐍 %s one-step install", i.projectLabel()))
	i.logger.Debug("starting installation",
		"root", i.ec.ProjectRoot, "venv", i.ec.VenvPath, "platform", i.ec.Platform, "minimum", i.minimum)

	for n, st := range i.stages() {
		i.printer.Stage(st.glyph, n+1, totalStages, st.title)
		for _, s := range st.steps {
			if err := i.runStep(ctx, s); err != nil {
				return err
			}
		}
		i.printer.Blank()
	}

	i.printer.Completion(totalStages, totalStages, i.instructions())
	return nil
}

// runStep applies the step's severity to its outcome.
func (i *Installer) runStep(ctx context.Context, s step) error {
	if ctx.Err() != nil {
		return model.ErrCancelled
	}
	if s.skip != nil {
		if msg, ok := s.skip(); ok {
			i.printer.Skip("%s", msg)
			return nil
		}
	}
	if s.announce {
		i.printer.Progress(s.name)
	}

	err := s.run(ctx)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return model.ErrCancelled
	}
	if err == nil {
		if s.announce {
			i.printer.Done(s.name)
		}
		return nil
	}

	i.logger.Debug("step failed", "step", s.name, "severity", s.severity, "err", err)
	switch s.severity {
	case model.SeveritySoft:
		if s.announce {
			i.printer.Fail(s.name, failureReason(err))
		}
		if s.warning != "" {
			i.printer.Warn("%s", s.warning)
		} else {
			i.printer.Warn("%s", err.Error())
		}
		return nil
	default:
		i.printer.Fail(s.name, failureReason(err))
		return model.WrapCLIError(model.ExitGeneralError, s.name+" failed", err)
	}
}

// failureReason extracts the most useful text from a step error.
func failureReason(err error) string {
	var cmdErr *runner.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Result.FailureReason()
	}
	return err.Error()
}

func (i *Installer) projectLabel() string {
	if i.project.Name != "" {
		return i.project.Name
	}
	return "project"
}
