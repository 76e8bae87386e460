package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/pybootstrap/internal/config"
	"github.com/shinji-kodama/pybootstrap/internal/installer"
	"github.com/shinji-kodama/pybootstrap/internal/platform"
	"github.com/shinji-kodama/pybootstrap/internal/project"
	"github.com/shinji-kodama/pybootstrap/internal/runner"
)

// runInstall resolves the project, loads settings and runs the installer.
// Setup errors are returned as plain errors; step failures come back as
// *model.CLIError after the installer has reported them.
func runInstall(ctx context.Context, flags *rootFlags, out io.Writer, logger *log.Logger) error {
	root, err := resolveProjectRoot(flags.projectDir)
	if err != nil {
		return err
	}
	logger.Debug("project root", "path", root)

	configPath := flags.configPath
	if configPath == "" {
		configPath = config.Find(root)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	meta, err := project.Load(root)
	if err != nil {
		return err
	}
	if meta.Name == "" {
		logger.Debug("no project name found", "file", project.FileName)
	}

	layout := platform.Current()
	if desc, err := platform.Describe(ctx); err == nil {
		logger.Debug("host", "platform", desc, "layout", layout.ID)
	}

	inst := installer.New(installer.Options{
		Config:      cfg,
		ProjectRoot: root,
		Project:     meta,
		Layout:      layout,
		Runner:      runner.NewExecRunner(),
		Out:         out,
		Logger:      logger,
	})
	return inst.Run(ctx)
}

// resolveProjectRoot returns the absolute project directory, defaulting to
// the current directory.
func resolveProjectRoot(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", abs)
	}
	return abs, nil
}
