package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/pybootstrap/internal/config"
	"github.com/shinji-kodama/pybootstrap/internal/model"
)

// fakePython is a stand-in interpreter: it answers --version and builds a
// minimal environment whose pip logs its arguments.
const fakePython = `#!/bin/sh
PATH=/usr/bin:/bin
export PATH
if [ "$1" = "--version" ]; then echo "Python 3.12.1"; exit 0; fi
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
  mkdir -p "$3/bin"
  printf '#!/bin/sh\necho "$@" >> "%s/pip.log"\nexit %s\n' "$3" "${FAKE_PIP_EXIT:-0}" > "$3/bin/pip"
  chmod +x "$3/bin/pip"
  exit 0
fi
exit 1
`

// setupProject creates a project directory with a pyproject.toml and a
// config pointing every interpreter setting at the fake interpreter.
func setupProject(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	t.Setenv(config.LauncherEnv, "")

	root := t.TempDir()
	python := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(python, []byte(fakePython), 0o755))

	writePyproject(t, root)

	cfg := fmt.Sprintf("candidates: [%q]\ndefault_interpreter: %q\nlauncher: %q\nrun_args: [serve]\n", python, python, python)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pybootstrap.yaml"), []byte(cfg), 0o644))
	return root
}

func writePyproject(t *testing.T, root string) {
	t.Helper()
	pyproject := "[project]\nname = \"demo-tool\"\nrequires-python = \">=3.10\"\n\n[project.scripts]\ndemo = \"demo.cli:main\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(pyproject), 0o644))
}

func runRoot(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	code := run(cmd, &out)
	return code, out.String(), errOut.String()
}

// TestRoot_EndToEnd runs the full sequence against the fake interpreter.
func TestRoot_EndToEnd(t *testing.T) {
	root := setupProject(t)

	code, out, _ := runRoot(t, "--project-dir", root)
	require.Equal(t, 0, code, out)

	assert.Contains(t, out, "Installation complete!")
	assert.Contains(t, out, "demo serve")

	pipLog, err := os.ReadFile(filepath.Join(root, ".venv", "pip.log"))
	require.NoError(t, err)
	assert.Equal(t, "install --upgrade pip\ninstall -e "+root+"\n", string(pipLog))

	// A second run reuses the environment.
	code, out, _ = runRoot(t, "--project-dir", root)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "already exists, skipping creation")
}

// TestRoot_OnlyPython3OnPath runs with built-in defaults on a host whose
// PATH holds python3 but no plain python.
func TestRoot_OnlyPython3OnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	t.Setenv(config.LauncherEnv, "")

	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python3"), []byte(fakePython), 0o755))
	t.Setenv("PATH", bin)

	root := t.TempDir()
	writePyproject(t, root)

	code, out, _ := runRoot(t, "--project-dir", root)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "✅ Using command: python3")
	assert.NotContains(t, out, "❌")
	assert.Contains(t, out, "Installation complete!")
}

// TestRoot_InstallFailureExitsOne verifies the hard failure exit code when
// the editable install fails.
func TestRoot_InstallFailureExitsOne(t *testing.T) {
	root := setupProject(t)
	t.Setenv("FAKE_PIP_EXIT", "1")

	code, out, _ := runRoot(t, "--project-dir", root)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Upgrade pip failed")
	assert.Contains(t, out, "Install demo-tool failed")
	assert.NotContains(t, out, "Installation complete!")
}

func TestRoot_BadConfig(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version_check: nobody\n"), 0o644))

	code, out, _ := runRoot(t, "--project-dir", root, "--config", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "💥 Installation failed: load config:")
}

func TestRoot_RejectsArguments(t *testing.T) {
	code, out, _ := runRoot(t, "extra")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown command")
}

func TestRoot_MissingProjectDir(t *testing.T) {
	code, out, _ := runRoot(t, "--project-dir", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "project directory")
}

func TestRoot_Version(t *testing.T) {
	Version = "1.2.3"
	defer func() { Version = "dev" }()

	code, out, _ := runRoot(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "1.2.3")
}

// TestExitCode covers the mapping from run errors to process exit codes.
func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		text string
	}{
		{"success", nil, 0, ""},
		{"cancelled", model.ErrCancelled, 0, "👋 Installation cancelled"},
		{"context cancelled", fmt.Errorf("probe: %w", context.Canceled), 0, "👋 Installation cancelled"},
		{"hard failure", model.WrapCLIError(model.ExitGeneralError, "Install failed", errors.New("exit status 1")), 1, ""},
		{"unexpected", errors.New("disk on fire"), 1, "💥 Installation failed: disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.code, exitCode(tt.err, &out))
			if tt.text == "" {
				assert.Empty(t, out.String())
			} else {
				assert.Contains(t, out.String(), tt.text)
			}
		})
	}
}

func TestResolveProjectRoot(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveProjectRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = resolveProjectRoot(file)
	assert.Error(t, err)

	cwd, err := resolveProjectRoot("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cwd))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
