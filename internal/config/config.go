// Package config holds the installer settings.
//
// Settings start from Default() and are overlaid by an optional file in
// the project root. YAML files are decoded with gopkg.in/yaml.v3; JSON
// files may contain comments and trailing commas (JSONC) and are cleaned
// with github.com/tidwall/jsonc before decoding.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/pybootstrap/internal/interpreter"
)

// LauncherEnv overrides the launcher command when set.
const LauncherEnv = "PYBOOTSTRAP_LAUNCHER"

// Version check targets.
const (
	// CheckLauncher validates the launcher's version (default).
	CheckLauncher = "launcher"

	// CheckInterpreter validates the detected interpreter's version.
	CheckInterpreter = "interpreter"
)

// FileNames are searched in the project root, in order.
var FileNames = []string{
	".pybootstrap.yaml",
	".pybootstrap.yml",
	".pybootstrap.jsonc",
	".pybootstrap.json",
}

// Config describes the installer settings.
type Config struct {
	// Candidates are the interpreter commands probed in order.
	Candidates []string `yaml:"candidates" json:"candidates"`

	// DefaultInterpreter is assumed when no candidate answers.
	DefaultInterpreter string `yaml:"default_interpreter" json:"default_interpreter"`

	// Launcher is the interpreter whose version gates installation.
	// Empty means the first of the platform's launchers found on PATH.
	Launcher string `yaml:"launcher" json:"launcher"`

	// MinVersion is the lowest accepted interpreter version.
	MinVersion string `yaml:"min_version" json:"min_version"`

	// VersionCheck selects which interpreter MinVersion applies to.
	VersionCheck string `yaml:"version_check" json:"version_check"`

	// VenvDir is the environment directory, relative to the project root.
	VenvDir string `yaml:"venv_dir" json:"venv_dir"`

	// EntryPoint is the command shown in the completion instructions.
	// Empty means it is taken from pyproject.toml.
	EntryPoint string `yaml:"entry_point" json:"entry_point"`

	// RunArgs are appended to EntryPoint in the instructions.
	RunArgs []string `yaml:"run_args" json:"run_args"`

	Timeouts Timeouts `yaml:"timeouts" json:"timeouts"`
}

// Timeouts bound the external commands.
type Timeouts struct {
	// Probe bounds each interpreter candidate probe.
	Probe Duration `yaml:"probe" json:"probe"`

	// Version bounds version queries.
	Version Duration `yaml:"version" json:"version"`

	// Install bounds environment creation and pip commands.
	Install Duration `yaml:"install" json:"install"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Candidates:         []string{"python", "python3", "py"},
		DefaultInterpreter: "python",
		MinVersion:         "3.10",
		VersionCheck:       CheckLauncher,
		VenvDir:            ".venv",
		Timeouts: Timeouts{
			Probe:   Duration(5 * time.Second),
			Version: Duration(10 * time.Second),
			Install: Duration(300 * time.Second),
		},
	}
}

// Find returns the first config file present in root, or "" when there
// is none.
func Find(root string) string {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads the config file at path over Default(). An empty path
// returns the defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, errors.New("config file is empty")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv applies environment overrides using getenv (os.Getenv in
// production).
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(LauncherEnv)); v != "" {
		c.Launcher = v
	}
}

// Validate checks that the configuration can drive an installation.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Candidates) == 0 {
		errs = append(errs, errors.New("candidates must not be empty"))
	}
	if strings.TrimSpace(c.DefaultInterpreter) == "" {
		errs = append(errs, errors.New("default_interpreter must not be empty"))
	}
	if _, err := interpreter.ParseVersion(c.MinVersion); err != nil {
		errs = append(errs, fmt.Errorf("min_version: %w", err))
	}
	if c.VersionCheck != CheckLauncher && c.VersionCheck != CheckInterpreter {
		errs = append(errs, fmt.Errorf("invalid version_check %q (valid: %s, %s)", c.VersionCheck, CheckLauncher, CheckInterpreter))
	}
	if strings.TrimSpace(c.VenvDir) == "" {
		errs = append(errs, errors.New("venv_dir must not be empty"))
	}
	for name, d := range map[string]Duration{
		"probe":   c.Timeouts.Probe,
		"version": c.Timeouts.Version,
		"install": c.Timeouts.Install,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timeouts.%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}

// MinimumVersion returns MinVersion parsed. It must only be called on a
// validated Config.
func (c *Config) MinimumVersion() interpreter.Version {
	v, _ := interpreter.ParseVersion(c.MinVersion)
	return v
}

// VenvPath resolves VenvDir against the project root.
func (c *Config) VenvPath(projectRoot string) string {
	if filepath.IsAbs(c.VenvDir) {
		return filepath.Clean(c.VenvDir)
	}
	return filepath.Join(projectRoot, c.VenvDir)
}

// Duration is a time.Duration that decodes from "5s"-style strings or from
// a bare number of seconds.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// String returns the time.Duration formatting.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText accepts "1m30s" or "90".
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if secs, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML decodes a scalar node through UnmarshalText.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// UnmarshalJSON decodes a JSON string or number.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}
