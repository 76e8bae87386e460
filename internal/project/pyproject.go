// Package project reads the metadata of the Python project being
// installed from its pyproject.toml.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the metadata file looked up in the project root.
const FileName = "pyproject.toml"

// Metadata is the subset of the [project] table the installer uses.
type Metadata struct {
	// Name is the distribution name.
	Name string

	// RequiresPython is the raw requires-python specifier, e.g. ">=3.10".
	RequiresPython string

	// Scripts maps console script names to their entry points.
	Scripts map[string]string
}

type pyproject struct {
	Project struct {
		Name           string            `toml:"name"`
		RequiresPython string            `toml:"requires-python"`
		Scripts        map[string]string `toml:"scripts"`
	} `toml:"project"`
}

// Load reads <root>/pyproject.toml. A missing file yields an empty
// Metadata and no error; pip reports unusable projects itself.
func Load(root string) (*Metadata, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path) // #nosec G304 -- path is the project being installed
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Metadata{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes pyproject.toml content.
func Parse(data []byte) (*Metadata, error) {
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return &Metadata{
		Name:           doc.Project.Name,
		RequiresPython: doc.Project.RequiresPython,
		Scripts:        doc.Project.Scripts,
	}, nil
}

// normalizeRegex matches runs of separators collapsed by PEP 503
// normalization.
var normalizeRegex = regexp.MustCompile(`[-_.]+`)

// EntryPoint picks the command users run after installation: the first
// console script in name order, else the normalized project name. It
// returns "" when neither is known.
func (m *Metadata) EntryPoint() string {
	if m == nil {
		return ""
	}
	if len(m.Scripts) > 0 {
		names := make([]string, 0, len(m.Scripts))
		for name := range m.Scripts {
			names = append(names, name)
		}
		sort.Strings(names)
		return names[0]
	}
	return normalizeRegex.ReplaceAllString(strings.ToLower(m.Name), "-")
}
