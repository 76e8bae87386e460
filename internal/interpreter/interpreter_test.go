package interpreter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/pybootstrap/internal/runner/runnertest"
)

func newTestDetector(f *runnertest.Fake) *Detector {
	return NewDetector(f, []string{"python", "python3", "py"}, "python", 5*time.Second, 10*time.Second)
}

// TestDetect_FirstResponderWins verifies that detection returns the first
// candidate that answers and stops probing after it.
func TestDetect_FirstResponderWins(t *testing.T) {
	f := runnertest.New().
		OnExit("python --version", 9009, "Python was not found").
		OnSuccess("python3 --version", "Python 3.12.1\n").
		OnSuccess("py --version", "Python 3.11.0\n")

	cmd, err := newTestDetector(f).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python3", cmd)
	assert.Equal(t, []string{"python --version", "python3 --version"}, f.Lines())

	for _, c := range f.Calls() {
		assert.Equal(t, 5*time.Second, c.Timeout, "probes use the probe timeout")
		assert.True(t, c.Capture)
	}
}

// TestDetect_AnySingleResponder checks every position in the candidate
// list: whichever single candidate answers is the one returned.
func TestDetect_AnySingleResponder(t *testing.T) {
	candidates := []string{"python", "python3", "py"}
	for _, responder := range candidates {
		t.Run(responder, func(t *testing.T) {
			f := runnertest.New().OnSuccess(responder+" --version", "Python 3.11.2")
			cmd, err := newTestDetector(f).Detect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, responder, cmd)
		})
	}
}

func TestDetect_TimeoutCountsAsMiss(t *testing.T) {
	f := runnertest.New().
		OnTimeout("python --version").
		OnSuccess("python3 --version", "Python 3.10.4")

	cmd, err := newTestDetector(f).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python3", cmd)
}

// TestDetect_Fallback verifies the soft failure when nothing answers.
func TestDetect_Fallback(t *testing.T) {
	f := runnertest.New()

	cmd, err := newTestDetector(f).Detect(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "python", cmd)
	assert.Len(t, f.Calls(), 3, "each candidate is probed exactly once")
}

func TestDetect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := runnertest.New().Before("python --version", cancel)

	_, err := newTestDetector(f).Detect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.Calls(), 1)
}

func TestQueryVersion(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		f := runnertest.New().OnSuccess("python3 --version", "Python 3.12.1\n")
		out, err := newTestDetector(f).QueryVersion(context.Background(), "python3")
		require.NoError(t, err)
		assert.Equal(t, "Python 3.12.1", out)
		assert.Equal(t, 10*time.Second, f.Calls()[0].Timeout)
	})

	t.Run("non-zero exit is tolerated", func(t *testing.T) {
		f := runnertest.New().OnExit("python --version", 9009, "Python was not found")
		out, err := newTestDetector(f).QueryVersion(context.Background(), "python")
		require.NoError(t, err)
		assert.Equal(t, "Python was not found", out)
	})

	t.Run("timeout is an error", func(t *testing.T) {
		f := runnertest.New().OnTimeout("python --version")
		_, err := newTestDetector(f).QueryVersion(context.Background(), "python")
		assert.Error(t, err)
	})

	t.Run("missing executable is an error", func(t *testing.T) {
		_, err := newTestDetector(runnertest.New()).QueryVersion(context.Background(), "python")
		assert.ErrorIs(t, err, runnertest.ErrNotScripted)
	})
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected Version
		hasError bool
	}{
		{"Python 3.12.1", Version{3, 12, 1}, false},
		{"Python 3.13.0rc2\n", Version{3, 13, 0}, false},
		{"3.10", Version{3, 10, 0}, false},
		{"Python 2.7.18", Version{2, 7, 18}, false},
		{"Python", Version{}, true},
		{"Python 99999999999999999999.1", Version{}, true},
		{"3.10.99999999999999999999", Version{}, true},
		{"", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	minimum := Version{3, 10, 0}
	assert.True(t, Version{3, 10, 0}.AtLeast(minimum))
	assert.True(t, Version{3, 12, 1}.AtLeast(minimum))
	assert.False(t, Version{3, 9, 18}.AtLeast(minimum))
	assert.False(t, Version{2, 7, 18}.AtLeast(minimum))
	assert.Equal(t, "v3.10.0", minimum.Semver())
	assert.Equal(t, Version{3, 11, 0}, Max(minimum, Version{3, 11, 0}))
	assert.Equal(t, minimum, Max(minimum, Version{3, 8, 0}))
}

func TestVersion_Short(t *testing.T) {
	assert.Equal(t, "3.10", Version{3, 10, 0}.Short())
	assert.Equal(t, "3.10.4", Version{3, 10, 4}.Short())
}

// TestResolveLauncher checks that the first name found on PATH wins and
// that the first name is kept when none is found.
func TestResolveLauncher(t *testing.T) {
	onPath := func(names ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, n := range names {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("executable file not found in $PATH")
		}
	}

	tests := []struct {
		name   string
		look   func(string) (string, error)
		want   string
		wantOK bool
	}{
		{"only python3", onPath("python3"), "python3", true},
		{"only python", onPath("python"), "python", true},
		{"both", onPath("python", "python3"), "python3", true},
		{"neither", onPath(), "python3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveLauncher([]string{"python3", "python"}, tt.look)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}

	got, ok := ResolveLauncher(nil, onPath("python"))
	assert.Empty(t, got)
	assert.False(t, ok)
}

func TestParseRequiresPython(t *testing.T) {
	tests := []struct {
		spec  string
		want  Version
		found bool
	}{
		{">=3.10", Version{3, 10, 0}, true},
		{">=3.9, <4", Version{3, 9, 0}, true},
		{"~=3.11", Version{3, 11, 0}, true},
		{"==3.12.*", Version{3, 12, 0}, true},
		{">3.8,>=3.10", Version{3, 10, 0}, true},
		{"<4", Version{}, false},
		{"", Version{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, found := ParseRequiresPython(tt.spec)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
