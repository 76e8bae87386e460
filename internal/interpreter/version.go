package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a Python release number. Pre-release tags are dropped.
type Version struct {
	Major int
	Minor int
	Patch int
}

// versionRegex matches the first dotted release number in a string such
// as "Python 3.12.1" or "3.13.0rc2".
var versionRegex = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts a Version from interpreter output or a version
// string like "3.10".
func ParseVersion(s string) (Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("no version number in %q", strings.TrimSpace(s))
	}
	parts := [3]int{}
	for i, field := range m[1:] {
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version number %q: %w", m[0], err)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Short returns "major.minor", or the full form when Patch is set.
func (v Version) Short() string {
	if v.Patch == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return v.String()
}

// Semver returns the canonical semver form ("v3.10.0") used for
// comparison.
func (v Version) Semver() string {
	return "v" + v.String()
}

// Compare returns -1, 0 or +1 as v is less than, equal to or greater
// than other.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.Semver(), other.Semver())
}

// AtLeast reports whether v >= minimum.
func (v Version) AtLeast(minimum Version) bool {
	return v.Compare(minimum) >= 0
}

// Max returns the greater of a and b.
func Max(a, b Version) Version {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}

// ParseRequiresPython returns the lower bound of a PEP 440 specifier set
// such as ">=3.10,<4". Only ">=", ">", "~=" and "==" clauses set a lower
// bound; ok is false when none is present.
func ParseRequiresPython(spec string) (Version, bool) {
	var (
		lower Version
		found bool
	)
	for _, clause := range strings.Split(spec, ",") {
		clause = strings.TrimSpace(clause)
		var rest string
		switch {
		case strings.HasPrefix(clause, ">="):
			rest = clause[2:]
		case strings.HasPrefix(clause, "~="):
			rest = clause[2:]
		case strings.HasPrefix(clause, "=="):
			rest = strings.TrimSuffix(clause[2:], ".*")
		case strings.HasPrefix(clause, ">"):
			rest = clause[1:]
		default:
			continue
		}
		v, err := ParseVersion(rest)
		if err != nil {
			continue
		}
		if !found || v.Compare(lower) > 0 {
			lower = v
			found = true
		}
	}
	return lower, found
}
