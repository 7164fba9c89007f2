// Package version computes the identifiers a release writes into the build
// files: the symbolic version ID, the packed numeric tag and the bumped
// module version counters.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/sokinpui/fwrel/internal/errors"
)

// Tag is the dual encoding of a semantic version used in firmware headers:
// a symbolic identifier like 070RC2 and a packed value like 0x07000002.
// Computed once per release and passed by value.
type Tag struct {
	Major   uint64
	Minor   uint64
	Patch   uint64
	Ordinal uint64 // first numeric prerelease tag, 0 if none
	ID      string
	Packed  uint32
}

// Parse parses a strict semantic version string.
func Parse(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrValidation, "%q: %v", s, err)
	}
	return v, nil
}

// ValidateSuccessor checks that next is strictly greater than current.
func ValidateSuccessor(next, current *semver.Version) error {
	if !next.GreaterThan(current) {
		return errors.Wrapf(errors.ErrValidation,
			"new version %s must be greater than current %s", next, current)
	}
	return nil
}

// NewTag derives the symbolic and packed encodings of v.
//
// The symbolic ID concatenates the major, then minor and patch (each padded
// to two digits when either exceeds 9), then every prerelease tag: string
// tags upper-cased, numeric tags in decimal. The first numeric tag is kept
// as the prerelease ordinal. The packed value spells the components as
// decimal digits read as hexadecimal, one digit each for major and minor,
// two for patch and four for the prerelease ordinal: 0.7.0-rc.2 packs as
// 0x07000002.
func NewTag(v *semver.Version) (Tag, error) {
	t := Tag{Major: v.Major(), Minor: v.Minor(), Patch: v.Patch()}

	var id strings.Builder
	id.WriteString(strconv.FormatUint(t.Major, 10))
	if t.Minor > 9 || t.Patch > 9 {
		fmt.Fprintf(&id, "%02d%02d", t.Minor, t.Patch)
	} else {
		fmt.Fprintf(&id, "%d%d", t.Minor, t.Patch)
	}

	ordinalSet := false
	if pre := v.Prerelease(); pre != "" {
		for _, tag := range strings.Split(pre, ".") {
			if n, err := strconv.ParseUint(tag, 10, 64); err == nil {
				id.WriteString(strconv.FormatUint(n, 10))
				if !ordinalSet {
					t.Ordinal = n
					ordinalSet = true
				}
				continue
			}
			id.WriteString(strings.ToUpper(tag))
		}
	}
	t.ID = id.String()

	if t.Major > 9 || t.Minor > 9 || t.Patch > 99 || t.Ordinal > 9999 {
		return Tag{}, errors.Wrapf(errors.ErrValidation,
			"%s does not fit the packed encoding", v)
	}
	digits := fmt.Sprintf("%d%d%02d%04d", t.Major, t.Minor, t.Patch, t.Ordinal)
	packed, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Tag{}, errors.Wrapf(errors.ErrValidation, "pack %s: %v", v, err)
	}
	t.Packed = uint32(packed)
	return t, nil
}

// Hex renders the packed value the way the system header spells it.
func (t Tag) Hex() string {
	return fmt.Sprintf("0x%08X", t.Packed)
}

// DecodePacked recovers major/minor/patch/ordinal from a packed tag value.
// Every hex digit must read as a decimal digit.
func DecodePacked(packed uint32) (major, minor, patch, ordinal uint64, err error) {
	s := fmt.Sprintf("%08x", packed)
	parts := make([]uint64, 4)
	for i, field := range []string{s[0:1], s[1:2], s[2:4], s[4:8]} {
		n, perr := strconv.ParseUint(field, 10, 64)
		if perr != nil {
			return 0, 0, 0, 0, errors.Wrapf(errors.ErrParse,
				"packed value 0x%08X is not a version tag", packed)
		}
		parts[i] = n
	}
	return parts[0], parts[1], parts[2], parts[3], nil
}

// BumpCounter bumps a module version counter for the transition from current
// to next. The increment unit is 10000 for a major bump, 100 for a minor
// bump and 1 otherwise; the counter is rounded up to the next multiple of
// the unit strictly above its current value.
func BumpCounter(next, current *semver.Version, raw string) (int, error) {
	counter, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrParse, "module version counter %q", raw)
	}

	unit := 1
	switch {
	case next.Major() > current.Major():
		unit = 10000
	case next.Minor() > current.Minor():
		unit = 100
	}
	return (counter/unit + 1) * unit, nil
}
