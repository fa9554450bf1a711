package model

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern accepts "v1", "1.2", "v1.2.3" and "v1.2.3-rc.1". Build
// markers such as "+run2368-attempt1" do not match.
var versionPattern = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-(.+))?$`)

// ParsedVersion is the comparable form of a version tag
type ParsedVersion struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// IsPrerelease reports whether the version carries a prerelease suffix
func (v *ParsedVersion) IsPrerelease() bool {
	return v.Prerelease != ""
}

// ParseVersion extracts a ParsedVersion from tag text. It returns nil for
// tags without a structured version.
func ParseVersion(tag string) *ParsedVersion {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(tag))
	if m == nil {
		return nil
	}

	var nums [3]int
	for i, s := range m[1:4] {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// digits overflowing int are not a usable version
			return nil
		}
		nums[i] = n
	}

	return &ParsedVersion{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: m[4],
	}
}

// CompareVersionsDesc orders two parsed versions newest first. A release
// sorts before a prerelease of the same numeric version.
func CompareVersionsDesc(a, b *ParsedVersion) int {
	if c := cmp.Compare(b.Major, a.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Minor, a.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Patch, a.Patch); c != 0 {
		return c
	}

	switch {
	case a.Prerelease == b.Prerelease:
		return 0
	case a.Prerelease == "":
		return -1
	case b.Prerelease == "":
		return 1
	default:
		return strings.Compare(b.Prerelease, a.Prerelease)
	}
}

// CompareTagsDesc is a total order over tag text, newest first. Tags with
// a structured version always sort before tags without one; two
// unstructured tags fall back to descending string order.
func CompareTagsDesc(a, b string) int {
	va, vb := ParseVersion(a), ParseVersion(b)

	switch {
	case va != nil && vb != nil:
		return CompareVersionsDesc(va, vb)
	case va != nil:
		return -1
	case vb != nil:
		return 1
	default:
		return strings.Compare(b, a)
	}
}
