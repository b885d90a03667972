package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// releaseFileRe matches archived release fragments such as v1.4.inc or
// v0.24.1.rst.
var releaseFileRe = regexp.MustCompile(`^v(\d+(?:\.\d+){1,2})\.(inc|rst)$`)

// Release is one archived release fragment discovered in the changes
// directory.
type Release struct {
	Version *semver.Version
	Path    string
}

// Index is the catalog of fragments in a changes directory: the working
// fragment for the next release plus every archived release, newest
// first.
type Index struct {
	Dir       string
	DevelPath string
	Releases  []Release
}

// VersionNotFoundError reports a lookup for a release that has no
// fragment in the changes directory.
type VersionNotFoundError struct {
	Version   string
	Available []string
}

func (e *VersionNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no release notes found for version %s (no archived releases yet)", e.Version)
	}
	return fmt.Sprintf("no release notes found for version %s (available: %s)", e.Version, strings.Join(e.Available, ", "))
}

// ScanDir catalogs the changes directory. develFile is the file name of
// the working fragment (for example devel.inc); it is recorded when
// present but its absence is not an error, so callers can distinguish a
// missing fragment from a missing directory.
func ScanDir(dir, develFile string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read changes directory %s: %w", dir, err)
	}

	index := &Index{Dir: dir}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == develFile {
			index.DevelPath = filepath.Join(dir, name)
			continue
		}
		m := releaseFileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		version, err := semver.NewVersion(m[1])
		if err != nil {
			// Name looked like a release file but is not a version we
			// understand; leave it alone rather than guessing.
			continue
		}
		index.Releases = append(index.Releases, Release{
			Version: version,
			Path:    filepath.Join(dir, name),
		})
	}

	sort.Slice(index.Releases, func(i, j int) bool {
		return index.Releases[i].Version.GreaterThan(index.Releases[j].Version)
	})
	return index, nil
}

// Latest returns the newest archived release, or nil when none exist.
func (ix *Index) Latest() *Release {
	if len(ix.Releases) == 0 {
		return nil
	}
	return &ix.Releases[0]
}

// Find locates the archived release for a version string. The lookup
// tolerates a leading "v" and padding differences (1.4 matches v1.4.0).
func (ix *Index) Find(version string) (*Release, error) {
	want, err := semver.NewVersion(NormalizeVersion(version))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", version, err)
	}
	for i := range ix.Releases {
		if ix.Releases[i].Version.Equal(want) {
			return &ix.Releases[i], nil
		}
	}
	return nil, &VersionNotFoundError{Version: version, Available: ix.AvailableVersions()}
}

// AvailableVersions lists the archived versions newest first.
func (ix *Index) AvailableVersions() []string {
	versions := make([]string, 0, len(ix.Releases))
	for _, release := range ix.Releases {
		versions = append(versions, release.Version.Original())
	}
	return versions
}

// NormalizeVersion strips whitespace and an optional leading "v" so user
// input like "v1.4" can be compared against archived versions.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// ReleaseFileName returns the archive file name for a version, keeping
// the major.minor form used for zero-patch releases.
func ReleaseFileName(version *semver.Version, ext string) string {
	base := fmt.Sprintf("v%d.%d", version.Major(), version.Minor())
	if version.Patch() != 0 {
		base = fmt.Sprintf("%s.%d", base, version.Patch())
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
