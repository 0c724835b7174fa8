// Package profile reads line-coverage profiles produced by `go test
// -coverprofile` and reduces them to per-file statement totals keyed by
// paths relative to the configured source root.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/cover"
)

var (
	// ErrUnreadableProfile is returned when the profile file cannot be
	// opened or parsed.
	ErrUnreadableProfile = errors.New("coverage profile cannot be read")
)

// FileCoverage aggregates statement counts for a single file.
type FileCoverage struct {
	// Name is the file path relative to the source root where the profile
	// records it under that root, otherwise the name as recorded.
	Name       string
	Statements int
	Covered    int
}

// Read parses the profile at path and aggregates its blocks per file,
// sorted by name. Blocks with a non-zero execution count contribute their
// statements to Covered.
func Read(path, source string) ([]FileCoverage, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableProfile, err)
	}

	files := make([]FileCoverage, 0, len(profiles))
	for _, p := range profiles {
		fc := FileCoverage{Name: relativeName(p.FileName, source)}
		for _, block := range p.Blocks {
			fc.Statements += block.NumStmt
			if block.Count > 0 {
				fc.Covered += block.NumStmt
			}
		}
		files = append(files, fc)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// relativeName strips everything up to and including the first path segment
// equal to source. Profiles record files under their import path, so
// "github.com/acme/ase/io/ulm.go" with source "ase" becomes "io/ulm.go".
func relativeName(name, source string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments[:len(segments)-1] {
		if segment == source {
			return strings.Join(segments[i+1:], "/")
		}
	}
	return name
}
