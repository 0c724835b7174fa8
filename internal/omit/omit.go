package omit

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPattern indicates an omit entry is not a valid path glob.
	ErrInvalidPattern = errors.New("omit patterns must be valid path globs")
)

// Set is an immutable collection of path globs excluding files from
// coverage statistics. Patterns and candidate paths are relative to the
// directory holding the rc file; exclusion is a set test, so pattern order
// never affects matching.
type Set struct {
	patterns []string
}

// NewSet validates the patterns and builds a Set. The original order is
// retained so the configuration can be serialized back unchanged.
func NewSet(patterns []string) (*Set, error) {
	cleaned := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			return nil, ErrInvalidPattern
		}
		if _, err := path.Match(normalize(pattern), "probe"); err != nil {
			return nil, ErrInvalidPattern
		}
		cleaned = append(cleaned, pattern)
	}
	return &Set{patterns: cleaned}, nil
}

// Patterns returns a defensive copy of the patterns in their original order.
func (s *Set) Patterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Len reports the number of patterns in the set.
func (s *Set) Len() int {
	return len(s.patterns)
}

// Match reports whether the relative path rel is excluded by the set.
// Three forms of match are recognized:
//   - a plain glob matched against the whole path (path.Match semantics),
//   - a pattern ending in "/*", which also covers the entire subtree of
//     the named directory,
//   - the pattern "*" (written "./*" in rc files), which covers every path
//     that does not escape the base directory via "..".
func (s *Set) Match(rel string) bool {
	rel = normalize(rel)
	for _, pattern := range s.patterns {
		if matchOne(normalize(pattern), rel) {
			return true
		}
	}
	return false
}

func matchOne(pattern, rel string) bool {
	if ok, err := path.Match(pattern, rel); err == nil && ok {
		return true
	}
	if pattern == "*" {
		return !strings.HasPrefix(rel, "../")
	}
	if dir, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(rel, dir+"/")
	}
	return false
}

// normalize converts OS separators to slashes and strips a leading "./"
// so that "./foo.py" and "foo.py" describe the same file.
func normalize(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if p == "." {
		return ""
	}
	return p
}
