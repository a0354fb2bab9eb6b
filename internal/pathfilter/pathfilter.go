// Package pathfilter decides which relative paths a copy should visit.
package pathfilter

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/taigrr/fskit/internal/types"
)

// PathFilter filters relative paths by ignore and include glob patterns.
type PathFilter struct {
	ignoredPatterns  []string
	includedPatterns []string
}

// New creates a new PathFilter with the given configuration.
// A nil config allows everything.
func New(config *types.PathFilterConfig) *PathFilter {
	pf := &PathFilter{}
	if config != nil {
		pf.ignoredPatterns = normalizeAll(config.IgnoredPatterns)
		pf.includedPatterns = normalizeAll(config.IncludedPatterns)
	}
	return pf
}

func normalizeAll(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first malformed pattern.
func (pf *PathFilter) Validate() error {
	for _, p := range append(append([]string{}, pf.ignoredPatterns...), pf.includedPatterns...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern: %s", p)
		}
	}
	return nil
}

// matches tests a slash-separated path against pattern. Patterns without a
// slash are matched against the last path component only.
func matches(pattern, p string) bool {
	if !strings.Contains(pattern, "/") {
		ok, _ := doublestar.Match(pattern, path.Base(p))
		return ok
	}
	ok, _ := doublestar.Match(pattern, p)
	return ok
}

// IsAllowedEntry checks a slash-separated relative path. Ignore patterns apply
// to files and directories; include patterns only restrict files so that
// directories can still be descended into.
func (pf *PathFilter) IsAllowedEntry(p string, isDir bool) bool {
	normalized := strings.ReplaceAll(p, "\\", "/")

	for _, pattern := range pf.ignoredPatterns {
		if matches(pattern, normalized) {
			return false
		}
	}

	if isDir || len(pf.includedPatterns) == 0 {
		return true
	}

	for _, pattern := range pf.includedPatterns {
		if matches(pattern, normalized) {
			return true
		}
	}
	return false
}
