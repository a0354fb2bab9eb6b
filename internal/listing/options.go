package listing

import (
	"fmt"
	"strings"
	"time"
)

// FilterMode selects how one axis of a listing is filtered.
type FilterMode int

const (
	// Unfiltered leaves the axis alone.
	Unfiltered FilterMode = iota
	// RequireTrue keeps entries for which the axis holds.
	RequireTrue
	// RequireFalse drops entries for which the axis holds.
	RequireFalse
)

// String returns the flag spelling of the mode, "any" when unfiltered.
func (m FilterMode) String() string {
	switch m {
	case RequireTrue:
		return "yes"
	case RequireFalse:
		return "no"
	default:
		return "any"
	}
}

// ParseFilterMode parses "yes"/"no" (and their boolean spellings).
// An empty string is Unfiltered.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unfiltered, nil
	case "yes", "y", "true", "1":
		return RequireTrue, nil
	case "no", "n", "false", "0":
		return RequireFalse, nil
	}
	return Unfiltered, fmt.Errorf("invalid filter mode: %q (want yes or no)", s)
}

// Options controls a listing.
type Options struct {
	// Slash appends a trailing "/" to directory names.
	Slash bool
	// Files filters regular files.
	Files FilterMode
	// Directories filters directories.
	Directories FilterMode
	// Exe filters regular files by executability.
	Exe FilterMode
	// ProbeTimeout bounds each metadata probe. Zero means no bound.
	ProbeTimeout time.Duration
}

// NeedsProbe reports whether the options require per-entry metadata.
func (o Options) NeedsProbe() bool {
	return o.Slash || o.Files != Unfiltered || o.Directories != Unfiltered || o.Exe != Unfiltered
}
