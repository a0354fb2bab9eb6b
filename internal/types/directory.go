package types

type (
	// DirectoryListing contains the filtered entries of a directory.
	DirectoryListing struct {
		Path    string   `json:"path"`
		Entries []string `json:"entries"`
		Count   int      `json:"count"`
	}

	// PathFilterConfig contains configuration for the path filter.
	PathFilterConfig struct {
		IgnoredPatterns  []string `json:"ignoredPatterns,omitempty" yaml:"ignored_patterns"`
		IncludedPatterns []string `json:"includedPatterns,omitempty" yaml:"included_patterns"`
	}
)
