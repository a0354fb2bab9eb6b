package listing

import "fmt"

// DirectoryReadError reports that the base listing of a directory failed.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("failed to read directory: %s - %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error { return e.Err }

// MetadataProbeError reports that a single entry could not be probed.
// It never fails a listing; the entry is left out instead.
type MetadataProbeError struct {
	Path string
	Err  error
}

func (e *MetadataProbeError) Error() string {
	return fmt.Sprintf("failed to probe %s: %v", e.Path, e.Err)
}

func (e *MetadataProbeError) Unwrap() error { return e.Err }
