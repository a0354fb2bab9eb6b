package listing

import (
	"context"
	"io/fs"
)

// Kind is the resolved type of a directory entry.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Metadata is what a probe learns about a single path.
type Metadata struct {
	Kind Kind
	Perm fs.FileMode
	UID  uint32
	GID  uint32

	// HasPermissions is false on platforms without a permission-bit model.
	HasPermissions bool
	// HasOwnership is false when UID and GID could not be read.
	HasOwnership bool
}

// Prober inspects a path, following symbolic links.
// A dangling link or an unreadable path yields an error.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (Metadata, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, path string) (Metadata, error) {
	return f(ctx, path)
}

// StatProber probes paths with stat(2).
type StatProber struct{}

// Probe stats path.
func (StatProber) Probe(ctx context.Context, path string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	return statPath(path)
}

func kindFromMode(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindUnknown
	}
}
