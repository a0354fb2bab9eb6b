// Package parentsearch finds the nearest ancestor directory that contains a
// given relative path.
package parentsearch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("file not found")

// NotFoundError reports that no ancestor of Start, root included, contains Target.
type NotFoundError struct {
	Start  string
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recursive parent search: %s not found from %s", e.Target, e.Start)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PathResolutionError reports that the starting directory could not be
// canonicalized.
type PathResolutionError struct {
	Path string
	Err  error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve path: %s - %v", e.Path, e.Err)
}

func (e *PathResolutionError) Unwrap() error { return e.Err }

// Finder walks upward from a directory looking for a target path.
type Finder struct {
	exists func(path string) bool
	getwd  func() (string, error)
	logger *zap.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger logs every candidate at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) { f.logger = logger }
}

// WithExists replaces the existence test. The default follows symlinks.
func WithExists(exists func(path string) bool) Option {
	return func(f *Finder) { f.exists = exists }
}

// WithWorkingDir resolves relative start paths against dir instead of the
// process working directory.
func WithWorkingDir(dir string) Option {
	return func(f *Finder) {
		f.getwd = func() (string, error) { return dir, nil }
	}
}

// New creates a Finder.
func New(opts ...Option) *Finder {
	f := &Finder{
		exists: pathExists,
		getwd:  os.Getwd,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

var defaultFinder = New()

// Search looks for target starting at start with the default Finder.
func Search(start, target string) (string, error) {
	return defaultFinder.Search(context.Background(), start, target)
}

// SearchPath splits path into its directory and base name and searches for
// the base name starting at the directory.
func SearchPath(path string) (string, error) {
	return defaultFinder.SearchPath(context.Background(), path)
}

// SearchPath is the single-argument form of Search: path is split with Split.
func (f *Finder) SearchPath(ctx context.Context, path string) (string, error) {
	start, target := Split(path)
	return f.Search(ctx, start, target)
}

// Split separates path into the directory to start from and the name to look
// for. Trailing separators are ignored, so "a/.config/" splits into "a" and
// ".config".
func Split(path string) (start, target string) {
	trimmed := path
	minLen := len(filepath.VolumeName(path)) + 1
	for len(trimmed) > minLen && os.IsPathSeparator(trimmed[len(trimmed)-1]) {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return filepath.Dir(trimmed), filepath.Base(trimmed)
}

// Search returns the nearest candidate start/target, start/../target, ...
// that exists, after resolving start to a canonical absolute path. start and
// target are used literally; no dirname/basename split happens here.
func (f *Finder) Search(ctx context.Context, start, target string) (string, error) {
	dir, err := f.resolve(start)
	if err != nil {
		return "", err
	}
	target = filepath.Clean(target)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := filepath.Join(dir, target)
		if f.exists(candidate) {
			f.logger.Debug("found", zap.String("path", candidate))
			return candidate, nil
		}
		f.logger.Debug("not found", zap.String("path", candidate))

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", &NotFoundError{Start: start, Target: target}
		}
		dir = parent
	}
}

func (f *Finder) resolve(start string) (string, error) {
	dir := start
	if !filepath.IsAbs(dir) {
		cwd, err := f.getwd()
		if err != nil {
			return "", &PathResolutionError{Path: start, Err: err}
		}
		dir = filepath.Join(cwd, dir)
	}

	resolved, err := filepath.EvalSymlinks(filepath.Clean(dir))
	if err != nil {
		return "", &PathResolutionError{Path: start, Err: err}
	}
	return resolved, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
