// Package filesystem provides the directory creation, deletion, touch and
// copy operations of the toolkit.
package filesystem

import (
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// Service runs filesystem operations.
type Service struct {
	logger *zap.Logger
}

// New creates a Service. A nil logger discards output.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// DirMaker creates a directory and any missing parents.
type DirMaker interface {
	MkdirAll(path string, perm fs.FileMode) error
}

// Remover removes a path and everything below it.
type Remover interface {
	Lstat(path string) (fs.FileInfo, error)
	RemoveAll(path string) error
}

type osBackend struct{}

func (osBackend) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (osBackend) Lstat(path string) (fs.FileInfo, error) { return os.Lstat(path) }

func (osBackend) RemoveAll(path string) error { return os.RemoveAll(path) }

// EnsureOptions configures EnsurePath.
type EnsureOptions struct {
	// Mode is the permission of created directories before umask. Zero means 0o777.
	Mode fs.FileMode
	// Backend replaces the os package.
	Backend DirMaker
}

// EnsurePath creates path and all of its missing parents.
func (s *Service) EnsurePath(path string, opts EnsureOptions) error {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o777
	}
	var backend DirMaker = osBackend{}
	if opts.Backend != nil {
		backend = opts.Backend
	}

	if err := backend.MkdirAll(path, mode); err != nil {
		return fmt.Errorf("failed to create directory: %s - %w", path, err)
	}
	s.logger.Debug("ensured path", zap.String("path", path))
	return nil
}
