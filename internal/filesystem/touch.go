package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"
)

// TouchOptions configures Touch.
type TouchOptions struct {
	// Force adds the owner write bit and retries when the time update is refused.
	Force bool
	// NoCreate leaves a missing file missing.
	NoCreate bool
	// ATimeOnly and MTimeOnly restrict the update to one timestamp.
	ATimeOnly bool
	MTimeOnly bool
	// Time is used instead of the current time.
	Time time.Time
	// Reference copies the timestamps of another file. It wins over Time.
	Reference string
}

// Touch creates path if needed and updates its access and modification times.
func (s *Service) Touch(path string, opts TouchOptions) error {
	atime, mtime := time.Now(), time.Now()
	if !opts.Time.IsZero() {
		atime, mtime = opts.Time, opts.Time
	}
	if opts.Reference != "" {
		ref, err := os.Stat(opts.Reference)
		if err != nil {
			return fmt.Errorf("failed to stat reference: %s - %w", opts.Reference, err)
		}
		atime, mtime = accessTime(opts.Reference, ref), ref.ModTime()
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if opts.NoCreate {
			return nil
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return fmt.Errorf("failed to create file: %s - %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close file: %s - %w", path, err)
		}
		if info, err = os.Stat(path); err != nil {
			return fmt.Errorf("failed to stat file: %s - %w", path, err)
		}
	case err != nil:
		return fmt.Errorf("failed to stat file: %s - %w", path, err)
	}

	// A zero time leaves that timestamp untouched.
	if opts.ATimeOnly && !opts.MTimeOnly {
		mtime = time.Time{}
	}
	if opts.MTimeOnly && !opts.ATimeOnly {
		atime = time.Time{}
	}

	err = os.Chtimes(path, atime, mtime)
	if err != nil && opts.Force && errors.Is(err, fs.ErrPermission) {
		err = s.chtimesWritable(path, info.Mode(), atime, mtime)
	}
	if err != nil {
		return fmt.Errorf("failed to update times: %s - %w", path, err)
	}
	s.logger.Debug("touched", zap.String("path", path))
	return nil
}

func (s *Service) chtimesWritable(path string, mode fs.FileMode, atime, mtime time.Time) error {
	if err := os.Chmod(path, mode|0o200); err != nil {
		return err
	}
	defer func() {
		if err := os.Chmod(path, mode); err != nil {
			s.logger.Warn("failed to restore mode", zap.String("path", path), zap.Error(err))
		}
	}()
	return os.Chtimes(path, atime, mtime)
}
