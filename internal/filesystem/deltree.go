package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

const (
	defaultMaxBusyTries = 3
	defaultBusyBackoff  = 100 * time.Millisecond
	defaultEMFILEWait   = time.Second
)

// DeltreeOptions configures Deltree.
type DeltreeOptions struct {
	// MaxBusyTries is how often EBUSY, ENOTEMPTY and EPERM are retried.
	// Zero means 3; negative disables retries.
	MaxBusyTries int
	// BusyBackoff is added to the wait before each busy retry. Zero means 100ms.
	BusyBackoff time.Duration
	// EMFILEWait is the total time spent waiting out EMFILE. Zero means 1s;
	// negative disables retries.
	EMFILEWait time.Duration
	// DisableGlob treats the pattern as a literal path.
	DisableGlob bool
	// Backend replaces the os package.
	Backend Remover
}

func (o DeltreeOptions) withDefaults() DeltreeOptions {
	if o.MaxBusyTries == 0 {
		o.MaxBusyTries = defaultMaxBusyTries
	}
	if o.BusyBackoff <= 0 {
		o.BusyBackoff = defaultBusyBackoff
	}
	if o.EMFILEWait == 0 {
		o.EMFILEWait = defaultEMFILEWait
	}
	if o.Backend == nil {
		o.Backend = osBackend{}
	}
	return o
}

// Deltree removes every path matching pattern, directories included, and
// returns what it removed. A pattern without glob characters, or any pattern
// when DisableGlob is set, is a literal path. Nothing matching is not an error.
// Paths that no longer exist, such as matches below an already removed
// directory, are not reported.
func (s *Service) Deltree(ctx context.Context, pattern string, opts DeltreeOptions) ([]string, error) {
	opts = opts.withDefaults()

	paths := []string{pattern}
	if !opts.DisableGlob && hasGlobMeta(pattern) {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %s - %w", pattern, err)
		}
		// Parents sort before their children.
		slices.Sort(matches)
		paths = matches
	}

	removed := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := opts.Backend.Lstat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := s.removeWithRetry(ctx, p, opts); err != nil {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}

func (s *Service) removeWithRetry(ctx context.Context, path string, opts DeltreeOptions) error {
	busyTries := 0
	var emfileDelay, waited time.Duration

	for {
		err := opts.Backend.RemoveAll(path)
		if err == nil {
			s.logger.Debug("removed", zap.String("path", path))
			return nil
		}

		var delay time.Duration
		switch {
		case isBusy(err) && busyTries < opts.MaxBusyTries:
			busyTries++
			delay = time.Duration(busyTries) * opts.BusyBackoff
		case errors.Is(err, syscall.EMFILE) && waited < opts.EMFILEWait:
			emfileDelay += time.Millisecond
			waited += emfileDelay
			delay = emfileDelay
		default:
			return fmt.Errorf("failed to delete: %s - %w", path, err)
		}

		s.logger.Debug("retrying delete", zap.String("path", path), zap.Duration("delay", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func isBusy(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EPERM)
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
