package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/taigrr/fskit/internal/filelock"
	"github.com/taigrr/fskit/internal/pathfilter"
	"go.uber.org/zap"
)

// CopyOptions configures CopyFile and CopyDir.
type CopyOptions struct {
	// Filter drops relative paths by glob. Nil copies everything.
	Filter *pathfilter.PathFilter
	// Predicate is called with the slash-separated path relative to the source
	// root. Returning false skips the entry, and a directory's whole subtree.
	Predicate func(rel string, d fs.DirEntry) bool
	// Clobber overwrites existing destination files. Otherwise they are kept.
	Clobber bool
	// Dereference copies what symlinks point to instead of the links.
	Dereference bool
	// StopOnError aborts on the first failing entry.
	StopOnError bool
	// Lock holds an advisory lock on each destination file while writing it.
	Lock bool
	// Errors receives one line per failed entry when StopOnError is unset.
	Errors io.Writer
}

func (o CopyOptions) allows(rel string, d fs.DirEntry, isDir bool) bool {
	if o.Filter != nil && !o.Filter.IsAllowedEntry(rel, isDir) {
		return false
	}
	if o.Predicate != nil && !o.Predicate(rel, d) {
		return false
	}
	return true
}

// CopyFile copies the regular file src to dst, keeping its permission bits.
func (s *Service) CopyFile(src, dst string, opts CopyOptions) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %s - %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}
	if !opts.Clobber && exists(dst) {
		s.logger.Debug("kept existing file", zap.String("path", dst))
		return nil
	}
	return s.copyContents(src, dst, info.Mode().Perm(), opts.Lock)
}

func (s *Service) copyContents(src, dst string, perm fs.FileMode, lock bool) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %s - %w", src, err)
	}
	defer in.Close()

	write := filelock.AtomicWriteFrom
	if lock {
		write = filelock.LockAndWriteFrom
	}
	if err := write(dst, in, perm); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	s.logger.Debug("copied", zap.String("src", src), zap.String("dst", dst))
	return nil
}

// CopyDir copies the tree rooted at src into dst. Entries are visited
// concurrently, so their order is unspecified.
func (s *Service) CopyDir(ctx context.Context, src, dst string, opts CopyOptions) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %s - %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}
	if within(src, dst) {
		return fmt.Errorf("cannot copy %s into itself: %s", src, dst)
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create directory: %s - %w", dst, err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	report := func(err error) error {
		if opts.StopOnError {
			return err
		}
		s.logger.Warn("copy entry failed", zap.Error(err))
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
		if opts.Errors != nil {
			fmt.Fprintln(opts.Errors, err)
		}
		return nil
	}

	conf := fastwalk.Config{Follow: opts.Dereference}
	walkErr := fastwalk.Walk(&conf, src, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return report(err)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return report(err)
		}
		if rel == "." {
			return nil
		}
		isLink := d.Type()&fs.ModeSymlink != 0
		isDir := d.IsDir()
		if isLink && opts.Dereference {
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}
		if !opts.allows(filepath.ToSlash(rel), d, isDir) {
			// SkipDir on a link stops fastwalk from following it.
			if isDir || isLink {
				return filepath.SkipDir
			}
			return nil
		}

		if err := s.copyEntry(path, filepath.Join(dst, rel), d, opts); err != nil {
			return report(err)
		}
		return nil
	})
	if walkErr != nil {
		return walkErr
	}
	return errors.Join(errs...)
}

func (s *Service) copyEntry(path, target string, d fs.DirEntry, opts CopyOptions) error {
	if d.Type()&fs.ModeSymlink != 0 && !opts.Dereference {
		return s.copySymlink(path, target, opts)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat: %s - %w", path, err)
	}
	switch {
	case info.IsDir():
		if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to create directory: %s - %w", target, err)
		}
		return nil
	case info.Mode().IsRegular():
		if !opts.Clobber && exists(target) {
			return nil
		}
		return s.copyContents(path, target, info.Mode().Perm(), opts.Lock)
	default:
		s.logger.Debug("skipped special file", zap.String("path", path))
		return nil
	}
}

func (s *Service) copySymlink(path, target string, opts CopyOptions) error {
	link, err := os.Readlink(path)
	if err != nil {
		return fmt.Errorf("failed to read link: %s - %w", path, err)
	}
	if exists(target) {
		if !opts.Clobber {
			return nil
		}
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to replace: %s - %w", target, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %s - %w", filepath.Dir(target), err)
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("failed to create link: %s - %w", target, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// within reports whether dst is src or lies below it.
func within(src, dst string) bool {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return false
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(srcAbs, dstAbs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
