package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/taigrr/fskit/internal/filesystem"
	"github.com/taigrr/fskit/internal/listing"
	"github.com/taigrr/fskit/internal/parentsearch"
	"github.com/taigrr/fskit/internal/pathfilter"
	"github.com/taigrr/fskit/internal/types"
)

var dirColor = color.New(color.FgBlue, color.Bold)

func newLsCmd() *cobra.Command {
	var (
		slash, sync, asJSON bool
		files, dirs, exe    string
	)

	cmd := &cobra.Command{
		Use:   "ls DIR",
		Short: "List a directory, optionally filtered by type and executability",
		Example: `fskit ls . --files=no --slash
fskit ls /usr/local/bin --exe=yes --dirs=no
fskit ls ~/src --files=no`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := listOptions(slash, files, dirs, exe)
			if err != nil {
				return err
			}

			var entries []listing.Entry
			if sync {
				entries, err = lister.ReadEntriesSync(args[0], opts)
			} else {
				entries, err = lister.ReadEntries(cmd.Context(), args[0], opts)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				names := listing.Names(entries)
				return writeJSON(out, types.DirectoryListing{Path: args[0], Entries: names, Count: len(names)})
			}
			printEntries(out, entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&slash, "slash", false, "append / to directory names")
	cmd.Flags().StringVar(&files, "files", "", "no: drop non-directories (yes keeps them)")
	cmd.Flags().StringVar(&dirs, "dirs", "", "no: drop directories (yes keeps them)")
	cmd.Flags().StringVar(&exe, "exe", "", "yes: only executable files, no: only non-executable files; directories pass")
	cmd.Flags().BoolVar(&sync, "sync", false, "probe entries one at a time")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON listing")
	return cmd
}

func listOptions(slash bool, files, dirs, exe string) (listing.Options, error) {
	opts := listing.Options{Slash: slash, ProbeTimeout: cfg.Listing.ProbeTimeout}

	var err error
	if opts.Files, err = listing.ParseFilterMode(files); err != nil {
		return opts, fmt.Errorf("--files: %w", err)
	}
	if opts.Directories, err = listing.ParseFilterMode(dirs); err != nil {
		return opts, fmt.Errorf("--dirs: %w", err)
	}
	if opts.Exe, err = listing.ParseFilterMode(exe); err != nil {
		return opts, fmt.Errorf("--exe: %w", err)
	}
	return opts, nil
}

func printEntries(w io.Writer, entries []listing.Entry) {
	colored := isTerminal(w) && !color.NoColor
	for _, e := range entries {
		if colored && e.Kind == listing.KindDirectory {
			dirColor.Fprintln(w, e.Name)
			continue
		}
		fmt.Fprintln(w, e.Name)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFindUpCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "find-up PATH [TARGET]",
		Short: "Find the nearest parent directory containing a path",
		Long: `With one argument, PATH is split into a starting directory and a name to
look for. With two, TARGET is searched for starting at PATH. Each ancestor,
up to the filesystem root, is tried in turn.`,
		Example: `fskit find-up ./src/go.mod
fskit find-up . .git/config`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				found string
				err   error
			)
			start, target := parentsearch.Split(args[0])
			if len(args) == 2 {
				start, target = args[0], args[1]
				found, err = finder.Search(cmd.Context(), start, target)
			} else {
				found, err = finder.SearchPath(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), types.SearchResult{Start: start, Target: target, Found: found})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Found:", found)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON result")
	return cmd
}

func newMkdirCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "mkdir PATH...",
		Short: "Create directories and any missing parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perm, err := parseMode(mode)
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := fileSystem.EnsurePath(path, filesystem.EnsureOptions{Mode: perm}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "0777", "permission bits of created directories, in octal")
	return cmd
}

func parseMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o777 {
		return 0, fmt.Errorf("invalid mode: %s", s)
	}
	return os.FileMode(v), nil
}

func newRmCmd() *cobra.Command {
	var noGlob, verbose bool

	cmd := &cobra.Command{
		Use:   "rm PATTERN...",
		Short: "Delete files and directory trees matching glob patterns",
		Example: `fskit rm build
fskit rm '**/*.tmp'
fskit rm --no-glob 'odd[name]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := filesystem.DeltreeOptions{
				MaxBusyTries: cfg.Deltree.MaxBusyTries,
				EMFILEWait:   cfg.Deltree.EMFILEWait,
				DisableGlob:  noGlob,
			}
			for _, pattern := range args {
				removed, err := fileSystem.Deltree(cmd.Context(), pattern, opts)
				if verbose {
					for _, p := range removed {
						fmt.Fprintln(cmd.OutOrStdout(), "removed", p)
					}
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGlob, "no-glob", false, "treat patterns as literal paths")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print removed paths")
	return cmd
}

func newTouchCmd() *cobra.Command {
	var flags touchFlags

	cmd := &cobra.Command{
		Use:   "touch PATH...",
		Short: "Create files or update their timestamps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			touchOpts, err := flags.options()
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := fileSystem.Touch(path, touchOpts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.NoCreate, "no-create", "c", false, "do not create missing files")
	cmd.Flags().BoolVarP(&flags.ATimeOnly, "atime", "a", false, "change only the access time")
	cmd.Flags().BoolVarP(&flags.MTimeOnly, "mtime", "m", false, "change only the modification time")
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "add the owner write bit if the update is refused")
	cmd.Flags().StringVarP(&flags.Date, "date", "d", "", "use this RFC 3339 time instead of now")
	cmd.Flags().StringVarP(&flags.Reference, "reference", "r", "", "use the times of this file")
	return cmd
}

type touchFlags struct {
	NoCreate, ATimeOnly, MTimeOnly, Force bool
	Date, Reference                       string
}

func (f touchFlags) options() (filesystem.TouchOptions, error) {
	opts := filesystem.TouchOptions{
		Force:     f.Force,
		NoCreate:  f.NoCreate,
		ATimeOnly: f.ATimeOnly,
		MTimeOnly: f.MTimeOnly,
		Reference: f.Reference,
	}
	if f.Date != "" {
		t, err := time.Parse(time.RFC3339, f.Date)
		if err != nil {
			return opts, fmt.Errorf("invalid date: %s - %w", f.Date, err)
		}
		opts.Time = t
	}
	return opts, nil
}

func newCpCmd() *cobra.Command {
	var (
		exclude, include                      []string
		noClobber, dereference, stop, useLock bool
	)

	cmd := &cobra.Command{
		Use:   "cp SRC DST",
		Short: "Copy a file or a directory tree",
		Example: `fskit cp notes backup --exclude '.git' --exclude '*.tmp'
fskit cp src dst --include '**/*.go'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := pathfilter.New(&types.PathFilterConfig{IgnoredPatterns: exclude, IncludedPatterns: include})
			if err := filter.Validate(); err != nil {
				return err
			}

			opts := filesystem.CopyOptions{
				Filter:      filter,
				Clobber:     cfg.Copy.Clobber && !noClobber,
				Dereference: cfg.Copy.Dereference || dereference,
				StopOnError: stop,
				Lock:        useLock,
				Errors:      cmd.ErrOrStderr(),
			}

			src, dst := args[0], args[1]
			info, err := os.Stat(src)
			if err != nil {
				return fmt.Errorf("failed to stat source: %s - %w", src, err)
			}
			if !info.IsDir() {
				return fileSystem.CopyFile(src, dst, opts)
			}
			return fileSystem.CopyDir(cmd.Context(), src, dst, opts)
		},
	}

	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "glob of paths to skip (repeatable)")
	cmd.Flags().StringArrayVar(&include, "include", nil, "glob of files to copy; others are skipped (repeatable)")
	cmd.Flags().BoolVarP(&noClobber, "no-clobber", "n", false, "keep existing destination files")
	cmd.Flags().BoolVarP(&dereference, "dereference", "L", false, "copy symlink targets instead of links")
	cmd.Flags().BoolVar(&stop, "stop-on-error", false, "abort on the first failure")
	cmd.Flags().BoolVar(&useLock, "lock", false, "hold an advisory lock on each destination file")
	return cmd
}
