// Package listing lists directory entries, optionally probing each entry for
// its type and permissions so that files, directories and executables can be
// filtered out or decorated.
package listing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Entry is a listed name together with what the probe learned about it.
// Kind stays KindUnknown when no probe was needed.
type Entry struct {
	Name       string
	Kind       Kind
	Executable bool
}

// Lister reads directories.
type Lister struct {
	prober   Prober
	identity Identity
	logger   *zap.Logger
}

// Option configures a Lister.
type Option func(*Lister)

// WithProber replaces the metadata probe.
func WithProber(p Prober) Option {
	return func(l *Lister) { l.prober = p }
}

// WithIdentity sets the identity used to judge executability.
func WithIdentity(id Identity) Option {
	return func(l *Lister) { l.identity = id }
}

// WithLogger sets the logger. Probe failures are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lister) { l.logger = logger }
}

// New creates a Lister that stats entries as the current process identity.
func New(opts ...Option) *Lister {
	l := &Lister{
		prober:   StatProber{},
		identity: CurrentIdentity(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

var defaultLister = New()

// Readdir lists dir with the default Lister.
func Readdir(ctx context.Context, dir string, opts Options) ([]string, error) {
	return defaultLister.Readdir(ctx, dir, opts)
}

// ReaddirSync lists dir with the default Lister, probing one entry at a time.
func ReaddirSync(dir string, opts Options) ([]string, error) {
	return defaultLister.ReaddirSync(dir, opts)
}

// Readdir returns the names in dir that pass opts, in raw listing order.
//
// When opts needs no metadata the raw listing is returned as is. Otherwise
// every entry is probed concurrently and the result is built once all probes
// have settled. Entries whose probe fails, dangling links included, are left
// out without failing the call.
func (l *Lister) Readdir(ctx context.Context, dir string, opts Options) ([]string, error) {
	entries, err := l.ReadEntries(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	return Names(entries), nil
}

// ReadEntries is Readdir returning entries instead of bare names.
func (l *Lister) ReadEntries(ctx context.Context, dir string, opts Options) ([]Entry, error) {
	names, err := readNames(dir)
	if err != nil {
		return nil, err
	}

	if !opts.NeedsProbe() {
		return rawEntries(names), nil
	}

	l.logProbe(dir, len(names), opts)
	results := make([]probeResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			md, err := l.probe(gctx, filepath.Join(dir, name), opts.ProbeTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Debug("skipping entry", zap.String("dir", dir), zap.Error(err))
				return nil
			}
			results[i] = probeResult{md: md, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return l.collect(names, results, opts), nil
}

// ReaddirSync has the same filtering as Readdir but probes entries one at a
// time, in order. A failing probe skips that entry and the listing goes on,
// matching the concurrent variant.
func (l *Lister) ReaddirSync(dir string, opts Options) ([]string, error) {
	entries, err := l.ReadEntriesSync(dir, opts)
	if err != nil {
		return nil, err
	}
	return Names(entries), nil
}

// ReadEntriesSync is ReaddirSync returning entries instead of bare names.
func (l *Lister) ReadEntriesSync(dir string, opts Options) ([]Entry, error) {
	names, err := readNames(dir)
	if err != nil {
		return nil, err
	}

	if !opts.NeedsProbe() {
		return rawEntries(names), nil
	}

	l.logProbe(dir, len(names), opts)
	results := make([]probeResult, len(names))
	for i, name := range names {
		md, err := l.probe(context.Background(), filepath.Join(dir, name), opts.ProbeTimeout)
		if err != nil {
			l.logger.Debug("skipping entry", zap.String("dir", dir), zap.Error(err))
			continue
		}
		results[i] = probeResult{md: md, ok: true}
	}

	return l.collect(names, results, opts), nil
}

func (l *Lister) logProbe(dir string, count int, opts Options) {
	l.logger.Debug("probing entries",
		zap.String("dir", dir),
		zap.Int("count", count),
		zap.Bool("slash", opts.Slash),
		zap.Stringer("files", opts.Files),
		zap.Stringer("directories", opts.Directories),
		zap.Stringer("exe", opts.Exe),
	)
}

// Names returns the names of entries.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

type probeResult struct {
	md Metadata
	ok bool
}

type verdict int

const (
	include verdict = iota
	exclude
	unavailable
)

func (l *Lister) collect(names []string, results []probeResult, opts Options) []Entry {
	entries := make([]Entry, 0, len(names))
	for i, name := range names {
		entry, v := l.classify(name, results[i], opts)
		if v == include {
			entries = append(entries, entry)
		}
	}
	return entries
}

// classify decides a single entry from its own probe result only.
func (l *Lister) classify(name string, r probeResult, opts Options) (Entry, verdict) {
	if !r.ok {
		return Entry{}, unavailable
	}

	switch r.md.Kind {
	case KindDirectory:
		if opts.Directories == RequireFalse {
			return Entry{}, exclude
		}
		if opts.Slash {
			name += "/"
		}
		return Entry{Name: name, Kind: KindDirectory}, include

	case KindFile:
		if opts.Files == RequireFalse {
			return Entry{}, exclude
		}
		exe := StatsHasExe(r.md, l.identity)
		if opts.Exe != Unfiltered && exe != (opts.Exe == RequireTrue) {
			return Entry{}, exclude
		}
		return Entry{Name: name, Kind: KindFile, Executable: exe}, include
	}

	l.logger.Debug("dropping entry", zap.String("name", name), zap.Stringer("kind", r.md.Kind))
	return Entry{}, exclude
}

func (l *Lister) probe(ctx context.Context, path string, timeout time.Duration) (Metadata, error) {
	if timeout <= 0 {
		md, err := l.prober.Probe(ctx, path)
		if err != nil {
			return Metadata{}, &MetadataProbeError{Path: path, Err: err}
		}
		return md, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		md  Metadata
		err error
	}
	ch := make(chan result, 1)
	go func() {
		md, err := l.prober.Probe(ctx, path)
		ch <- result{md: md, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return Metadata{}, &MetadataProbeError{Path: path, Err: r.err}
		}
		return r.md, nil
	case <-ctx.Done():
		return Metadata{}, &MetadataProbeError{Path: path, Err: ctx.Err()}
	}
}

func readNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, &DirectoryReadError{Path: dir, Err: unwrapPathError(err)}
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, &DirectoryReadError{Path: dir, Err: unwrapPathError(err)}
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func unwrapPathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

func rawEntries(names []string) []Entry {
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name}
	}
	return entries
}
