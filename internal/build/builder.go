// Package build drives a batch compilation: discovery, parallel compile,
// artifact writing and reporting.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ulabuild/internal/artifact"
	"ulabuild/internal/compile"
	"ulabuild/internal/diag"
	"ulabuild/internal/pathmap"
	"ulabuild/internal/scan"
	"ulabuild/internal/scheduler"
	t "ulabuild/internal/types"
)

// Options configures a Builder. Zero values select the defaults.
type Options struct {
	// Concurrent compile workers; <=0 means one per CPU.
	Workers   int
	SourceExt string
	TargetExt string

	// Directory names discovery never descends into (nil = scan defaults).
	IgnoreDirs []string

	// Per-run dedupe cache size; 0 disables deduplication.
	DedupeSize int

	// Optional second destination. It receives output-root-relative keys.
	Mirror  artifact.Writer
	Verbose bool
}

const (
	defaultSourceExt = ".ula"
	defaultTargetExt = ".lua"
)

// Builder runs builds with one compiler. Runs share no state apart from
// the observable State; use one Builder per concurrent run.
type Builder struct {
	compiler compile.Compiler
	opts     Options

	mu    sync.Mutex
	state State
}

func New(c compile.Compiler, opts Options) *Builder {
	opts.SourceExt = scan.NormalizeExt(opts.SourceExt)
	if opts.SourceExt == "" {
		opts.SourceExt = defaultSourceExt
	}
	opts.TargetExt = scan.NormalizeExt(opts.TargetExt)
	if opts.TargetExt == "" {
		opts.TargetExt = defaultTargetExt
	}
	return &Builder{compiler: c, opts: opts}
}

// State returns the phase of the current or last run.
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Builder) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	b.logf("build: %s", s)
}

func (b *Builder) logf(format string, args ...any) {
	if b.opts.Verbose {
		log.Printf(format, args...)
	}
}

// plan is the validated shape of a run.
type plan struct {
	in, out    string
	singleFile bool
}

// Run compiles in (a file or a directory) into out. Per-unit failures are
// reported in the returned BuildReport; the error is non-nil only for a
// PreconditionError, a discovery failure of the root or a write failure.
// Artifacts written before a write failure stay on disk.
func (b *Builder) Run(ctx context.Context, in, out string) (t.BuildReport, error) {
	start := time.Now()
	workers := scheduler.Workers(b.opts.Workers)
	report := t.BuildReport{Workers: workers}
	b.setState(StateIdle)

	p, err := b.check(in, out)
	if err != nil {
		return report, err
	}

	b.setState(StateDiscovering)
	units, err := scan.Discover(p.in, scan.Options{
		SourceExt:  b.opts.SourceExt,
		IgnoreDirs: b.opts.IgnoreDirs,
		Verbose:    b.opts.Verbose,
	})
	if err != nil {
		return report, fmt.Errorf("discover %s: %w", in, err)
	}
	report.Total = len(units)
	b.logf("build: discovered %d units under %s", len(units), p.in)

	b.setState(StateCompiling)
	sourceRoot := p.in
	if p.singleFile {
		sourceRoot = filepath.Dir(p.in)
	}
	step, err := compile.NewStep(b.compiler, compile.StepOptions{Root: sourceRoot, DedupeSize: b.opts.DedupeSize})
	if err != nil {
		return report, err
	}
	outcomes, err := scheduler.Run(scheduler.Params{
		Units:     units,
		NParallel: workers,
		Run:       step.Compile,
		OnDone: func(u t.SourceUnit, o t.Outcome) {
			b.logf("build: %s %s", o.Kind(), u.RelPath)
		},
	})
	if err != nil {
		return report, err
	}

	b.setState(StateFinalizing)
	agg := diag.New(len(units))
	storeRoot := p.out
	if p.singleFile {
		storeRoot = filepath.Dir(p.out)
	}
	store := artifact.NewFileStore(storeRoot)
	for i, u := range units {
		o := outcomes[i]
		if !o.OK() {
			if err := agg.Fail(u.Index, o.Diagnostics()); err != nil {
				return report, err
			}
			continue
		}
		dest, key := p.out, filepath.Base(p.out)
		if !p.singleFile {
			dest = pathmap.Map(p.in, p.out, u.AbsPath, b.opts.TargetExt)
			key = pathmap.Rel(p.in, u.AbsPath, b.opts.TargetExt)
		}
		if err := b.write(ctx, store, dest, key, o.Text()); err != nil {
			report.Failures = agg.Failures()
			report.Diagnostics = agg.Blocks()
			report.Elapsed = time.Since(start)
			return report, err
		}
		report.Written++
		if err := agg.Succeed(u.Index); err != nil {
			return report, err
		}
	}

	report.Failures = agg.Failures()
	report.Diagnostics = agg.Blocks()
	report.Elapsed = time.Since(start)
	b.setState(StateDone)
	return report, nil
}

func (b *Builder) write(ctx context.Context, store *artifact.FileStore, dest, key, content string) error {
	if err := store.Write(ctx, dest, []byte(content)); err != nil {
		return err
	}
	if b.opts.Mirror != nil {
		if err := b.opts.Mirror.Write(ctx, key, []byte(content)); err != nil {
			return fmt.Errorf("mirror %s: %w", key, err)
		}
	}
	return nil
}

// check validates the root pair before any discovery happens.
func (b *Builder) check(in, out string) (plan, error) {
	inAbs, err := filepath.Abs(in)
	if err != nil {
		return plan{}, preconditionf("invalid input path <%s>: %v", in, err)
	}
	outAbs, err := filepath.Abs(out)
	if err != nil {
		return plan{}, preconditionf("invalid output path <%s>: %v", out, err)
	}

	inInfo, err := os.Stat(inAbs)
	if err != nil {
		return plan{}, preconditionf("file or directory <%s> does not exist", in)
	}
	// Units, the source root and path mapping all work on the resolved input.
	inAbs, err = filepath.EvalSymlinks(inAbs)
	if err != nil {
		return plan{}, preconditionf("cannot resolve input path <%s>: %v", in, err)
	}
	outInfo, outErr := os.Stat(outAbs)
	if outErr != nil && !errors.Is(outErr, fs.ErrNotExist) {
		return plan{}, preconditionf("cannot access output path <%s>: %v", out, outErr)
	}
	outExists := outErr == nil

	if !inInfo.IsDir() {
		if outExists && outInfo.IsDir() {
			return plan{}, preconditionf("if the input path is a file, the output path <%s> must not be a directory", out)
		}
		return plan{in: inAbs, out: outAbs, singleFile: true}, nil
	}

	if !outExists {
		return plan{}, preconditionf("file or directory <%s> does not exist", out)
	}
	if !outInfo.IsDir() {
		return plan{}, preconditionf("if the input path is a directory, the output path must also be a directory")
	}
	return plan{in: inAbs, out: outAbs}, nil
}
