package compile

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"ulabuild/internal/safeio"
	t "ulabuild/internal/types"
)

// StepOptions configures a Step.
type StepOptions struct {
	// Directory every unit must live under. Empty reads paths unrestricted.
	Root string

	// Entries of the per-run dedupe cache keyed by source hash; 0 disables it.
	DedupeSize int
}

// Step reads a unit, compiles it and annotates its diagnostics. A Step
// belongs to one run; its cache is never shared with another run. With
// dedupe on, identical sources reach the compiler once even when workers
// hit them at the same time.
type Step struct {
	compiler Compiler
	fs       *safeio.SafeFS
	cache    *lru.Cache[[sha256.Size]byte, t.Outcome]
	inflight singleflight.Group
}

func NewStep(c Compiler, opts StepOptions) (*Step, error) {
	if c == nil {
		return nil, errors.New("compile: compiler is nil")
	}
	s := &Step{compiler: c}
	if opts.Root != "" {
		fs, err := safeio.NewSafeFS(opts.Root)
		if err != nil {
			return nil, fmt.Errorf("compile: source root: %w", err)
		}
		s.fs = fs
	}
	if opts.DedupeSize > 0 {
		cache, err := lru.New[[sha256.Size]byte, t.Outcome](opts.DedupeSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Compile produces the unit's outcome. Read errors and compiler diagnostics
// both become Failures naming the unit's path; nothing here aborts a batch.
func (s *Step) Compile(u t.SourceUnit) t.Outcome {
	src, err := s.read(u.AbsPath)
	if err != nil {
		return t.Failure(Annotate([]string{fmt.Sprintf("failed to read source: %v", err)}, u.AbsPath)...)
	}

	out := s.compileSource(src)

	switch out.Kind() {
	case t.OutcomeSuccess:
		return out
	case t.OutcomeFailure:
		return t.Failure(Annotate(out.Diagnostics(), u.AbsPath)...)
	}
	return t.Failure(Annotate([]string{"compiler returned no outcome"}, u.AbsPath)...)
}

func (s *Step) compileSource(src []byte) t.Outcome {
	if s.cache == nil {
		return s.compiler.Compile(string(src))
	}
	key := sha256.Sum256(src)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}
	v, _, _ := s.inflight.Do(string(key[:]), func() (any, error) {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		out := s.compiler.Compile(string(src))
		s.cache.Add(key, out)
		return out, nil
	})
	return v.(t.Outcome)
}

func (s *Step) read(path string) ([]byte, error) {
	if s.fs != nil {
		return s.fs.ReadFile(path)
	}
	return os.ReadFile(path)
}

// Annotate appends the originating path to every diagnostic:
// "syntax error" for /a/z.ula becomes "syntax error in </a/z.ula>".
func Annotate(diagnostics []string, path string) []string {
	out := make([]string, len(diagnostics))
	for i, d := range diagnostics {
		out[i] = fmt.Sprintf("%s in <%s>", d, path)
	}
	return out
}
