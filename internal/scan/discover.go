package scan

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	t "ulabuild/internal/types"
)

// DefaultIgnoreDirs are directory names never descended into.
var DefaultIgnoreDirs = []string{".git", ".hg", ".svn", "node_modules"}

// Options tunes a walk.
type Options struct {
	// Suffix a file name must end with to become a unit (e.g., ".ula").
	// Case-sensitive; a leading dot is added when missing.
	SourceExt string

	// Directory base names skipped entirely. Nil means DefaultIgnoreDirs;
	// an empty non-nil slice disables skipping.
	IgnoreDirs []string

	// Log skipped unreadable entries.
	Verbose bool
}

// FileVisit carries per-entry metadata to walk callbacks.
type FileVisit struct {
	// Root-relative path using forward slashes (e.g., "src/app.ula").
	Path string

	// Absolute filesystem path.
	AbsPath string
}

// VisitFunc is invoked for every regular file reached by Walk.
type VisitFunc func(f FileVisit)

// Walk visits every regular file under root in lexical order. Entries that
// cannot be read are skipped; only an inaccessible root is an error.
// A symlinked root is resolved first; symlinks below it are not followed.
func Walk(root string, opts Options, cb VisitFunc) error {
	abs, err := resolveRoot(root)
	if err != nil {
		return err
	}

	ignore := opts.IgnoreDirs
	if ignore == nil {
		ignore = DefaultIgnoreDirs
	}
	skip := make(map[string]struct{}, len(ignore))
	for _, d := range ignore {
		skip[d] = struct{}{}
	}

	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == abs {
				return fmt.Errorf("scan: root %s: %w", root, err)
			}
			if opts.Verbose {
				log.Printf("scan: skipping %s: %v", path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, ok := skip[d.Name()]; ok && path != abs {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		if cb != nil {
			cb(FileVisit{Path: filepath.ToSlash(rel), AbsPath: path})
		}
		return nil
	})
}

// Discover returns the source units under root. A file root yields exactly
// that file as the only unit, whatever its suffix. Directory roots yield every
// regular file whose name ends with opts.SourceExt, at any depth, in walk order.
func Discover(root string, opts Options) ([]t.SourceUnit, error) {
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scan: root %s: %w", root, err)
	}
	if !info.IsDir() {
		return []t.SourceUnit{{Index: 0, AbsPath: abs, RelPath: filepath.Base(abs)}}, nil
	}

	ext := NormalizeExt(opts.SourceExt)
	units := []t.SourceUnit{}
	err = Walk(abs, opts, func(fv FileVisit) {
		if ext == "" || !strings.HasSuffix(fv.Path, ext) {
			return
		}
		units = append(units, t.SourceUnit{Index: len(units), AbsPath: fv.AbsPath, RelPath: fv.Path})
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// resolveRoot returns root as an absolute path with symlinks evaluated, so
// unit paths always sit under the directory actually walked.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("scan: root %s: %w", root, err)
	}
	return resolved, nil
}

// NormalizeExt trims ext and ensures a leading dot. Empty stays empty.
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
