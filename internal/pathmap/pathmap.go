// Package pathmap derives output locations from input locations.
package pathmap

import (
	"fmt"
	"path/filepath"
	"strings"

	"ulabuild/internal/safeio"
)

// Map returns the output path of absPath: the input-root-relative part is
// joined onto outputRoot and its final extension replaced by targetExt
// (appended when there is none).
//
// absPath must lie under inputRoot; discovery guarantees it, so a violation
// panics.
func Map(inputRoot, outputRoot, absPath, targetExt string) string {
	return filepath.Join(outputRoot, filepath.FromSlash(Rel(inputRoot, absPath, targetExt)))
}

// Rel returns the output path relative to the output root, with forward
// slashes (e.g., "x/y.lua"). It is the object key used by remote mirrors.
func Rel(inputRoot, absPath, targetExt string) string {
	inputRoot = filepath.Clean(inputRoot)
	absPath = filepath.Clean(absPath)
	if !safeio.Within(inputRoot, absPath) || inputRoot == absPath {
		panic(fmt.Sprintf("pathmap: %s is not under input root %s", absPath, inputRoot))
	}
	rel, err := filepath.Rel(inputRoot, absPath)
	if err != nil {
		panic(fmt.Sprintf("pathmap: %v", err))
	}
	return filepath.ToSlash(SwapExt(rel, targetExt))
}

// SwapExt replaces the extension of the last path element.
func SwapExt(path, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
