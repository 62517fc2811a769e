package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ulabuild/internal/safeio"
)

// FileStore writes artifacts on the local filesystem below a root directory.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: strings.TrimSpace(root)}
}

// Root returns the directory artifacts are written under.
func (s *FileStore) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Write stores content at name, an absolute path under the root or a
// root-relative slash path. Missing parent directories are created.
func (s *FileStore) Write(_ context.Context, name string, content []byte) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) pathFor(name string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("artifact store is not configured")
	}
	if s.root == "" {
		return "", fmt.Errorf("artifact root is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("artifact name is required")
	}
	var path string
	if filepath.IsAbs(name) {
		path = filepath.Clean(name)
	} else {
		path = filepath.Join(s.root, filepath.FromSlash(name))
	}
	if !safeio.Within(s.root, path) || filepath.Clean(s.root) == path {
		return "", fmt.Errorf("invalid artifact name: %s", name)
	}
	return path, nil
}
