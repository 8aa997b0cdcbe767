package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStore writes blobs to a local directory served read-only by the HTTP
// server under /files/.
type FSStore struct {
	root    string
	baseURL string
}

// NewFSStore creates a filesystem blob store rooted at dir. baseURL is the
// externally visible origin the files are served from.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("blob dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FSStore{
		root:    filepath.Clean(dir),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// Root returns the directory the store writes under.
func (s *FSStore) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Save writes data under name and returns its public URL. Name is a relative
// slash path such as photos/0001_p1_photo.jpg; anything escaping the root is
// rejected.
func (s *FSStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("blob name is required")
	}
	cleaned := path.Clean("/" + name)
	if cleaned == "/" {
		return "", fmt.Errorf("blob name %q is invalid", name)
	}
	relative := strings.TrimPrefix(cleaned, "/")

	target := filepath.Join(s.root, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create blob subdir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", relative, err)
	}
	return s.baseURL + "/files/" + relative, nil
}

var _ Store = (*FSStore)(nil)
