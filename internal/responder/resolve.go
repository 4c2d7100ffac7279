package responder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DocumentSuffix is appended to identifiers that lack it.
const DocumentSuffix = ".md"

var (
	ErrNotFound    = errors.New("responder: document not found")
	ErrOutsideRoot = errors.New("responder: document escapes content root")
)

// RouteTable maps logical paths to document identifiers.
type RouteTable map[string]string

// Lookup returns the document identifier routed for p.
func (t RouteTable) Lookup(p string) (string, bool) {
	id, ok := t[p]
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// Resolver turns a requested logical path into a document identifier.
type Resolver struct {
	routes RouteTable
}

func NewResolver(routes RouteTable) Resolver {
	copied := make(RouteTable, len(routes))
	for k, v := range routes {
		copied[k] = v
	}
	return Resolver{routes: copied}
}

// Resolve maps p through the route table, falls back to p itself, and
// appends DocumentSuffix when missing. It does not validate the result.
func (r Resolver) Resolve(p string) string {
	id, ok := r.routes.Lookup(p)
	if !ok {
		id = p
	}
	if !strings.HasSuffix(id, DocumentSuffix) {
		id += DocumentSuffix
	}
	return id
}

// DocumentStore reads document content by identifier.
type DocumentStore interface {
	Read(documentID string) ([]byte, error)
}

// DirStore reads documents from a directory on disk.
type DirStore struct {
	root string
}

func NewDirStore(root string) DirStore {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		resolved = "."
	}
	return DirStore{root: resolved}
}

func (s DirStore) Root() string {
	return s.root
}

func (s DirStore) Read(documentID string) ([]byte, error) {
	p, err := s.resolvePath(documentID)
	if err != nil {
		return nil, err
	}
	out, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, documentID, err)
	}
	return out, nil
}

func (s DirStore) resolvePath(documentID string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	p := filepath.Clean(filepath.Join(root, filepath.FromSlash(documentID)))
	if !isWithin(p, root) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, documentID)
	}
	return p, nil
}

func isWithin(p string, root string) bool {
	p = filepath.Clean(p)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(r, string(os.PathSeparator))+string(os.PathSeparator))
}

// FSStore reads documents from an fs.FS, e.g. an embedded content tree.
type FSStore struct {
	FS fs.FS
}

func (s FSStore) Read(documentID string) ([]byte, error) {
	name := path.Clean(strings.TrimPrefix(documentID, "/"))
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrOutsideRoot, documentID)
	}
	out, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, documentID, err)
	}
	return out, nil
}
