// Package blobs hands out ephemeral playable handles for local files and
// serves their content back to the player.
package blobs

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PathPrefix is where registered handles are served.
const PathPrefix = "/blobs/"

// ErrNotFound reports an unknown handle.
var ErrNotFound = errors.New("blob not found")

type entry struct {
	name        string
	contentType string
	path        string
	created     time.Time
}

// Registry spools local files into a directory and maps handles to them.
// Handles live as long as the process; nothing revokes them.
type Registry struct {
	dir string

	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates dir if needed and returns a Registry writing into it.
func NewRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Registry{dir: dir, entries: make(map[string]entry)}, nil
}

// Register stores the content read from r and returns its playable URL.
func (r *Registry) Register(name, contentType string, content io.Reader) (string, error) {
	id := uuid.NewString()
	path := filepath.Join(r.dir, id)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}

	r.mu.Lock()
	r.entries[id] = entry{name: name, contentType: contentType, path: path, created: time.Now()}
	r.mu.Unlock()

	return PathPrefix + id, nil
}

// ServeHTTP serves a registered handle, honouring range requests so the
// player can seek.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(req.URL.Path, PathPrefix)

	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		http.NotFound(w, req)
		return
	}

	f, err := os.Open(e.path)
	if err != nil {
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	defer f.Close()

	if e.contentType != "" {
		w.Header().Set("Content-Type", e.contentType)
	}
	http.ServeContent(w, req, e.name, e.created, f)
}
