package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Dir persists each key as its own file inside a directory, the closest
// server-side analogue to a browser's local key-value storage. Keys are
// sanitized into file names; payloads are written whole.
type Dir struct {
	mu   sync.Mutex
	path string
}

// NewDir creates the directory when needed and returns a store rooted there.
func NewDir(path string) (*Dir, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("kv: directory path is required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

// Get implements Store.
func (d *Dir) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := os.ReadFile(d.fileFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv: read %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements Store.
func (d *Dir) Set(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.WriteFile(d.fileFor(key), value, 0o644); err != nil {
		return fmt.Errorf("kv: write %s: %w", key, err)
	}
	return nil
}

func (d *Dir) fileFor(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(d.path, name+".json")
}
