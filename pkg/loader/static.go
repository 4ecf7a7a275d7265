package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Static is a compile-time module registry. Programs that cannot or do not
// want to interpret source register their domain handlers under the module
// path the resolver will compute, and Static hands them back on Load.
type Static struct {
	mu      sync.RWMutex
	modules map[string]Exports
}

// NewStatic creates an empty registry.
func NewStatic() *Static {
	return &Static{modules: make(map[string]Exports)}
}

// Register adds or replaces the export name of the module at path.
func (s *Static) Register(path, name string, value any) {
	key := staticKey(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	exports, ok := s.modules[key]
	if !ok {
		exports = make(Exports)
		s.modules[key] = exports
	}
	exports[name] = value
}

// Load returns the exports registered for path. The file itself must still
// exist so the on-disk layout stays the source of truth for which domains
// are served.
func (s *Static) Load(ctx context.Context, path string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	exports, ok := s.modules[staticKey(path)]
	if !ok {
		return nil, fmt.Errorf("loader: no module registered for %s", path)
	}

	snapshot := make(Exports, len(exports))
	for k, v := range exports {
		snapshot[k] = v
	}
	return snapshot, nil
}

func staticKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
