package loader

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoExport is returned by Module.Export when the module has no symbol
// with the requested name.
var ErrNoExport = errors.New("loader: export not found")

// Loader loads the module stored at path.
type Loader interface {
	Load(ctx context.Context, path string) (Module, error)
}

// Module gives access to a loaded module's exports.
type Module interface {
	// Export returns the value bound to name. It returns an error wrapping
	// ErrNoExport when the symbol does not exist.
	Export(name string) (any, error)
}

// Exports is a Module backed by a map.
type Exports map[string]any

// Export implements Module.
func (e Exports) Export(name string) (any, error) {
	v, ok := e[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoExport, name)
	}
	return v, nil
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (Module, error)

// Load calls f(ctx, path).
func (f LoaderFunc) Load(ctx context.Context, path string) (Module, error) {
	return f(ctx, path)
}
