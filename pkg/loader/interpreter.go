package loader

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ErrMainFunc is returned for a module that declares func main. yaegi runs
// main after the package is initialized, and a serving main would never
// return.
var ErrMainFunc = errors.New("loader: func main is not allowed in a domain module")

// Interpreter loads Go source modules with yaegi. Each Load gets a fresh
// interpreter, so modules never share state.
type Interpreter struct {
	// GoPath is passed to the interpreter for resolving non-stdlib imports.
	// Empty means only the standard library is available.
	GoPath string

	// Symbols are extra symbol tables exposed to modules, in addition to
	// the standard library.
	Symbols []interp.Exports
}

// NewInterpreter creates an Interpreter exposing the standard library.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Load reads, compiles and runs the module at path. Compile errors carry
// the file name in their position ("path:line:col: ..."). Execution stops
// when ctx is done.
func (l *Interpreter) Load(ctx context.Context, path string) (Module, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("loader: %s is empty", path)
	}
	if err := checkSource(path, code); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{GoPath: l.GoPath})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loader: stdlib symbols: %w", err)
	}
	for _, syms := range l.Symbols {
		if err := i.Use(syms); err != nil {
			return nil, fmt.Errorf("loader: symbols: %w", err)
		}
	}

	prog, err := i.CompilePath(path)
	if err != nil {
		return nil, fmt.Errorf("loader: compile %s: %w", path, err)
	}
	if _, err := i.ExecuteWithContext(ctx, prog); err != nil {
		return nil, fmt.Errorf("loader: run %s: %w", path, err)
	}

	return &interpretedModule{interp: i, path: path}, nil
}

// checkSource parses the module and rejects a top-level func main.
func checkSource(path string, code []byte) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, code, parser.SkipObjectResolution)
	if err != nil {
		return fmt.Errorf("loader: parse %s: %w", path, err)
	}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Recv == nil && fn.Name.Name == "main" {
			return fmt.Errorf("%s: %w", fset.Position(fn.Pos()), ErrMainFunc)
		}
	}
	return nil
}

type interpretedModule struct {
	interp *interp.Interpreter
	path   string
}

// Export evaluates name in the module's package scope.
func (m *interpretedModule) Export(name string) (any, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("%w: %q is not an identifier", ErrNoExport, name)
	}
	v, err := m.interp.Eval(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s: %v", ErrNoExport, name, m.path, err)
	}
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoExport, name, m.path)
	}
	if v.Kind() == reflect.Func && v.IsNil() {
		return nil, nil
	}
	return v.Interface(), nil
}

// isIdentifier keeps arbitrary expressions out of Eval.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
