package autoload

import (
	"path/filepath"
	"strings"

	autoerrors "github.com/vango-dev/autovhost/internal/errors"
)

// ResolvedModule is where a domain's module is expected on disk.
type ResolvedModule struct {
	// Path is the absolute module file path, suffix included.
	Path string

	// MainFile is the normalized main file name, without suffix.
	MainFile string

	// Export is the symbol the binder will read.
	Export string

	// Exists reports whether Path was readable when resolved. It does not
	// guarantee the module loads.
	Exists bool
}

// Resolver computes module paths and probes them. The zero value uses
// ModuleSuffix and the platform readability probe.
type Resolver struct {
	// Suffix is the module file suffix. Default ".go".
	Suffix string

	// Probe reports whether a file is readable. Default Readable.
	Probe func(path string) bool
}

// NewResolver creates a Resolver with the defaults.
func NewResolver() *Resolver {
	return &Resolver{Suffix: ModuleSuffix, Probe: Readable}
}

func (r *Resolver) suffix() string {
	if r == nil || r.Suffix == "" {
		return ModuleSuffix
	}
	return r.Suffix
}

func (r *Resolver) probe(path string) bool {
	if r == nil || r.Probe == nil {
		return Readable(path)
	}
	return r.Probe(path)
}

// Resolve computes the module path for domain under baseFolder and probes
// it. A missing file is reported through Exists, never as an error.
func (r *Resolver) Resolve(baseFolder, domain, mainFile, export string) ResolvedModule {
	suffix := r.suffix()
	mainFile = NormalizeMainFile(mainFile, suffix)

	path := filepath.Join(baseFolder, domain, mainFile+suffix)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return ResolvedModule{
		Path:     path,
		MainFile: mainFile,
		Export:   export,
		Exists:   r.probe(path),
	}
}

// NormalizeMainFile strips one trailing suffix from name. The match is
// case-sensitive.
func NormalizeMainFile(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return strings.TrimSuffix(name, suffix)
}

// ValidateDomainName rejects domain names that would leave the base folder
// once joined into a path.
func ValidateDomainName(domain string) error {
	switch {
	case domain == "." || domain == "..":
	case strings.ContainsAny(domain, `/\`):
	case strings.ContainsRune(domain, 0):
	case strings.Contains(domain, ".."):
	default:
		return nil
	}
	return autoerrors.New(autoerrors.CodeInvalidDomainName).WithDomain(domain)
}
