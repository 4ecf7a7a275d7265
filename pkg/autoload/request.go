package autoload

import (
	"os"
	"path/filepath"

	autoerrors "github.com/vango-dev/autovhost/internal/errors"
)

const (
	// DefaultMainFile is the main file name, without suffix, looked up in
	// each domain directory.
	DefaultMainFile = "app"

	// DefaultExport is the symbol read from the main file.
	DefaultExport = "app"

	// ModuleSuffix is the source suffix of domain modules.
	ModuleSuffix = ".go"
)

// Request describes one domain to bind.
type Request struct {
	// Domain is the virtual host and the name of its directory. Required.
	Domain string

	// MainFile is the module file name inside the domain directory.
	// Default "app"; a trailing ".go" is ignored.
	MainFile string

	// Export is the symbol holding the handler. Default "app".
	Export string

	// BaseFolder is the directory containing domain directories.
	// Default: the working directory.
	BaseFolder string

	// Debug makes fallback pages name the missing file or export.
	Debug bool

	// FromScan marks binds driven by Scan. It only changes wording.
	FromScan bool
}

// withDefaults returns a copy of r with empty optional fields filled in.
func (r Request) withDefaults() Request {
	if r.MainFile == "" {
		r.MainFile = DefaultMainFile
	}
	if r.Export == "" {
		r.Export = DefaultExport
	}
	if r.BaseFolder == "" {
		r.BaseFolder = workingDir()
	}
	return r
}

// ScanSettings configures Scan.
type ScanSettings struct {
	// BaseFolder is the scan root. Default: the working directory.
	BaseFolder string

	// Debug is passed to every bind.
	Debug bool
}

func (s *ScanSettings) withDefaults() ScanSettings {
	var out ScanSettings
	if s != nil {
		out = *s
	}
	if out.BaseFolder == "" {
		out.BaseFolder = workingDir()
	}
	return out
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(wd)
}

// Accepted keys for untyped settings. The first key of each list wins when
// several are present.
var (
	keysDomain     = []string{"domainName"}
	keysMainFile   = []string{"mainFile"}
	keysExport     = []string{"exportName", "exportsProperty"}
	keysBaseFolder = []string{"baseFolder", "folder", "directory"}
	keysDebug      = []string{"debug"}
)

// settingsMap returns raw as a mapping. nil counts as an empty mapping.
func settingsMap(raw any) (map[string]any, error) {
	switch m := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	case *Request, Request, *ScanSettings, ScanSettings:
		return nil, autoerrors.New(autoerrors.CodeInvalidSettingsType).
			WithDetail("Typed settings must be passed to Bind or Scan directly.")
	default:
		return nil, autoerrors.New(autoerrors.CodeInvalidSettingsType)
	}
}

// lookup returns the value of the first present key and that key.
func lookup(m map[string]any, keys []string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, k, true
		}
	}
	return nil, keys[0], false
}

// optionalString reads an optional string field. Missing, nil and "" all
// mean "use the default".
func optionalString(m map[string]any, keys []string, code string) (string, error) {
	v, key, ok := lookup(m, keys)
	if !ok || v == nil {
		return "", nil
	}
	s, isString := v.(string)
	if !isString {
		return "", autoerrors.New(code).WithField(key)
	}
	return s, nil
}

func optionalBool(m map[string]any, keys []string) (bool, error) {
	v, key, ok := lookup(m, keys)
	if !ok || v == nil {
		return false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, autoerrors.New(autoerrors.CodeInvalidFieldType).
			WithField(key).
			WithDetail("Expected a boolean.")
	}
	return b, nil
}

// DecodeRequest builds a Request from untyped settings such as a decoded
// YAML mapping. It reports InvalidSettingsType, MissingDomain,
// InvalidDomainType and InvalidFieldType, in that order.
func DecodeRequest(raw any) (*Request, error) {
	m, err := settingsMap(raw)
	if err != nil {
		return nil, err
	}
	return decodeRequestMap(m)
}

func decodeRequestMap(m map[string]any) (*Request, error) {
	v, key, _ := lookup(m, keysDomain)
	var domain string
	switch d := v.(type) {
	case nil:
		return nil, autoerrors.New(autoerrors.CodeMissingDomain).WithField(key)
	case string:
		if d == "" {
			return nil, autoerrors.New(autoerrors.CodeMissingDomain).WithField(key)
		}
		domain = d
	default:
		return nil, autoerrors.New(autoerrors.CodeInvalidDomainType).WithField(key)
	}

	req := &Request{Domain: domain}
	var err error
	if req.MainFile, err = optionalString(m, keysMainFile, autoerrors.CodeInvalidFieldType); err != nil {
		return nil, err
	}
	if req.Export, err = optionalString(m, keysExport, autoerrors.CodeInvalidFieldType); err != nil {
		return nil, err
	}
	if req.BaseFolder, err = optionalString(m, keysBaseFolder, autoerrors.CodeInvalidFieldType); err != nil {
		return nil, err
	}
	if req.Debug, err = optionalBool(m, keysDebug); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeScanSettings builds ScanSettings from untyped settings. nil yields
// the defaults.
func DecodeScanSettings(raw any) (*ScanSettings, error) {
	m, err := settingsMap(raw)
	if err != nil {
		return nil, err
	}

	settings := &ScanSettings{}
	if settings.BaseFolder, err = optionalString(m, keysBaseFolder, autoerrors.CodeInvalidFolderType); err != nil {
		return nil, err
	}
	if settings.Debug, err = optionalBool(m, keysDebug); err != nil {
		return nil, err
	}
	return settings, nil
}
