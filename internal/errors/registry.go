package errors

// Error codes.
const (
	CodeInvalidSettingsType = "A001"
	CodeMissingRouter       = "A002"
	CodeMissingDomain       = "A003"
	CodeInvalidDomainType   = "A004"
	CodeInvalidFieldType    = "A005"
	CodeInvalidDomainName   = "A006"
	CodeInvalidFolderType   = "A007"

	CodeModuleNotFound   = "A020"
	CodeExportNotFound   = "A021"
	CodeModuleLoadFailed = "A022"

	CodeDirectoryUnreadable = "A040"
	CodeNotADirectory       = "A041"
	CodeEntryUnreadable     = "A042"
	CodeMainFileUnreadable  = "A043"

	CodeConfigNotFound = "A060"
	CodeConfigInvalid  = "A061"
)

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrInvalidSettingsType = sentinel(CodeInvalidSettingsType)
	ErrMissingRouter       = sentinel(CodeMissingRouter)
	ErrMissingDomain       = sentinel(CodeMissingDomain)
	ErrInvalidDomainType   = sentinel(CodeInvalidDomainType)
	ErrInvalidFieldType    = sentinel(CodeInvalidFieldType)
	ErrInvalidDomainName   = sentinel(CodeInvalidDomainName)
	ErrInvalidFolderType   = sentinel(CodeInvalidFolderType)

	ErrModuleNotFound   = sentinel(CodeModuleNotFound)
	ErrExportNotFound   = sentinel(CodeExportNotFound)
	ErrModuleLoadFailed = sentinel(CodeModuleLoadFailed)

	ErrDirectoryUnreadable = sentinel(CodeDirectoryUnreadable)
	ErrNotADirectory       = sentinel(CodeNotADirectory)
	ErrEntryUnreadable     = sentinel(CodeEntryUnreadable)
	ErrMainFileUnreadable  = sentinel(CodeMainFileUnreadable)

	ErrConfigNotFound = sentinel(CodeConfigNotFound)
	ErrConfigInvalid  = sentinel(CodeConfigInvalid)
)

func sentinel(code string) *Error {
	return New(code)
}

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Validation Errors (A001-A019)
	// ============================================

	CodeInvalidSettingsType: {
		Category: CategoryValidation,
		Message:  "Settings must be an object",
		Detail:   "Registration and scan settings must be a mapping of named fields.",
	},
	CodeMissingRouter: {
		Category: CategoryValidation,
		Message:  "Router is required",
		Detail:   "A router exposing Mount(host, handler) must be given, or remembered from a previous scan.",
	},
	CodeMissingDomain: {
		Category: CategoryValidation,
		Message:  "Domain name is required",
	},
	CodeInvalidDomainType: {
		Category: CategoryValidation,
		Message:  "Domain name must be a string",
	},
	CodeInvalidFieldType: {
		Category: CategoryValidation,
		Message:  "Field must be a string",
	},
	CodeInvalidDomainName: {
		Category: CategoryValidation,
		Message:  "Domain name must be a single path segment",
		Detail:   "Domain names are used as directory names and may not contain path separators or '..'.",
	},
	CodeInvalidFolderType: {
		Category: CategoryValidation,
		Message:  "Base folder must be a string",
	},

	// ============================================
	// Resolution Errors (A020-A039)
	// ============================================

	CodeModuleNotFound: {
		Category: CategoryResolution,
		Message:  "Module file not found",
		Detail:   "The domain's main file does not exist or is not readable. A fallback error page was mounted.",
	},
	CodeExportNotFound: {
		Category: CategoryResolution,
		Message:  "Export not found",
		Detail:   "The module does not export a handler under the expected name. A fallback error page was mounted.",
	},
	CodeModuleLoadFailed: {
		Category: CategoryResolution,
		Message:  "Module failed to load",
		Detail:   "The module exists but could not be interpreted. A fallback error page was mounted.",
	},

	// ============================================
	// Scan Errors (A040-A059)
	// ============================================

	CodeDirectoryUnreadable: {
		Category: CategoryScan,
		Message:  "Cannot read directory",
	},
	CodeNotADirectory: {
		Category: CategoryScan,
		Message:  "Entry is not a directory",
	},
	CodeEntryUnreadable: {
		Category: CategoryScan,
		Message:  "Cannot read entry",
	},
	CodeMainFileUnreadable: {
		Category: CategoryScan,
		Message:  "Cannot read main file",
	},

	// ============================================
	// Config Errors (A060-A079)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
