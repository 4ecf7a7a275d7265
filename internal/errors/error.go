package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryResolution Category = "resolution"
	CategoryScan       Category = "scan"
	CategoryConfig     Category = "config"
)

// Location represents a source code location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a coded autoloader error.
type Error struct {
	// Code is a unique error identifier (e.g., "A020").
	Code string

	// Category is the error type (validation, resolution, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Domain, Path, Export and Field identify what the error is about.
	// Each is optional and depends on the kind.
	Domain string
	Path   string
	Export string
	Field  string

	// Location is the source location of a load failure, if known.
	Location *Location

	// Context contains surrounding source code lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if subject := e.subject(); subject != "" {
		b.WriteString(" (")
		b.WriteString(subject)
		b.WriteString(")")
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

func (e *Error) subject() string {
	var parts []string
	if e.Domain != "" {
		parts = append(parts, fmt.Sprintf("domain %q", e.Domain))
	}
	if e.Export != "" {
		parts = append(parts, fmt.Sprintf("export %q", e.Export))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %q", e.Field))
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	return strings.Join(parts, ", ")
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target has the same code. It lets callers match
// against the exported sentinels regardless of the subject fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDomain sets the domain the error is about.
func (e *Error) WithDomain(domain string) *Error {
	e.Domain = domain
	return e
}

// WithPath sets the filesystem path the error is about.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithExport sets the export name the error is about.
func (e *Error) WithExport(export string) *Error {
	e.Export = export
	return e
}

// WithField sets the settings field the error is about.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// positionPattern matches a leading "file.go:line:column" as printed by
// go/scanner and yaegi.
var positionPattern = regexp.MustCompile(`^([^:\n]+\.go):(\d+):(\d+)`)

// WithLocationFromError sets the location from the first error in err's
// chain whose message starts with "file.go:line:column".
func (e *Error) WithLocationFromError(err error) *Error {
	for ; err != nil; err = stderrors.Unwrap(err) {
		m := positionPattern.FindStringSubmatch(err.Error())
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		if line > 0 {
			e.Location = &Location{File: m[1], Line: line, Column: col}
			e.Context = readContextLines(m[1], line, 5)
		}
		return e
	}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
