package loader

import (
	"fmt"
	"strings"
)

// DocumentError reports one problem found while loading a calibration
// document.
type DocumentError struct {
	Path    string // source file, empty for in-memory documents
	Section string // "layers", "weight_sets", "graph", "product_bounds", ...
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Section != "" {
		sb.WriteString(e.Section)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause error.
func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// ErrorList accumulates document errors so a single load reports every
// problem at once instead of stopping at the first.
type ErrorList struct {
	Errors []*DocumentError
}

// Add appends an error to the list.
func (l *ErrorList) Add(err *DocumentError) {
	l.Errors = append(l.Errors, err)
}

// HasErrors reports whether any errors were accumulated.
func (l *ErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

// Error implements the error interface.
func (l *ErrorList) Error() string {
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "calibration document has %d errors:", len(l.Errors))
	for _, err := range l.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the accumulated errors to errors.Is/As.
func (l *ErrorList) Unwrap() []error {
	errs := make([]error, len(l.Errors))
	for i, err := range l.Errors {
		errs[i] = err
	}
	return errs
}
