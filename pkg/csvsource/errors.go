package csvsource

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResourceNotFound matches every *NotFoundError.
	ErrResourceNotFound = errors.New("csv resource not found")
	// ErrEmptyDocument is returned when a document has no header line.
	ErrEmptyDocument = errors.New("csv document is empty")
)

// Attempt records why one candidate path was rejected.
type Attempt struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// NotFoundError reports a logical resource for which no candidate path
// returned a successful response.
type NotFoundError struct {
	Name     string
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("%s (%s)", a.Path, a.Reason))
	}
	return fmt.Sprintf("csv resource %q not found, tried: %s", e.Name, strings.Join(reasons, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrResourceNotFound
}

// Paths lists the attempted paths in the order they were tried.
func (e *NotFoundError) Paths() []string {
	paths := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		paths[i] = a.Path
	}
	return paths
}

// ParseError is a fatal parse failure of a document that was fetched successfully.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowError is a non-fatal problem with one record. Line is 1-based and counts
// the header.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
