package catalog

import (
	"errors"
	"fmt"
)

// Resolution errors. They describe a mismatch between a binding and the schema
// and are always returned to the caller, never skipped.
var (
	ErrUnknownRelationship     = errors.New("unknown relationship")
	ErrUnsupportedNestingDepth = errors.New("unsupported nesting depth")
	ErrInvalidDirection        = errors.New("invalid sort direction")
	ErrUnknownAttribute        = errors.New("unknown attribute")
	ErrUndeclaredFilter        = errors.New("undeclared filter")
	ErrInvalidValue            = errors.New("invalid filter value")
)

// Definition errors.
var (
	ErrInvalidCatalog  = errors.New("invalid catalog definition")
	ErrCatalogNotFound = errors.New("catalog not found")
)

// ResolveError carries the context of a failed resolution. errors.Is matches Kind.
type ResolveError struct {
	Kind   error
	Entity string
	Path   string
	Detail string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Kind, e.Path)
	if e.Entity != "" {
		msg += " on " + e.Entity
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Kind
}

func resolveErr(kind error, entity, path, detail string) error {
	return &ResolveError{Kind: kind, Entity: entity, Path: path, Detail: detail}
}

// IsResolutionError reports whether err comes from binding resolution
// (as opposed to a missing catalog or an infrastructure failure).
func IsResolutionError(err error) bool {
	var re *ResolveError
	return errors.As(err, &re)
}
