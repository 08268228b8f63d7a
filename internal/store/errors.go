package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every domain error returned by the store wraps
// exactly one of these, so callers branch with errors.Is.
var (
	// ErrValidation marks malformed or invariant-violating input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation or a delete blocked by
	// existing references.
	ErrConflict = errors.New("conflict")
)

// Kind names an entity collection.
type Kind string

const (
	KindUser     Kind = "user"
	KindTeam     Kind = "team"
	KindProject  Kind = "project"
	KindSprint   Kind = "sprint"
	KindWorkItem Kind = "work item"
)

// Error is a domain error raised by a store operation.
type Error struct {
	Kind    error  // ErrValidation, ErrNotFound or ErrConflict
	Entity  Kind   // collection the failing operation targeted
	ID      string // id of the record, empty on create without explicit id
	Message string
	Refs    []string // referencing ids for conflicts, sorted
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("store: ")
	b.WriteString(string(e.Entity))
	if e.ID != "" {
		b.WriteString(" ")
		b.WriteString(e.ID)
	}
	b.WriteString(": ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.Error())
	}
	if len(e.Refs) > 0 {
		fmt.Fprintf(&b, " (referenced by %s)", strings.Join(e.Refs, ", "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a missing-id failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a conflict failure.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// RefsOf returns the referencing ids carried by a conflict error.
func RefsOf(err error) []string {
	var se *Error
	if errors.As(err, &se) {
		return se.Refs
	}
	return nil
}

func invalid(entity Kind, id, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Entity: entity, ID: id, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity Kind, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id, Message: "not found"}
}

// missingRef reports an unresolved reference from a record being written.
// This is a validation failure of the written record, not a lookup miss.
func missingRef(entity Kind, id string, ref Kind, refID string) error {
	return invalid(entity, id, "%s not found: %s", ref, refID)
}

func conflict(entity Kind, id string, refs []string, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Entity: entity, ID: id, Message: fmt.Sprintf(format, args...), Refs: refs}
}

// Invalidf builds a validation error for packages layered on the store.
func Invalidf(entity Kind, id, format string, args ...any) error {
	return invalid(entity, id, format, args...)
}
