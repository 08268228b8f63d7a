package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// checkInput runs struct-tag validation and converts failures into a
// validation error naming every offending field.
func (s *Store) checkInput(entity Kind, id string, in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid(entity, id, "%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return invalid(entity, id, "%s", strings.Join(msgs, "; "))
}

// checkField validates a single patched value against the same tag its
// create input carries.
func (s *Store) checkField(entity Kind, id, field, value, tag string) error {
	err := s.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid(entity, id, "%s: %v", field, err)
	}
	return invalid(entity, id, "%s", describe(field, verrs[0]))
}

func describeFieldError(fe validator.FieldError) string {
	return describe(strings.ToLower(fe.Field()), fe)
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return fmt.Sprintf("%s %q is not a valid email address", field, fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validID reports whether an explicit caller-chosen id is acceptable.
func validID(id string) bool {
	if id == "" || len(id) > 32 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

// newID returns explicit when it is usable, or a generated id otherwise.
func newID[T any](kind Kind, explicit string, taken map[string]*T) (string, error) {
	if explicit == "" {
		return uniqueID(kind, taken)
	}
	if !validID(explicit) {
		return "", invalid(kind, explicit, "id must be 1-32 letters, digits, '-', '_' or '.'")
	}
	if _, ok := taken[explicit]; ok {
		return "", conflict(kind, explicit, nil, "id already exists")
	}
	return explicit, nil
}
