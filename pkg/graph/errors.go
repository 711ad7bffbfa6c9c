package graph

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a node type id has no registered factory.
var ErrUnknownType = errors.New("node type not registered")

// TypeMismatchError reports an attempt to store a reference in a field whose
// declared target constraint rejects it. This is a programming error: the
// mutation is refused, nothing is silently truncated.
type TypeMismatchError struct {
	Field string
	Want  TypeID
	Got   TypeID
}

func (e *TypeMismatchError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("field %q cannot reference node of type %q", e.Field, e.Got)
	}

	return fmt.Sprintf("field %q cannot reference node of type %q (want %q)", e.Field, e.Got, e.Want)
}
