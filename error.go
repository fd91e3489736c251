package hstore

import (
	"errors"
	"fmt"
	"reflect"
)

// ParseError records hstore parsing errors.  Offset is the position, in
// characters from the start of the input, of the first text that could not be
// consumed.
type ParseError struct {
	Offset int
	Msg    string
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("hstore: %s", pe.Msg)
}

// TypeError records a key or value that can't be represented in an hstore.
// Role is "key" or "value".
type TypeError struct {
	Role string
	Type reflect.Type
}

func (te *TypeError) Error() string {
	got := "<nil>"
	if te.Type != nil {
		got = te.Type.String()
	}
	if te.Role == "" {
		return fmt.Sprintf("hstore: cannot encode %s as hstore", got)
	}
	return fmt.Sprintf("hstore: %ss can only be strings, got %s", te.Role, got)
}

var (
	// ErrNoDumper is returned when no dumper is registered for a Go type.
	ErrNoDumper = errors.New("no dumper registered")
	// ErrNoLoader is returned when no loader is registered for an OID.
	ErrNoLoader = errors.New("no loader registered")
	// ErrUnknownEncoding is returned for an unsupported client encoding name.
	ErrUnknownEncoding = errors.New("unknown client encoding")
)
