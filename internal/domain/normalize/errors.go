package normalize

import (
	"errors"
	"fmt"
)

// Sentinel kinds wrapped by ParseError.
var (
	ErrMalformedDocument = errors.New("malformed handicap document")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidDate       = errors.New("invalid revision date")
)

// DocumentIndex is the ParseError index of failures not tied to one revision.
const DocumentIndex = -1

// ParseError reports a document or field that could not be normalized.
type ParseError struct {
	Player string
	// Index is the revision position in the document, or DocumentIndex.
	Index int
	Field string
	// Raw is the offending token, if any.
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	where := "document"
	if e.Index != DocumentIndex {
		where = fmt.Sprintf("revision %d", e.Index)
	}
	msg := fmt.Sprintf("normalize %q: %s field %s: %v", e.Player, where, e.Field, e.Err)
	if e.Raw != "" {
		msg += fmt.Sprintf(" (%q)", e.Raw)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
