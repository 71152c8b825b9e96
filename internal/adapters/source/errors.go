package source

import "errors"

// Sentinel kinds for document source errors.
var (
	ErrNotFound = errors.New("player document not found")
	ErrFetch    = errors.New("fetch player document failed")
)
