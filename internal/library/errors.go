package library

import "errors"

// Error kinds returned by the store. Returned errors wrap one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIO              = errors.New("i/o failure")
	ErrCorruptData     = errors.New("corrupt library data")
)
