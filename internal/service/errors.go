package service

import "errors"

var (
	// ErrNotFound marks a missing entity. Fatal for queue consumers: the
	// message is dropped, not redriven.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks malformed input, such as an unparseable source URL.
	ErrInvalid = errors.New("invalid")
)
