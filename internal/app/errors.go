package service

import "errors"

// Sentinel errors returned by Service methods. Domain validation errors
// from the model and rotation packages are passed through wrapped.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrPersonNotFound = errors.New("person not found")
	ErrStateMismatch  = errors.New("stored state does not match configured slots")
)
