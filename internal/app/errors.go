package app

import "errors"

// ErrNotFound reports a lookup for an event id that does not exist.
var ErrNotFound = errors.New("not found")
