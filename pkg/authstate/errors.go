package authstate

import "errors"

// ErrAlreadyStarted is returned by Start when the manager is already running.
var ErrAlreadyStarted = errors.New("auth state manager already started")
