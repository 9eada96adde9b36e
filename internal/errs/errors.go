package errs

import (
	"errors"
)

// Common error types
var (
	ErrNoPrivileges    = errors.New("no privileges")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	ErrNotFound        = errors.New("not found")
)
