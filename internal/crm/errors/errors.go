package errors

import (
	"fmt"
)

var (
	ErrNotFound       = fmt.Errorf("not found")
	ErrDuplicateEmail = fmt.Errorf("duplicate email")
	ErrInvalidInput   = fmt.Errorf("invalid input")
	// ErrInvalidState is returned when the soft-delete state of a record
	// forbids the operation, e.g. updating a trashed company.
	ErrInvalidState = fmt.Errorf("invalid state")
)
