package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound     = errors.New("not found")
	ErrPersist      = errors.New("persist tasks")
	ErrInvalidTheme = errors.New("invalid theme")
	ErrDuplicateID  = errors.New("duplicate task id")
)
