package domain

import "errors"

var (
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidText       = errors.New("invalid text")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidDeadline   = errors.New("invalid deadline")
	ErrInvalidFilterMode = errors.New("invalid filter mode")
)
