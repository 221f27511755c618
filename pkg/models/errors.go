package models

import "errors"

// Domain errors shared by the store adapters and the session.
var (
	ErrItemNotFound  = errors.New("vocabulary item not found")
	ErrEmptyTable    = errors.New("vocabulary table is empty")
	ErrInvalidConfig = errors.New("invalid session configuration")
)
