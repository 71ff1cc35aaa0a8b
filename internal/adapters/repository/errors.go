package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrClosed        = errors.New("store closed")
	ErrInvalidRecord = errors.New("invalid record")
)
