package service

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrNotStarted      = errors.New("engine not started")
	ErrInvalidActivity = errors.New("invalid activity")
)
