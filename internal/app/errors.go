package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrRunInProgress = errors.New("aggregation run already in progress")
)
