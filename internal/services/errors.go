package services

import "errors"

// Stats service errors
var (
	ErrNoResult         = errors.New("no extraction result available yet")
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrRunInProgress    = errors.New("extraction run already in progress")
)
