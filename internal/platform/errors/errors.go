package apperrors

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrNotCached     = errors.New("artifact not cached")
	ErrRunActive     = errors.New("a run is already active")
	ErrToolNotFound  = errors.New("tool not found in catalog")
	ErrPreFlightHold = errors.New("pre-flight checks failed")
)
