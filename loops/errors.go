package loops

import "errors"

var (
	// ErrInvalidConfig is returned when a Config cannot drive a run.
	ErrInvalidConfig = errors.New("invalid loop config")
	// ErrSizeMismatch is returned when a trial's final set size differs from
	// its successful adds minus successful removes.
	ErrSizeMismatch = errors.New("set size mismatch")
)
