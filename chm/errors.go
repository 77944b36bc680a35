package chm

import "errors"

// Sentinel errors for map construction and restore.
var (
	ErrInvalidCapacity    = errors.New("invalid initial capacity")
	ErrInvalidLoadFactor  = errors.New("invalid load factor")
	ErrInvalidConcurrency = errors.New("invalid concurrency level")
)
