package store

import "errors"

// Sentinel errors.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned for empty record ids.
	ErrInvalidID = errors.New("invalid record id")
	// ErrAlreadyExists is returned when inserting a record whose id is taken.
	ErrAlreadyExists = errors.New("record already exists")
)
