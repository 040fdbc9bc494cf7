package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrTransientSync is returned when a remote read or write fails during a session.
	// It never reaches the user; the orchestrator turns it into the dirty flag.
	ErrTransientSync = errors.New("transient sync failure")
	// ErrSerialization is returned when a persisted value cannot be decoded
	ErrSerialization = errors.New("serialization error")
)
