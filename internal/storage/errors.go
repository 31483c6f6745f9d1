package storage

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist or is not
	// visible to the requesting owner.
	ErrNotFound = errors.New("not found")

	// ErrSessionNotActive is returned when a mutation targets a session that
	// has already finished or been cancelled.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrActiveSessionExists is returned when starting a session while the
	// owner already has one in progress.
	ErrActiveSessionExists = errors.New("an active session already exists")

	// ErrSetCompleted is returned when deleting or completing a set that was
	// already completed.
	ErrSetCompleted = errors.New("set already completed")
)
