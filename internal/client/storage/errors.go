package storage

import "errors"

// Common client storage errors
var (
	// ErrStorageUnavailable indicates a local store I/O failure.
	// The caller must not assume the write was durable.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrEntityNotFound indicates that entity record was not found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidEntity indicates a record without an assigned id or with an unknown type
	ErrInvalidEntity = errors.New("invalid entity record")

	// ErrChangeNotFound indicates that the entity has no entries in the local log
	ErrChangeNotFound = errors.New("change not found")

	// ErrBlobNotFound indicates that file blob was not found
	ErrBlobNotFound = errors.New("blob not found")

	// ErrDeviceNotFound indicates that device identity was not initialized yet
	ErrDeviceNotFound = errors.New("device identity not found")

	// ErrGroupNotFound indicates that the device has not joined the group
	ErrGroupNotFound = errors.New("group not joined")

	// ErrConflictNotFound indicates that stored conflict was not found
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrCredentialsNotFound indicates that no cloud credentials are stored
	ErrCredentialsNotFound = errors.New("cloud credentials not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
