package storage

import (
	"context"

	"github.com/iudanet/bandsync/internal/models"
)

//go:generate moq -out localstore_mock.go . LocalStore

// Batch is a set of entity writes and change log entries applied atomically
type Batch struct {
	GroupID string
	Records []*models.EntityRecord
	Changes []models.ChangeLogEntry
}

// Empty reports whether the batch has nothing to write
func (b *Batch) Empty() bool {
	return len(b.Records) == 0 && len(b.Changes) == 0
}

// EntityEvent is delivered to Watch subscribers after a committed write
type EntityEvent struct {
	Record *models.EntityRecord
}

// EntityStorage defines typed CRUD over entity records
type EntityStorage interface {
	// GetEntity retrieves an entity record by ID, including soft-deleted ones
	// Returns ErrEntityNotFound if entity doesn't exist
	GetEntity(ctx context.Context, id string) (*models.EntityRecord, error)

	// ListEntities returns non-deleted records of a type within a group
	ListEntities(ctx context.Context, groupID string, entityType models.EntityType) ([]*models.EntityRecord, error)

	// ApplyBatch writes records and change entries in one transaction
	ApplyBatch(ctx context.Context, batch Batch) error

	// Watch subscribes to committed writes of an entity type.
	// The returned func cancels the subscription and closes the channel.
	Watch(entityType models.EntityType) (<-chan EntityEvent, func())
}

// ChangeStorage defines the local append-only change log
type ChangeStorage interface {
	// ChangesAfter returns up to limit entries of the group strictly after cursor in log order.
	// Unknown or empty cursor starts from the beginning of the log.
	ChangesAfter(ctx context.Context, groupID, cursor string, limit int) ([]models.ChangeLogEntry, error)

	// LastChange returns the latest entry of the group log for an entity
	// Returns ErrChangeNotFound if the entity has no entries
	LastChange(ctx context.Context, groupID, entityID string) (*models.ChangeLogEntry, error)

	// CountChanges returns number of entries in the group log
	CountChanges(ctx context.Context, groupID string) (int, error)

	// MaxTimestamp returns the largest entry timestamp across all groups
	// Used to restore the device clock after restart
	MaxTimestamp(ctx context.Context) (int64, error)
}

// BlobStorage defines content-addressed storage for song file contents
type BlobStorage interface {
	// PutBlob stores content under its checksum (idempotent)
	PutBlob(ctx context.Context, checksum string, data []byte) error

	// GetBlob retrieves content by checksum
	// Returns ErrBlobNotFound if blob doesn't exist
	GetBlob(ctx context.Context, checksum string) ([]byte, error)

	// HasBlob checks whether content is present locally
	HasBlob(ctx context.Context, checksum string) (bool, error)
}

// LocalStore is the local relational store the sync core reads from and writes to
type LocalStore interface {
	EntityStorage
	ChangeStorage
	BlobStorage
}
