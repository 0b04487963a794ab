package storage

import (
	"context"

	"github.com/iudanet/bandsync/internal/models"
)

//go:generate moq -out statestore_mock.go . StateStore

// DeviceStorage stores the identity of this device
type DeviceStorage interface {
	// GetDevice returns device identity
	// Returns ErrDeviceNotFound before the first run
	GetDevice(ctx context.Context) (*models.Device, error)

	// SaveDevice stores device identity
	SaveDevice(ctx context.Context, device *models.Device) error
}

// GroupStorage stores groups joined by this device
type GroupStorage interface {
	// SaveGroup stores or updates a joined group
	SaveGroup(ctx context.Context, group *models.JoinedGroup) error

	// GetGroup retrieves a joined group
	// Returns ErrGroupNotFound if device has not joined it
	GetGroup(ctx context.Context, groupID string) (*models.JoinedGroup, error)

	// ListGroups returns all joined groups
	ListGroups(ctx context.Context) ([]*models.JoinedGroup, error)

	// DeleteGroup forgets a group together with its cursors and conflicts
	DeleteGroup(ctx context.Context, groupID string) error
}

// CursorStorage stores per-group sync cursors
type CursorStorage interface {
	// GetCursors returns cursors of a group
	// Returns zero cursors if group was never synced
	GetCursors(ctx context.Context, groupID string) (models.Cursors, error)

	// SaveCursors stores cursors of a group
	SaveCursors(ctx context.Context, groupID string, cursors models.Cursors) error
}

// ConflictStorage stores conflicts presented to the user until they are resolved
type ConflictStorage interface {
	// SaveConflicts stores conflicts, replacing an older conflict on the same entity
	SaveConflicts(ctx context.Context, groupID string, conflicts []models.SyncConflict) error

	// ListConflicts returns unresolved conflicts of a group
	ListConflicts(ctx context.Context, groupID string) ([]models.SyncConflict, error)

	// GetConflict retrieves a conflict by ID
	// Returns ErrConflictNotFound if conflict doesn't exist
	GetConflict(ctx context.Context, groupID, conflictID string) (*models.SyncConflict, error)

	// DeleteConflict removes a conflict of an entity
	DeleteConflict(ctx context.Context, groupID, entityID string) error
}

// CredentialStorage stores cloud credentials
type CredentialStorage interface {
	// SaveCredentials stores cloud credentials
	SaveCredentials(ctx context.Context, creds *models.CloudCredentials) error

	// GetCredentials retrieves cloud credentials
	// Returns ErrCredentialsNotFound if nothing was stored
	GetCredentials(ctx context.Context) (*models.CloudCredentials, error)

	// DeleteCredentials removes stored credentials (logout)
	DeleteCredentials(ctx context.Context) error
}

// StateStore is the device state store
type StateStore interface {
	DeviceStorage
	GroupStorage
	CursorStorage
	ConflictStorage
	CredentialStorage
}
