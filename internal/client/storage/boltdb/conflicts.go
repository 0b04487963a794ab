package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

// Конфликты хранятся в bucket conflicts/<groupID>, ключ - entityID.
// На одну сущность хранится только последний обнаруженный конфликт.

// SaveConflicts stores conflicts, replacing an older conflict on the same entity
func (s *Storage) SaveConflicts(ctx context.Context, groupID string, conflicts []models.SyncConflict) error {
	if len(conflicts) == 0 {
		return nil
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket(bucketConflicts).CreateBucketIfNotExists([]byte(groupID))
		if err != nil {
			return fmt.Errorf("failed to create group conflicts bucket: %w", err)
		}

		for i := range conflicts {
			if err := putJSON(bucket, conflicts[i].EntityID, &conflicts[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListConflicts returns unresolved conflicts of a group ordered by local timestamp
func (s *Storage) ListConflicts(ctx context.Context, groupID string) ([]models.SyncConflict, error) {
	var conflicts []models.SyncConflict

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts).Bucket([]byte(groupID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var c models.SyncConflict
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to unmarshal conflict %s: %w", k, err)
			}
			conflicts = append(conflicts, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].LocalVersion.Timestamp < conflicts[j].LocalVersion.Timestamp
	})

	return conflicts, nil
}

// GetConflict retrieves a conflict by ID
// Returns ErrConflictNotFound if conflict doesn't exist
func (s *Storage) GetConflict(ctx context.Context, groupID, conflictID string) (*models.SyncConflict, error) {
	conflicts, err := s.ListConflicts(ctx, groupID)
	if err != nil {
		return nil, err
	}

	for i := range conflicts {
		if conflicts[i].ConflictID == conflictID {
			return &conflicts[i], nil
		}
	}

	return nil, storage.ErrConflictNotFound
}

// DeleteConflict removes a conflict of an entity
func (s *Storage) DeleteConflict(ctx context.Context, groupID, entityID string) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts).Bucket([]byte(groupID))
		if bucket == nil || bucket.Get([]byte(entityID)) == nil {
			return storage.ErrConflictNotFound
		}
		return bucket.Delete([]byte(entityID))
	})
}
