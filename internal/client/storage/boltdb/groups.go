package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

// SaveGroup stores or updates a joined group
func (s *Storage) SaveGroup(ctx context.Context, group *models.JoinedGroup) error {
	if group.GroupID == "" {
		return fmt.Errorf("group id is empty")
	}
	return s.update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(bucketGroups), group.GroupID, group)
	})
}

// GetGroup retrieves a joined group
// Returns ErrGroupNotFound if device has not joined it
func (s *Storage) GetGroup(ctx context.Context, groupID string) (*models.JoinedGroup, error) {
	var group models.JoinedGroup

	err := s.view(func(tx *bbolt.Tx) error {
		found, err := getJSON(tx.Bucket(bucketGroups), groupID, &group)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrGroupNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// ListGroups returns all joined groups ordered by group id
func (s *Storage) ListGroups(ctx context.Context) ([]*models.JoinedGroup, error) {
	var groups []*models.JoinedGroup

	err := s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketGroups).ForEach(func(k, v []byte) error {
			group := &models.JoinedGroup{}
			if err := json.Unmarshal(v, group); err != nil {
				return fmt.Errorf("failed to unmarshal group %s: %w", k, err)
			}
			groups = append(groups, group)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// DeleteGroup forgets a group together with its cursors and conflicts
func (s *Storage) DeleteGroup(ctx context.Context, groupID string) error {
	return s.update(func(tx *bbolt.Tx) error {
		groups := tx.Bucket(bucketGroups)
		if groups.Get([]byte(groupID)) == nil {
			return storage.ErrGroupNotFound
		}

		if err := groups.Delete([]byte(groupID)); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		if err := tx.Bucket(bucketCursors).Delete([]byte(groupID)); err != nil {
			return fmt.Errorf("failed to delete cursors: %w", err)
		}

		conflicts := tx.Bucket(bucketConflicts)
		if conflicts.Bucket([]byte(groupID)) != nil {
			if err := conflicts.DeleteBucket([]byte(groupID)); err != nil {
				return fmt.Errorf("failed to delete conflicts: %w", err)
			}
		}
		return nil
	})
}

// GetCursors returns cursors of a group
// Returns zero cursors if group was never synced
func (s *Storage) GetCursors(ctx context.Context, groupID string) (models.Cursors, error) {
	var cursors models.Cursors

	err := s.view(func(tx *bbolt.Tx) error {
		_, err := getJSON(tx.Bucket(bucketCursors), groupID, &cursors)
		return err
	})
	if err != nil {
		return models.Cursors{}, fmt.Errorf("failed to get cursors: %w", err)
	}

	return cursors, nil
}

// SaveCursors stores cursors of a group
func (s *Storage) SaveCursors(ctx context.Context, groupID string, cursors models.Cursors) error {
	return s.update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(bucketCursors), groupID, cursors)
	})
}
