package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/resolver"
)

// ResolveConflict applies the user's decision to a stored conflict.
// The resulting records are written through the tracker, so the decision
// is pushed on the next Sync and peers converge on it.
func (s *service) ResolveConflict(
	ctx context.Context,
	groupID, conflictID string,
	action models.ResolutionAction,
	manualPayload json.RawMessage,
) ([]models.ChangeLogEntry, error) {
	group, err := s.state.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	c, err := s.state.GetConflict(ctx, groupID, conflictID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conflict: %w", err)
	}

	if c.LocalChange == nil || c.RemoteChange == nil {
		if c.EntityType == models.EntityGroup && c.ConflictType == models.ConflictVersionMismatch {
			return nil, s.acceptManifest(ctx, group, c, action)
		}
		return nil, fmt.Errorf("%w: conflict %s carries no changes", resolver.ErrMissingState, conflictID)
	}

	current, err := s.getEntity(ctx, c.EntityID)
	if err != nil {
		return nil, err
	}
	local := resolver.Side{Record: current, Entry: *c.LocalChange}
	remote := resolver.Side{Entry: *c.RemoteChange}

	if action != models.ActionKeepLocal && remote.Entry.ChangeType != models.ChangeDelete {
		snap, err := s.reader(groupID).GetSnapshot(ctx, group.FolderID, c.EntityID, remote.Entry.Checksum)
		if err != nil && !errors.Is(err, manifest.ErrObjectNotFound) {
			return nil, err
		}
		remote.Record = snap
	}

	res, err := resolver.Apply(*c, action, local, remote, manualPayload)
	if err != nil {
		return nil, err
	}

	var entries []models.ChangeLogEntry
	err = s.queue.Do(ctx, func(ctx context.Context) error {
		batch := storage.Batch{GroupID: groupID}
		for _, ch := range res.Changes {
			ch.Record.GroupID = groupID
			entry, err := s.tracker.TrackLocked(ctx, ch.Record, ch.ChangeType, ch.Description, ch.Metadata)
			if err != nil {
				return err
			}
			batch.Records = append(batch.Records, ch.Record)
			batch.Changes = append(batch.Changes, entry)
		}
		if err := s.local.ApplyBatch(ctx, batch); err != nil {
			return err
		}
		entries = batch.Changes
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply resolution: %w", err)
	}

	if err := s.state.DeleteConflict(ctx, groupID, c.EntityID); err != nil && !errors.Is(err, storage.ErrConflictNotFound) {
		return nil, fmt.Errorf("failed to delete conflict: %w", err)
	}

	s.logger.Info("Conflict resolved",
		"group_id", groupID,
		"entity_id", c.EntityID,
		"conflict_type", c.ConflictType,
		"action", action,
		"changes", len(entries),
	)
	return entries, nil
}

// acceptManifest settles a manifest regression: the device accepts the
// version currently in the cloud as the last one seen.
func (s *service) acceptManifest(ctx context.Context, group *models.JoinedGroup, c *models.SyncConflict, action models.ResolutionAction) error {
	if action != models.ActionKeepLocal && action != models.ActionAcceptRemote {
		return fmt.Errorf("%w: %s for a manifest version mismatch", resolver.ErrUnsupportedAction, action)
	}

	gm, err := s.manifests.FetchManifest(ctx, group.FolderID)
	if err != nil {
		return err
	}

	cursors, err := s.state.GetCursors(ctx, group.GroupID)
	if err != nil {
		return fmt.Errorf("failed to get cursors: %w", err)
	}
	cursors.ManifestVersion = gm.Version
	if err := s.state.SaveCursors(ctx, group.GroupID, cursors); err != nil {
		return fmt.Errorf("failed to save cursors: %w", err)
	}

	if err := s.state.DeleteConflict(ctx, group.GroupID, c.EntityID); err != nil {
		return fmt.Errorf("failed to delete conflict: %w", err)
	}

	s.logger.Info("Manifest version accepted", "group_id", group.GroupID, "version", gm.Version)
	return nil
}
