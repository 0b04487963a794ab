package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/metrics"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/resolver"
)

// mergeResult итог критической секции цикла
type mergeResult struct {
	toPush    []models.ChangeLogEntry
	conflicts []models.SyncConflict
	settled   []string // сущности, чьи сохраненные конфликты больше не актуальны
	snapshots []*models.EntityRecord
	applied   int
	merged    int
}

// Sync performs full synchronization of a group:
// 1. Fetches the manifest and checks app compatibility
// 2. Pulls peer entries after the remote cursor and downloads their snapshots
// 3. Merges them with unpushed local entries in one Local Store transaction
// 4. Uploads snapshots, appends local entries to the remote log, then moves cursors
// 5. Publishes device presence
//
// Concurrent calls for one group share the in-flight cycle.
// The result is never nil and its Status is set also when an error is returned.
func (s *service) Sync(ctx context.Context, groupID string) (*SyncResult, error) {
	v, err, shared := s.flight.Do(groupID, func() (any, error) {
		return s.sync(ctx, groupID)
	})
	if shared {
		s.logger.Debug("joined in-flight synchronization", "group_id", groupID)
	}
	return v.(*SyncResult), err
}

func (s *service) sync(ctx context.Context, groupID string) (*SyncResult, error) {
	s.logger.Info("Starting synchronization", "group_id", groupID)
	start := s.now()
	s.setStatus(groupID, models.StatusSyncing)

	result, newConflicts, err := s.runCycle(ctx, groupID)
	if err != nil {
		result.Status = StatusFromError(err)
	}
	s.setStatus(groupID, result.Status)

	s.metrics.ObserveCycle(groupID, metrics.CycleStats{
		Status:    result.Status,
		Duration:  s.now().Sub(start),
		Pulled:    result.Pulled,
		Pushed:    result.Pushed,
		Applied:   result.Applied,
		Merged:    result.Merged,
		Conflicts: newConflicts,
	})

	if err != nil {
		s.logger.Error("Synchronization failed", "group_id", groupID, "status", result.Status, "error", err)
		return result, err
	}

	s.logger.Info("Synchronization completed",
		"group_id", groupID,
		"status", result.Status,
		"pulled", result.Pulled,
		"pushed", result.Pushed,
		"applied", result.Applied,
		"merged", result.Merged,
		"skipped", result.Skipped,
		"conflicts", len(result.Conflicts),
	)
	return result, nil
}

func (s *service) runCycle(ctx context.Context, groupID string) (*SyncResult, int, error) {
	result := &SyncResult{Status: models.StatusSyncing}

	group, err := s.state.GetGroup(ctx, groupID)
	if err != nil {
		return result, 0, fmt.Errorf("failed to get group: %w", err)
	}
	cursors, err := s.state.GetCursors(ctx, groupID)
	if err != nil {
		return result, 0, fmt.Errorf("failed to get cursors: %w", err)
	}

	gm, err := s.manifests.FetchManifest(ctx, group.FolderID)
	if err != nil {
		return result, 0, err
	}
	if err := CheckCompatibility(s.cfg.AppVersion, gm); err != nil {
		return result, 0, err
	}
	result.ManifestVersion = gm.Version

	var regression []models.SyncConflict
	if gm.Version < cursors.ManifestVersion {
		s.logger.Warn("manifest version went backwards",
			"group_id", groupID,
			"seen", cursors.ManifestVersion,
			"fetched", gm.Version,
		)
		regression = append(regression, manifestRegression(group, gm, cursors.ManifestVersion))
	}

	docs, err := s.documents(groupID, gm.SyncSettings.EncryptBlobs)
	if err != nil {
		return result, 0, err
	}

	remote, err := docs.FetchChangesSince(ctx, group.FolderID, cursors.Remote)
	if err != nil {
		return result, 0, err
	}
	lastRemote := cursors.Remote
	if len(remote) > 0 {
		lastRemote = remote[len(remote)-1].ChangeID
	}

	own := s.tracker.Device().ID
	foreign := make([]models.ChangeLogEntry, 0, len(remote))
	for _, e := range remote {
		if e.DeviceID == own {
			continue
		}
		s.tracker.Observe(e.Timestamp)
		foreign = append(foreign, e)
	}
	result.Pulled = len(foreign)
	s.logger.Info("Collected remote changes", "group_id", groupID, "count", len(foreign))

	winners := crdt.CollapseEntries(foreign).Entries()
	snapshots, skipped, err := s.prefetch(ctx, docs, group, winners)
	if err != nil {
		return result, 0, err
	}
	result.Skipped = skipped

	var merged mergeResult
	err = s.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		merged, err = s.merge(ctx, group, cursors, gm, winners, snapshots)
		return err
	})
	if err != nil {
		return result, 0, fmt.Errorf("failed to merge changes: %w", err)
	}
	result.Applied = merged.applied
	result.Merged = merged.merged

	conflicts := append(regression, merged.conflicts...)
	if err := s.state.SaveConflicts(ctx, groupID, conflicts); err != nil {
		return result, 0, fmt.Errorf("failed to save conflicts: %w", err)
	}
	for _, entityID := range merged.settled {
		if err := s.state.DeleteConflict(ctx, groupID, entityID); err != nil && !errors.Is(err, storage.ErrConflictNotFound) {
			return result, len(conflicts), fmt.Errorf("failed to delete settled conflict: %w", err)
		}
	}

	if err := s.upload(ctx, docs, group, merged.snapshots); err != nil {
		return result, len(conflicts), err
	}

	next := models.Cursors{
		Local:           cursors.Local,
		Remote:          lastRemote,
		ManifestVersion: max(gm.Version, cursors.ManifestVersion),
	}
	if len(merged.toPush) > 0 {
		if _, err := docs.AppendChanges(ctx, group.FolderID, merged.toPush); err != nil {
			return result, len(conflicts), err
		}
		next.Local = merged.toPush[len(merged.toPush)-1].ChangeID
		result.Pushed = len(merged.toPush)
	}
	if err := s.state.SaveCursors(ctx, groupID, next); err != nil {
		return result, len(conflicts), fmt.Errorf("failed to save cursors: %w", err)
	}

	result.Devices = s.presence(ctx, docs, group, gm)

	result.Conflicts, err = s.state.ListConflicts(ctx, groupID)
	if err != nil {
		return result, len(conflicts), fmt.Errorf("failed to list conflicts: %w", err)
	}
	result.Status = models.StatusUpToDate
	if len(result.Conflicts) > 0 {
		result.Status = models.StatusConflictsDetected
	}
	return result, len(conflicts), nil
}

// merge runs inside the write queue: it reads unpushed local entries and
// applies remote winners in one batch, so no local edit can slip between.
func (s *service) merge(
	ctx context.Context,
	group *models.JoinedGroup,
	cursors models.Cursors,
	gm *models.GroupManifest,
	winners []*models.ChangeLogEntry,
	snapshots map[string]*models.EntityRecord,
) (mergeResult, error) {
	var out mergeResult

	local, err := s.tracker.CollectSince(ctx, group.GroupID, cursors.Local)
	if err != nil {
		return out, err
	}
	localLast := crdt.CollapseEntries(local)

	// снапшоты локальных изменений снимаются до применения удаленных
	pending := make(map[string]*models.EntityRecord)
	for _, e := range localLast.Entries() {
		if e.ChangeType == models.ChangeDelete {
			continue
		}
		rec, err := s.getEntity(ctx, e.EntityID)
		if err != nil {
			return out, err
		}
		if rec != nil && rec.Checksum == e.Checksum {
			pending[e.EntityID] = rec
		}
	}

	batch := storage.Batch{GroupID: group.GroupID}
	opts := resolver.OptionsFrom(gm.SyncSettings)
	author := authorName(gm)

	for _, r := range winners {
		current, err := s.getEntity(ctx, r.EntityID)
		if err != nil {
			return out, err
		}
		snapshot := snapshots[r.EntityID]

		l := localLast.Get(r.EntityID)
		if l == nil {
			l, err = s.pushedEdit(ctx, group.GroupID, current, r)
			if err != nil {
				return out, err
			}
		}
		if l == nil {
			if _, ok := r.Metadata.Get(models.MetaResolution); ok {
				out.settled = append(out.settled, r.EntityID)
			}
			if !remoteApplies(current, r) {
				continue
			}
			rec := remoteRecord(group, r, current, snapshot)
			if rec == nil {
				continue
			}
			batch.Records = append(batch.Records, rec)
			out.applied++
			continue
		}

		localSide := resolver.Side{Record: current, Entry: *l}
		remoteSide := resolver.Side{Record: snapshot, Entry: *r}
		outcome := resolver.Classify(localSide, remoteSide, opts)

		switch outcome.Kind {
		case resolver.OutcomeIdentical:
			out.settled = append(out.settled, r.EntityID)

		case resolver.OutcomeLastWriterWins:
			out.settled = append(out.settled, r.EntityID)
			if !outcome.RemoteWins {
				continue
			}
			if rec := remoteRecord(group, r, current, snapshot); rec != nil {
				batch.Records = append(batch.Records, rec)
				out.applied++
			}

		case resolver.OutcomeConflict:
			c := resolver.NewConflict(group.GroupID, localSide, remoteSide, outcome, author)
			if outcome.CanAutoResolve {
				entries, records, err := s.autoResolve(ctx, group, c, localSide, remoteSide)
				if err == nil {
					batch.Records = append(batch.Records, records...)
					batch.Changes = append(batch.Changes, entries...)
					for _, rec := range records {
						pending[rec.ID] = rec.Clone()
					}
					out.settled = append(out.settled, r.EntityID)
					out.merged++
					continue
				}
				s.logger.Warn("automatic merge failed, reporting conflict",
					"entity_id", r.EntityID,
					"error", err,
				)
				c.CanAutoResolve = false
			}
			s.logger.Info("Conflict detected",
				"group_id", group.GroupID,
				"entity_id", c.EntityID,
				"conflict_type", c.ConflictType,
			)
			out.conflicts = append(out.conflicts, c)
		}
	}

	if err := s.local.ApplyBatch(ctx, batch); err != nil {
		return out, err
	}

	out.toPush = append(local, batch.Changes...)
	for _, e := range crdt.CollapseEntries(out.toPush).Entries() {
		if rec, ok := pending[e.EntityID]; ok && rec.Checksum == e.Checksum {
			out.snapshots = append(out.snapshots, rec)
		}
	}
	return out, nil
}

func (s *service) autoResolve(
	ctx context.Context,
	group *models.JoinedGroup,
	c models.SyncConflict,
	local, remote resolver.Side,
) ([]models.ChangeLogEntry, []*models.EntityRecord, error) {
	res, err := resolver.AutoResolve(c, local, remote)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]models.ChangeLogEntry, 0, len(res.Changes))
	records := make([]*models.EntityRecord, 0, len(res.Changes))
	for _, ch := range res.Changes {
		ch.Record.GroupID = group.GroupID
		entry, err := s.tracker.TrackLocked(ctx, ch.Record, ch.ChangeType, ch.Description, ch.Metadata)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
		records = append(records, ch.Record)
	}
	return entries, records, nil
}

// pushedEdit returns this device's already pushed entry for the entity when
// the remote change was made against an older version than that entry
// produced. Such a change is concurrent with ours and goes to the resolver.
func (s *service) pushedEdit(
	ctx context.Context,
	groupID string,
	current *models.EntityRecord,
	r *models.ChangeLogEntry,
) (*models.ChangeLogEntry, error) {
	if current == nil || current.DeviceID != s.tracker.Device().ID {
		return nil, nil
	}
	base, ok := r.Metadata.Int(models.MetaBaseVersion)
	if !ok || base >= current.Version {
		return nil, nil
	}

	last, err := s.local.LastChange(ctx, groupID, r.EntityID)
	if errors.Is(err, storage.ErrChangeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last change of %s: %w", r.EntityID, err)
	}
	if last.Checksum != current.Checksum {
		return nil, nil
	}

	s.logger.Debug("remote change based on a version this device already replaced",
		"entity_id", r.EntityID,
		"remote_base", base,
		"local_version", current.Version,
	)
	return last, nil
}

func (s *service) getEntity(ctx context.Context, id string) (*models.EntityRecord, error) {
	rec, err := s.local.GetEntity(ctx, id)
	if errors.Is(err, storage.ErrEntityNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity %s: %w", id, err)
	}
	return rec, nil
}

// remoteApplies: a remote-only change is applied unless the local record
// already has its state or was written later.
func remoteApplies(current *models.EntityRecord, r *models.ChangeLogEntry) bool {
	if current == nil {
		return true
	}
	if current.Checksum == r.Checksum {
		return false
	}
	incoming := &models.EntityRecord{Timestamp: r.Timestamp, DeviceID: r.DeviceID}
	return !current.IsNewerThan(incoming)
}

// remoteRecord builds the local record for a remote change.
// Returns nil when the snapshot of a non-delete change is unavailable.
func remoteRecord(group *models.JoinedGroup, r *models.ChangeLogEntry, current, snapshot *models.EntityRecord) *models.EntityRecord {
	var rec *models.EntityRecord
	switch {
	case r.ChangeType == models.ChangeDelete && current != nil:
		rec = current.Clone()
		rec.Deleted = true
		rec.Checksum = crypto.TombstoneChecksum
	case r.ChangeType == models.ChangeDelete:
		rec = &models.EntityRecord{
			ID:       r.EntityID,
			Type:     r.EntityType,
			Name:     r.EntityName,
			Data:     json.RawMessage("{}"),
			Deleted:  true,
			Checksum: crypto.TombstoneChecksum,
		}
	case snapshot == nil:
		return nil
	default:
		rec = snapshot.Clone()
		rec.Deleted = false
		rec.Checksum = r.Checksum
	}

	rec.GroupID = group.GroupID
	rec.Timestamp = r.Timestamp
	rec.DeviceID = r.DeviceID
	if v, ok := r.Metadata.Int(models.MetaVersion); ok {
		rec.Version = v
	} else if current != nil {
		rec.Version = current.Version + 1
	}
	return rec
}

// manifestRegression conflict on the GROUP entity when the fetched manifest
// is older than one this device has already seen
func manifestRegression(group *models.JoinedGroup, gm *models.GroupManifest, seen int64) models.SyncConflict {
	return models.SyncConflict{
		ConflictID:   uuid.New().String(),
		GroupID:      group.GroupID,
		EntityType:   models.EntityGroup,
		EntityID:     group.GroupID,
		EntityName:   gm.Name,
		ConflictType: models.ConflictVersionMismatch,
		LocalVersion: models.ConflictVersion{
			Description: fmt.Sprintf("manifest version %d seen earlier", seen),
		},
		RemoteVersion: models.ConflictVersion{
			Description: fmt.Sprintf("manifest version %d in the cloud", gm.Version),
			Timestamp:   gm.LastModified,
		},
	}
}

// prefetch downloads snapshots of remote winners (and song file contents)
// with bounded parallelism. Missing or corrupt snapshots are skipped.
func (s *service) prefetch(
	ctx context.Context,
	docs *manifest.Manager,
	group *models.JoinedGroup,
	winners []*models.ChangeLogEntry,
) (map[string]*models.EntityRecord, int, error) {
	var mu stdsync.Mutex
	snapshots := make(map[string]*models.EntityRecord, len(winners))
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)

	for _, e := range winners {
		if e.ChangeType == models.ChangeDelete {
			continue
		}
		g.Go(func() error {
			rec, err := docs.GetSnapshot(gctx, group.FolderID, e.EntityID, e.Checksum)
			if errors.Is(err, manifest.ErrObjectNotFound) || errors.Is(err, manifest.ErrObjectCorrupt) {
				s.logger.Warn("skipping change without readable snapshot",
					"entity_id", e.EntityID,
					"change_id", e.ChangeID,
					"error", err,
				)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}

			if rec.Type == models.EntitySongFile {
				if err := s.fetchFile(gctx, docs, group, rec); err != nil {
					return err
				}
			}

			mu.Lock()
			snapshots[e.EntityID] = rec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return snapshots, skipped, nil
}

func (s *service) fetchFile(ctx context.Context, docs *manifest.Manager, group *models.JoinedGroup, rec *models.EntityRecord) error {
	var file models.SongFile
	if err := rec.Decode(&file); err != nil || file.FileChecksum == "" {
		return nil
	}

	has, err := s.local.HasBlob(ctx, file.FileChecksum)
	if err != nil {
		return fmt.Errorf("failed to check blob: %w", err)
	}
	if has {
		return nil
	}

	data, err := docs.GetFile(ctx, group.FolderID, rec.ID, file.FileChecksum)
	if errors.Is(err, manifest.ErrObjectNotFound) || errors.Is(err, manifest.ErrObjectCorrupt) {
		s.logger.Warn("song file content unavailable", "entity_id", rec.ID, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	return s.queue.Do(ctx, func(ctx context.Context) error {
		return s.local.PutBlob(ctx, file.FileChecksum, data)
	})
}

// upload pushes snapshots of outgoing changes and the contents of song files
func (s *service) upload(ctx context.Context, docs *manifest.Manager, group *models.JoinedGroup, records []*models.EntityRecord) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)

	for _, rec := range records {
		g.Go(func() error {
			if err := docs.PutSnapshot(gctx, group.FolderID, rec); err != nil {
				return err
			}
			if rec.Type != models.EntitySongFile {
				return nil
			}
			return s.uploadFile(gctx, docs, group, rec)
		})
	}
	return g.Wait()
}

func (s *service) uploadFile(ctx context.Context, docs *manifest.Manager, group *models.JoinedGroup, rec *models.EntityRecord) error {
	var file models.SongFile
	if err := rec.Decode(&file); err != nil || file.FileChecksum == "" {
		return nil
	}

	data, err := s.local.GetBlob(ctx, file.FileChecksum)
	if errors.Is(err, storage.ErrBlobNotFound) {
		s.logger.Warn("song file content missing locally", "entity_id", rec.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}
	return docs.PutFile(ctx, group.FolderID, rec.ID, file.FileChecksum, data)
}

// presence publishes this device and lists peers. Failures are not fatal.
func (s *service) presence(ctx context.Context, docs *manifest.Manager, group *models.JoinedGroup, gm *models.GroupManifest) []models.DeviceInfo {
	device := s.tracker.Device()
	err := docs.PublishDevice(ctx, group.FolderID, models.DeviceInfo{
		DeviceID:   device.ID,
		DeviceName: device.Name,
		AppVersion: s.cfg.AppVersion,
		MemberID:   group.MemberID,
		LastSeen:   s.now().UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("failed to publish device", "group_id", group.GroupID, "error", err)
	}

	devices, err := docs.ListDevices(ctx, group.FolderID, gm.SyncSettings.DeviceOnlineWindow)
	if err != nil {
		s.logger.Warn("failed to list devices", "group_id", group.GroupID, "error", err)
		return nil
	}
	return devices
}
