// Package tracker records every local mutation as an ordered, checksummed
// change log entry so the sync orchestrator can find what changed since the
// last sync without diffing entities.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/writequeue"
)

// DefaultPageSize размер страницы при ленивом чтении журнала
const DefaultPageSize = 256

// Store is the part of the Local Store the tracker needs
type Store interface {
	storage.EntityStorage
	storage.ChangeStorage
}

// ChangeRequest описывает изменение для RecordChange.
// DeviceID и DeviceName по умолчанию берутся из устройства трекера.
type ChangeRequest struct {
	GroupID     string
	DeviceID    string
	DeviceName  string
	ChangeType  models.ChangeType
	EntityType  models.EntityType
	EntityID    string
	EntityName  string
	MemberID    string
	Checksum    string
	Description string
	Metadata    models.Metadata
}

// Tracker appends local changes to the change log
type Tracker struct {
	store    Store
	queue    *writequeue.Queue
	clock    *crdt.HybridClock
	logger   *slog.Logger
	device   models.Device
	pageSize int
}

// New creates a tracker. Writes go through queue, which must be shared
// with the sync orchestrator.
func New(store Store, queue *writequeue.Queue, clock *crdt.HybridClock, device models.Device, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:    store,
		queue:    queue,
		clock:    clock,
		device:   device,
		logger:   logger,
		pageSize: DefaultPageSize,
	}
}

// SetPageSize меняет размер страницы ChangesSince (для тестов)
func (t *Tracker) SetPageSize(n int) {
	if n > 0 {
		t.pageSize = n
	}
}

// Device returns the device the tracker writes as
func (t *Tracker) Device() models.Device {
	return t.device
}

// RestoreClock advances the device clock past every logged entry.
// Call once at startup so timestamps never go backwards across restarts.
func (t *Tracker) RestoreClock(ctx context.Context) error {
	maxTS, err := t.store.MaxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore clock: %w", err)
	}
	t.clock.SetTimestamp(maxTS)
	return nil
}

// Observe advances the device clock past a timestamp seen on a peer entry
func (t *Tracker) Observe(remoteTimestamp int64) {
	t.clock.Update(remoteTimestamp)
}

// NewEntry builds an entry with a fresh change id and the current clock
// timestamp without persisting it.
func (t *Tracker) NewEntry(req ChangeRequest) models.ChangeLogEntry {
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = t.device.ID
	}
	deviceName := req.DeviceName
	if deviceName == "" && deviceID == t.device.ID {
		deviceName = t.device.Name
	}

	return models.ChangeLogEntry{
		ChangeID:    uuid.New().String(),
		DeviceID:    deviceID,
		DeviceName:  deviceName,
		Timestamp:   t.clock.Tick(),
		ChangeType:  req.ChangeType,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		EntityName:  req.EntityName,
		MemberID:    req.MemberID,
		Checksum:    req.Checksum,
		Description: req.Description,
		Metadata:    req.Metadata.Clone(),
	}
}

// RecordChange appends a new entry to the local log and returns it.
// The entry is visible to ChangesSince once RecordChange returns without error.
// On error the caller must not assume the change was durably logged.
func (t *Tracker) RecordChange(ctx context.Context, req ChangeRequest) (models.ChangeLogEntry, error) {
	if req.GroupID == "" {
		return models.ChangeLogEntry{}, fmt.Errorf("%w: group id is empty", storage.ErrInvalidEntity)
	}

	var entry models.ChangeLogEntry
	err := t.queue.Do(ctx, func(ctx context.Context) error {
		entry = t.NewEntry(req)
		return t.store.ApplyBatch(ctx, storage.Batch{
			GroupID: req.GroupID,
			Changes: []models.ChangeLogEntry{entry},
		})
	})
	if err != nil {
		return models.ChangeLogEntry{}, t.wrap("record change", err)
	}

	t.logger.Debug("change recorded",
		"group_id", req.GroupID,
		"change_id", entry.ChangeID,
		"entity_id", entry.EntityID,
		"change_type", entry.ChangeType,
	)
	return entry, nil
}

// Track writes the entity record and its change entry in one Local Store
// transaction. It stamps version, device, timestamp and checksum on rec,
// and fills the fields/version/baseVersion metadata unless already set.
func (t *Tracker) Track(
	ctx context.Context,
	rec *models.EntityRecord,
	changeType models.ChangeType,
	description string,
	meta models.Metadata,
) (models.ChangeLogEntry, error) {
	var entry models.ChangeLogEntry

	err := t.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		entry, err = t.TrackLocked(ctx, rec, changeType, description, meta)
		if err != nil {
			return err
		}
		return t.store.ApplyBatch(ctx, storage.Batch{
			GroupID: rec.GroupID,
			Records: []*models.EntityRecord{rec},
			Changes: []models.ChangeLogEntry{entry},
		})
	})
	if err != nil {
		return models.ChangeLogEntry{}, t.wrap("track change", err)
	}

	t.logger.Debug("entity tracked",
		"group_id", rec.GroupID,
		"entity_id", rec.ID,
		"entity_type", rec.Type,
		"change_type", changeType,
		"version", rec.Version,
	)
	return entry, nil
}

// TrackLocked prepares rec and its entry without writing them.
// Must be called from inside a queue job (the caller owns the write).
func (t *Tracker) TrackLocked(
	ctx context.Context,
	rec *models.EntityRecord,
	changeType models.ChangeType,
	description string,
	meta models.Metadata,
) (models.ChangeLogEntry, error) {
	if rec.GroupID == "" {
		return models.ChangeLogEntry{}, fmt.Errorf("%w: entity %s has no group", storage.ErrInvalidEntity, rec.ID)
	}

	prev, err := t.store.GetEntity(ctx, rec.ID)
	if err != nil && !errors.Is(err, storage.ErrEntityNotFound) {
		return models.ChangeLogEntry{}, err
	}

	var baseVersion int64
	var prevData []byte
	if prev != nil {
		baseVersion = prev.Version
		prevData = prev.Data
	}

	rec.Deleted = changeType == models.ChangeDelete
	if rec.Deleted && len(rec.Data) == 0 && prev != nil {
		rec.Data = prev.Data
	}
	if rec.Name == "" {
		rec.Name = models.DisplayName(rec.Type, rec.Data)
	}
	if rec.Name == "" && prev != nil {
		rec.Name = prev.Name
	}

	rec.Version = baseVersion + 1
	rec.DeviceID = t.device.ID
	rec.Checksum, err = rec.ComputeChecksum()
	if err != nil {
		return models.ChangeLogEntry{}, fmt.Errorf("failed to compute checksum: %w", err)
	}

	if _, ok := meta.Get(models.MetaFields); !ok && !rec.Deleted {
		fields, err := ChangedFields(prevData, rec.Data)
		if err != nil {
			return models.ChangeLogEntry{}, err
		}
		if len(fields) > 0 {
			meta = meta.Set(models.MetaFields, strings.Join(fields, ","))
		}
	}
	if _, ok := meta.Get(models.MetaVersion); !ok {
		meta = meta.Set(models.MetaVersion, strconv.FormatInt(rec.Version, 10))
	}
	if _, ok := meta.Get(models.MetaBaseVersion); !ok {
		meta = meta.Set(models.MetaBaseVersion, strconv.FormatInt(baseVersion, 10))
	}

	entry := t.NewEntry(ChangeRequest{
		ChangeType:  changeType,
		EntityType:  rec.Type,
		EntityID:    rec.ID,
		EntityName:  rec.Name,
		MemberID:    rec.MemberID,
		Checksum:    rec.Checksum,
		Description: description,
		Metadata:    meta,
	})
	rec.Timestamp = entry.Timestamp

	return entry, nil
}

// ChangesSince returns entries of the group strictly after cursor in log order.
// Unknown or empty cursor yields the full log. The sequence is lazy and
// restartable: ranging over it twice yields the same entries.
func (t *Tracker) ChangesSince(ctx context.Context, groupID, cursor string) iter.Seq2[models.ChangeLogEntry, error] {
	return func(yield func(models.ChangeLogEntry, error) bool) {
		after := cursor
		for {
			page, err := t.store.ChangesAfter(ctx, groupID, after, t.pageSize)
			if err != nil {
				yield(models.ChangeLogEntry{}, t.wrap("read changes", err))
				return
			}

			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}

			if len(page) < t.pageSize {
				return
			}
			after = page[len(page)-1].ChangeID
		}
	}
}

// CollectSince reads ChangesSince into a slice
func (t *Tracker) CollectSince(ctx context.Context, groupID, cursor string) ([]models.ChangeLogEntry, error) {
	var out []models.ChangeLogEntry
	for e, err := range t.ChangesSince(ctx, groupID, cursor) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (t *Tracker) wrap(op string, err error) error {
	if errors.Is(err, writequeue.ErrClosed) {
		return fmt.Errorf("%w: %s: %w", storage.ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
