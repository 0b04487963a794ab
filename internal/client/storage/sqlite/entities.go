package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/validation"
)

const entityColumns = `id, group_id, type, name, member_id, device_id, checksum, data,
	version, timestamp, deleted, updated_at`

// GetEntity retrieves an entity record by ID, including soft-deleted ones
// Returns ErrEntityNotFound if entity doesn't exist
func (s *Storage) GetEntity(ctx context.Context, id string) (*models.EntityRecord, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = ?`

	rec, err := scanEntity(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, unavailable("get entity", err)
	}

	return rec, nil
}

// ListEntities returns non-deleted records of a type within a group
// Returns empty slice if no entities found
func (s *Storage) ListEntities(ctx context.Context, groupID string, entityType models.EntityType) ([]*models.EntityRecord, error) {
	query := `SELECT ` + entityColumns + `
		FROM entities
		WHERE group_id = ? AND type = ? AND deleted = 0
		ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, groupID, string(entityType))
	if err != nil {
		return nil, unavailable("list entities", err)
	}
	defer rows.Close()

	var records []*models.EntityRecord
	for rows.Next() {
		rec, err := scanEntity(rows)
		if err != nil {
			return nil, unavailable("scan entity", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("rows iteration", err)
	}

	return records, nil
}

// ApplyBatch writes records and change entries in one transaction.
// Entries already present in the log (same change id) are skipped,
// so re-applying the same batch is a no-op.
func (s *Storage) ApplyBatch(ctx context.Context, batch storage.Batch) error {
	if batch.Empty() {
		return nil
	}

	for _, rec := range batch.Records {
		if err := validateRecord(rec); err != nil {
			return err
		}
	}
	for i := range batch.Changes {
		if err := batch.Changes[i].Validate(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidEntity, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UnixMilli()
	for _, rec := range batch.Records {
		if err := upsertEntity(ctx, tx, batch.GroupID, rec, now); err != nil {
			return err
		}
	}

	for i := range batch.Changes {
		if err := insertChange(ctx, tx, batch.GroupID, &batch.Changes[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}

	for _, rec := range batch.Records {
		s.notify(rec)
	}

	return nil
}

func validateRecord(rec *models.EntityRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", storage.ErrInvalidEntity)
	}
	if err := validation.ValidateEntityID(rec.ID); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrInvalidEntity, err)
	}
	if !rec.Type.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", storage.ErrInvalidEntity, rec.Type)
	}
	if rec.Checksum == "" {
		return fmt.Errorf("%w: entity %s has no checksum", storage.ErrInvalidEntity, rec.ID)
	}
	return nil
}

func upsertEntity(ctx context.Context, tx *sql.Tx, groupID string, rec *models.EntityRecord, now int64) error {
	if rec.GroupID == "" {
		rec.GroupID = groupID
	}

	query := `
		INSERT INTO entities (` + entityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id,
			type = excluded.type,
			name = excluded.name,
			member_id = excluded.member_id,
			device_id = excluded.device_id,
			checksum = excluded.checksum,
			data = excluded.data,
			version = excluded.version,
			timestamp = excluded.timestamp,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		rec.ID,
		rec.GroupID,
		string(rec.Type),
		rec.Name,
		rec.MemberID,
		rec.DeviceID,
		rec.Checksum,
		[]byte(rec.Data),
		rec.Version,
		rec.Timestamp,
		boolToInt(rec.Deleted),
		now,
	)
	if err != nil {
		return unavailable("upsert entity", err)
	}

	rec.UpdatedAt = time.UnixMilli(now)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*models.EntityRecord, error) {
	rec := &models.EntityRecord{}
	var (
		entityType string
		data       []byte
		deleted    int
		updatedAt  int64
	)

	err := row.Scan(
		&rec.ID,
		&rec.GroupID,
		&entityType,
		&rec.Name,
		&rec.MemberID,
		&rec.DeviceID,
		&rec.Checksum,
		&data,
		&rec.Version,
		&rec.Timestamp,
		&deleted,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = models.EntityType(entityType)
	if len(data) > 0 {
		rec.Data = json.RawMessage(data)
	}
	rec.Deleted = intToBool(deleted)
	rec.UpdatedAt = time.UnixMilli(updatedAt)

	return rec, nil
}
