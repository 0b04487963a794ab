package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

const changeColumns = `change_id, device_id, device_name, change_type, entity_type, entity_id,
	entity_name, member_id, checksum, description, metadata, timestamp`

// ChangesAfter returns up to limit entries of the group strictly after cursor in log order.
// Unknown or empty cursor starts from the beginning of the log.
func (s *Storage) ChangesAfter(ctx context.Context, groupID, cursor string, limit int) ([]models.ChangeLogEntry, error) {
	var afterSeq int64
	if cursor != "" {
		err := s.db.QueryRowContext(ctx,
			`SELECT seq FROM change_log WHERE group_id = ? AND change_id = ?`,
			groupID, cursor,
		).Scan(&afterSeq)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, unavailable("find cursor", err)
		}
		// Неизвестный курсор - читаем журнал с начала
	}

	if limit <= 0 {
		limit = -1 // SQLite: без ограничения
	}

	query := `SELECT ` + changeColumns + `
		FROM change_log
		WHERE group_id = ? AND seq > ?
		ORDER BY seq
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, groupID, afterSeq, limit)
	if err != nil {
		return nil, unavailable("query changes", err)
	}
	defer rows.Close()

	var entries []models.ChangeLogEntry
	for rows.Next() {
		e, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("rows iteration", err)
	}

	return entries, nil
}

// LastChange returns the latest entry of the group log for an entity.
// Returns storage.ErrChangeNotFound if the entity has no entries.
func (s *Storage) LastChange(ctx context.Context, groupID, entityID string) (*models.ChangeLogEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+changeColumns+`
		FROM change_log
		WHERE group_id = ? AND entity_id = ?
		ORDER BY seq DESC
		LIMIT 1`,
		groupID, entityID,
	)
	e, err := scanChange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrChangeNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChange(row scanner) (*models.ChangeLogEntry, error) {
	var (
		e          models.ChangeLogEntry
		changeType string
		entityType string
		metadata   string
	)
	err := row.Scan(
		&e.ChangeID,
		&e.DeviceID,
		&e.DeviceName,
		&changeType,
		&entityType,
		&e.EntityID,
		&e.EntityName,
		&e.MemberID,
		&e.Checksum,
		&e.Description,
		&metadata,
		&e.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, unavailable("scan change", err)
	}

	e.ChangeType = models.ChangeType(changeType)
	e.EntityType = models.EntityType(entityType)
	if err := json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
		return nil, unavailable("decode change metadata", err)
	}
	if len(e.Metadata) == 0 {
		e.Metadata = nil
	}
	return &e, nil
}

// CountChanges returns number of entries in the group log
func (s *Storage) CountChanges(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM change_log WHERE group_id = ?`, groupID).Scan(&count)
	if err != nil {
		return 0, unavailable("count changes", err)
	}
	return count, nil
}

// MaxTimestamp returns the largest entry timestamp across all groups
func (s *Storage) MaxTimestamp(ctx context.Context) (int64, error) {
	var ts sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM change_log`).Scan(&ts); err != nil {
		return 0, unavailable("max timestamp", err)
	}
	return ts.Int64, nil
}

// AppendChange appends a single entry to the local log.
// Duplicate change ids are ignored.
func (s *Storage) AppendChange(ctx context.Context, groupID string, entry *models.ChangeLogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertChange(ctx, tx, groupID, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func insertChange(ctx context.Context, tx *sql.Tx, groupID string, e *models.ChangeLogEntry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO change_log (group_id, ` + changeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, query,
		groupID,
		e.ChangeID,
		e.DeviceID,
		e.DeviceName,
		string(e.ChangeType),
		string(e.EntityType),
		e.EntityID,
		e.EntityName,
		e.MemberID,
		e.Checksum,
		e.Description,
		string(metadata),
		e.Timestamp,
	)
	if err != nil {
		return unavailable("insert change", err)
	}
	return nil
}
