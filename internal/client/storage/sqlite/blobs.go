package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iudanet/bandsync/internal/client/storage"
)

// PutBlob stores content under its checksum (idempotent)
func (s *Storage) PutBlob(ctx context.Context, checksum string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO blobs (checksum, data, size, created_at) VALUES (?, ?, ?, ?)`,
		checksum, data, len(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return unavailable("put blob", err)
	}
	return nil
}

// GetBlob retrieves content by checksum
// Returns ErrBlobNotFound if blob doesn't exist
func (s *Storage) GetBlob(ctx context.Context, checksum string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE checksum = ?`, checksum).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBlobNotFound
		}
		return nil, unavailable("get blob", err)
	}
	return data, nil
}

// HasBlob checks whether content is present locally
func (s *Storage) HasBlob(ctx context.Context, checksum string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM blobs WHERE checksum = ?`, checksum).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, unavailable("has blob", err)
	}
	return true, nil
}
