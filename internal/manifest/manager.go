// Package manifest reads and writes the shared documents of a group folder:
// the group manifest, the append-only change log, entity snapshots, song
// file blobs and device presence objects.
//
// Shared documents are updated with optimistic concurrency: every write is
// conditional on the version tag that was read, and a lost race re-runs the
// whole fetch-modify-write cycle with jittered backoff.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/models"
)

const (
	// DefaultMaxRetries повторы цикла fetch-modify-write при гонке
	DefaultMaxRetries = 5
	// DefaultRetryBase начальная задержка между повторами
	DefaultRetryBase = 50 * time.Millisecond
)

// Manager works with the documents of group folders
type Manager struct {
	transport  cloud.Transport
	logger     *slog.Logger
	cipher     *crypto.BlobCipher
	now        func() time.Time
	onConflict func()
	retryBase  time.Duration
	maxRetries uint64
}

// Option настраивает Manager
type Option func(*Manager)

// WithMaxRetries sets how many times a lost conditional write is retried
func WithMaxRetries(n uint64) Option {
	return func(m *Manager) { m.maxRetries = n }
}

// WithRetryBase sets the initial retry delay
func WithRetryBase(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retryBase = d
		}
	}
}

// WithClock overrides the time source (for tests)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithCipher encrypts snapshots and file blobs with the group key
func WithCipher(c *crypto.BlobCipher) Option {
	return func(m *Manager) { m.cipher = c }
}

// WithOnConflict registers a callback invoked on every lost conditional write
func WithOnConflict(fn func()) Option {
	return func(m *Manager) { m.onConflict = fn }
}

// NewManager creates a manager over transport
func NewManager(transport cloud.Transport, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		transport:  transport,
		logger:     logger,
		now:        time.Now,
		maxRetries: DefaultMaxRetries,
		retryBase:  DefaultRetryBase,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Encrypted returns a copy of the manager that seals snapshots and file
// blobs with c. Manifests, logs and device objects stay readable.
func (m *Manager) Encrypted(c *crypto.BlobCipher) *Manager {
	clone := *m
	clone.cipher = c
	return &clone
}

// Transport returns the underlying transport
func (m *Manager) Transport() cloud.Transport {
	return m.transport
}

// FetchManifest reads and validates the group manifest.
// A manifest that does not parse is reported as ErrManifestCorrupt, never replaced by a default.
func (m *Manager) FetchManifest(ctx context.Context, folderID string) (*models.GroupManifest, error) {
	manifest, _, err := m.fetchManifest(ctx, folderID)
	return manifest, err
}

func (m *Manager) fetchManifest(ctx context.Context, folderID string) (*models.GroupManifest, string, error) {
	data, info, err := m.transport.Get(ctx, ManifestPath(folderID))
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: folder %s", ErrManifestNotFound, folderID)
		}
		return nil, "", fmt.Errorf("failed to fetch manifest: %w", err)
	}

	var manifest models.GroupManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrManifestCorrupt, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrManifestCorrupt, err)
	}

	return &manifest, info.ETag, nil
}

// CreateManifest writes version 1 of a new group manifest and an empty change log.
// Fails with ErrManifestExists if the folder already has a manifest.
func (m *Manager) CreateManifest(ctx context.Context, folderID string, manifest *models.GroupManifest) error {
	now := m.now().UnixMilli()
	manifest.Version = 1
	if manifest.CreatedAt == 0 {
		manifest.CreatedAt = now
	}
	manifest.LastModified = now
	if err := manifest.Validate(); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	if err := m.putJSON(ctx, ManifestPath(folderID), manifest, cloud.PutOptions{IfNoneMatch: true}); err != nil {
		if errors.Is(err, cloud.ErrPreconditionFailed) {
			return fmt.Errorf("%w: folder %s", ErrManifestExists, folderID)
		}
		return fmt.Errorf("failed to create manifest: %w", err)
	}

	empty := &models.ChangeLog{Changes: []models.ChangeLogEntry{}}
	err := m.putJSON(ctx, ChangeLogPath(folderID), empty, cloud.PutOptions{IfNoneMatch: true})
	if err != nil && !errors.Is(err, cloud.ErrPreconditionFailed) {
		return fmt.Errorf("failed to create change log: %w", err)
	}

	m.logger.Info("group manifest created", "folder_id", folderID, "group_id", manifest.GroupID)
	return nil
}

// UpdateManifest applies mutate to the current manifest and writes it back
// with Version = old+1, conditional on the fetched version tag. A lost race
// re-runs fetch and mutate; mutate must therefore be repeatable.
func (m *Manager) UpdateManifest(
	ctx context.Context,
	folderID string,
	mutate func(*models.GroupManifest) error,
) (*models.GroupManifest, error) {
	var result *models.GroupManifest

	err := m.withRetry(ctx, func(ctx context.Context) error {
		current, etag, err := m.fetchManifest(ctx, folderID)
		if err != nil {
			return err
		}

		version := current.Version
		if err := mutate(current); err != nil {
			return fmt.Errorf("failed to mutate manifest: %w", err)
		}
		current.Version = version + 1
		current.LastModified = m.now().UnixMilli()
		if err := current.Validate(); err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}

		if err := m.putJSON(ctx, ManifestPath(folderID), current, cloud.PutOptions{IfMatch: etag}); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, m.conflictError("update manifest", err)
	}

	m.logger.Debug("manifest updated", "folder_id", folderID, "version", result.Version)
	return result, nil
}

// FetchChangeLog reads the whole change log. A missing log reads as empty.
func (m *Manager) FetchChangeLog(ctx context.Context, folderID string) (*models.ChangeLog, error) {
	log, _, err := m.fetchChangeLog(ctx, folderID)
	return log, err
}

func (m *Manager) fetchChangeLog(ctx context.Context, folderID string) (*models.ChangeLog, string, error) {
	data, info, err := m.transport.Get(ctx, ChangeLogPath(folderID))
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return &models.ChangeLog{}, "", nil
		}
		return nil, "", fmt.Errorf("failed to fetch change log: %w", err)
	}

	var log models.ChangeLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, "", fmt.Errorf("%w: change log: %w", ErrManifestCorrupt, err)
	}
	return &log, info.ETag, nil
}

// FetchChangesSince returns log entries strictly after lastChangeID in log order.
// An unknown or empty cursor returns the full log.
func (m *Manager) FetchChangesSince(ctx context.Context, folderID, lastChangeID string) ([]models.ChangeLogEntry, error) {
	log, err := m.FetchChangeLog(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return log.Since(lastChangeID), nil
}

// AppendChanges appends entries not yet in the remote log, preserving their order.
// Appending only entries already present performs no write.
func (m *Manager) AppendChanges(ctx context.Context, folderID string, entries []models.ChangeLogEntry) (*models.ChangeLog, error) {
	var result *models.ChangeLog

	err := m.withRetry(ctx, func(ctx context.Context) error {
		log, etag, err := m.fetchChangeLog(ctx, folderID)
		if err != nil {
			return err
		}

		if log.Append(entries...) == 0 {
			result = log
			return nil
		}
		log.Version++

		opts := cloud.PutOptions{IfMatch: etag}
		if etag == "" {
			opts = cloud.PutOptions{IfNoneMatch: true}
		}
		if err := m.putJSON(ctx, ChangeLogPath(folderID), log, opts); err != nil {
			return err
		}
		result = log
		return nil
	})
	if err != nil {
		return nil, m.conflictError("append changes", err)
	}

	m.logger.Debug("changes appended",
		"folder_id", folderID,
		"count", len(entries),
		"log_version", result.Version,
	)
	return result, nil
}

func (m *Manager) backoff() retry.Backoff {
	b := retry.NewExponential(m.retryBase)
	b = retry.WithJitterPercent(50, b)
	return retry.WithMaxRetries(m.maxRetries, b)
}

// withRetry повторяет fn, пока условная запись проигрывает гонку
func (m *Manager) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, cloud.ErrPreconditionFailed) {
			if m.onConflict != nil {
				m.onConflict()
			}
			return retry.RetryableError(err)
		}
		return err
	})
}

func (m *Manager) conflictError(op string, err error) error {
	if errors.Is(err, cloud.ErrPreconditionFailed) {
		return fmt.Errorf("%w: %s: %w", ErrManifestConflict, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (m *Manager) putJSON(ctx context.Context, path string, v any, opts cloud.PutOptions) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	_, err = m.transport.Put(ctx, path, data, opts)
	return err
}
