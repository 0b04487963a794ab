// Package sync runs the sync cycle of a joined group: it pulls peer changes
// from the shared change log, merges them with unpushed local changes,
// reports conflicts, and pushes local changes with their snapshots.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/client/tracker"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/metrics"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/sharecode"
	"github.com/iudanet/bandsync/internal/writequeue"
)

//go:generate moq -out service_mock.go . Service

// DefaultParallelism число одновременных загрузок снапшотов и файлов
const DefaultParallelism = 4

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync выполняет полный цикл синхронизации группы
	Sync(ctx context.Context, groupID string) (*SyncResult, error)

	// CreateGroup создает группу, в которой устройство становится лидером
	CreateGroup(ctx context.Context, name string, profile Profile) (*models.JoinedGroup, error)

	// JoinGroup присоединяет устройство к группе по коду приглашения
	JoinGroup(ctx context.Context, shareCode string, profile Profile) (*models.JoinedGroup, *SyncResult, error)

	// CreateShareCode выпускает код приглашения в группу
	CreateShareCode(ctx context.Context, groupID string, ttl time.Duration) (*models.ShareCode, error)

	// ResolveConflict применяет решение пользователя к сохраненному конфликту
	ResolveConflict(
		ctx context.Context,
		groupID, conflictID string,
		action models.ResolutionAction,
		manualPayload json.RawMessage,
	) ([]models.ChangeLogEntry, error)

	// Status возвращает текущий или последний статус группы
	Status(groupID string) models.SyncStatus

	// PendingCount возвращает количество локальных изменений, ожидающих отправки
	PendingCount(ctx context.Context, groupID string) (int, error)
}

// KeyProvider returns the blob cipher of a group
type KeyProvider func(groupID string) (*crypto.BlobCipher, error)

// Profile how the device owner appears to the band
type Profile struct {
	Name       string
	Instrument string
}

// Deps collaborators of the service. Codes, Metrics and Keys are optional.
type Deps struct {
	Local     storage.LocalStore
	State     storage.StateStore
	Tracker   *tracker.Tracker
	Queue     *writequeue.Queue
	Manifests *manifest.Manager
	Codes     *sharecode.Service
	Metrics   *metrics.Metrics
	Keys      KeyProvider
}

// Config параметры сервиса
type Config struct {
	AppVersion  string // версия установленного приложения
	Parallelism int    // параллельные загрузки, 0 = DefaultParallelism
}

// SyncResult contains sync cycle results
type SyncResult struct {
	Status          models.SyncStatus     // итоговый статус цикла
	Conflicts       []models.SyncConflict // все неразрешенные конфликты группы
	Devices         []models.DeviceInfo   // устройства группы
	Pulled          int                   // получено чужих записей журнала
	Pushed          int                   // отправлено локальных записей
	Applied         int                   // применено удаленных состояний
	Merged          int                   // автоматически объединено конфликтов
	Skipped         int                   // пропущено записей без читаемого снапшота
	ManifestVersion int64                 // версия манифеста, увиденная в цикле
}

type service struct {
	local     storage.LocalStore
	state     storage.StateStore
	tracker   *tracker.Tracker
	queue     *writequeue.Queue
	manifests *manifest.Manager
	codes     *sharecode.Service
	metrics   *metrics.Metrics
	keys      KeyProvider
	logger    *slog.Logger
	now       func() time.Time
	flight    singleflight.Group
	cfg       Config

	mu       stdsync.Mutex
	statuses map[string]models.SyncStatus
}

// NewService creates a new sync service
func NewService(deps Deps, cfg Config, logger *slog.Logger) Service {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	return &service{
		local:     deps.Local,
		state:     deps.State,
		tracker:   deps.Tracker,
		queue:     deps.Queue,
		manifests: deps.Manifests,
		codes:     deps.Codes,
		metrics:   deps.Metrics,
		keys:      deps.Keys,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
		statuses:  make(map[string]models.SyncStatus),
	}
}

// Status returns the status of the running or last cycle.
// A group that was never synced by this process reports OFFLINE.
func (s *service) Status(groupID string) models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[groupID]
	if !ok {
		return models.StatusOffline
	}
	return status
}

func (s *service) setStatus(groupID string, status models.SyncStatus) {
	s.mu.Lock()
	s.statuses[groupID] = status
	s.mu.Unlock()
}

// PendingCount returns number of local entries not yet pushed
func (s *service) PendingCount(ctx context.Context, groupID string) (int, error) {
	cursors, err := s.state.GetCursors(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to get cursors: %w", err)
	}

	pending := 0
	for _, err := range s.tracker.ChangesSince(ctx, groupID, cursors.Local) {
		if err != nil {
			return 0, err
		}
		pending++
	}
	return pending, nil
}

// documents returns the manager used for group objects.
// Writes are sealed only when the group enables encryption.
func (s *service) documents(groupID string, encrypt bool) (*manifest.Manager, error) {
	if !encrypt {
		return s.manifests, nil
	}
	if s.keys == nil {
		return nil, fmt.Errorf("%w: group %s", ErrEncryptionKeyRequired, groupID)
	}
	c, err := s.keys(groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryptionKeyRequired, err)
	}
	return s.manifests.Encrypted(c), nil
}

// reader returns a manager able to open sealed objects when a key is available
func (s *service) reader(groupID string) *manifest.Manager {
	if s.keys == nil {
		return s.manifests
	}
	c, err := s.keys(groupID)
	if err != nil {
		return s.manifests
	}
	return s.manifests.Encrypted(c)
}

// authorName returns the member name of a change for conflict reports
func authorName(m *models.GroupManifest) func(e *models.ChangeLogEntry) string {
	return func(e *models.ChangeLogEntry) string {
		if e.MemberID != "" {
			if member, ok := m.Member(e.MemberID); ok {
				return member.Name
			}
		}
		if member, ok := m.MemberByDevice(e.DeviceID); ok {
			return member.Name
		}
		return e.DeviceName
	}
}
