// Package watch keeps joined groups in sync while the client runs in the
// background. A cycle starts on a fixed interval and shortly after the local
// store files change, so edits made by another bandsync process are pushed
// without waiting for the next tick.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultInterval период синхронизации без локальных изменений
	DefaultInterval = 30 * time.Second
	// DefaultDebounce пауза после последнего изменения файла перед синхронизацией
	DefaultDebounce = 500 * time.Millisecond
)

// SyncFunc синхронизирует одну группу
type SyncFunc func(ctx context.Context, groupID string) error

// GroupsFunc возвращает группы, к которым присоединено устройство
type GroupsFunc func(ctx context.Context) ([]string, error)

// Config holds configuration for the watcher
type Config struct {
	// DBPath файл локального хранилища; отслеживаются он и его -wal/-shm
	DBPath   string
	Interval time.Duration
	Debounce time.Duration
}

// Watcher triggers sync cycles for every joined group
type Watcher struct {
	sync    SyncFunc
	groups  GroupsFunc
	logger  *slog.Logger
	cfg     Config
	syncing atomic.Bool
	cycles  atomic.Int64
}

// New creates a watcher. Zero durations fall back to the defaults.
func New(cfg Config, groups GroupsFunc, sync SyncFunc, logger *slog.Logger) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		sync:   sync,
		groups: groups,
		logger: logger,
		cfg:    cfg,
	}
}

// Cycles returns how many rounds over all groups have run
func (w *Watcher) Cycles() int64 {
	return w.cycles.Load()
}

// Run syncs once, then on every tick and after local store changes settle.
// Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Warn("failed to close watcher", "error", err)
		}
	}()

	dir := filepath.Dir(w.cfg.DBPath)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("Watching for changes",
		"path", w.cfg.DBPath,
		"interval", w.cfg.Interval,
		"debounce", w.cfg.Debounce,
	)

	w.round(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	debounce := time.NewTimer(w.cfg.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return nil

		case <-ticker.C:
			w.round(ctx)

		case <-debounce.C:
			w.round(ctx)

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// записи самого цикла не должны запускать новый цикл
			if w.syncing.Load() {
				continue
			}
			debounce.Reset(w.cfg.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	base := filepath.Base(w.cfg.DBPath)
	return strings.HasPrefix(filepath.Base(event.Name), base)
}

// round синхронизирует все группы; ошибка одной группы не останавливает остальные
func (w *Watcher) round(ctx context.Context) {
	w.syncing.Store(true)
	defer w.syncing.Store(false)
	defer w.cycles.Add(1)

	groups, err := w.groups(ctx)
	if err != nil {
		w.logger.Error("failed to list groups", "error", err)
		return
	}

	for _, groupID := range groups {
		if ctx.Err() != nil {
			return
		}
		if err := w.sync(ctx, groupID); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("background sync failed", "group_id", groupID, "error", err)
		}
	}
}
