package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// gooseMu goose хранит dialect и FS глобально
var gooseMu sync.Mutex

// Storage represents SQLite implementation of the Local Store
type Storage struct {
	db       *sql.DB
	logger   *slog.Logger
	watchers map[models.EntityType]map[int]chan storage.EntityEvent
	nextID   int
	mu       sync.Mutex // защищает watchers
}

var _ storage.LocalStore = (*Storage)(nil)

// Option настраивает Storage
type Option func(*Storage)

// WithLogger задает логгер, в том числе для сообщений goose
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new SQLite storage instance
// dbPath is the path to the SQLite database file
// Use ":memory:" for in-memory database (useful for testing)
func New(ctx context.Context, dbPath string, opts ...Option) (*Storage, error) {
	// Открываем соединение с БД
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Один писатель на устройство; запись все равно идет через очередь
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{
		db:       db,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		watchers: make(map[models.EntityType]map[int]chan storage.EntityEvent),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Запускаем миграции
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection and all watch subscriptions
func (s *Storage) Close() error {
	s.mu.Lock()
	for _, subs := range s.watchers {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
	}
	s.mu.Unlock()

	return s.db.Close()
}

// runMigrations выполняет миграции из embedded FS
func (s *Storage) runMigrations() error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{logger: s.logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// gooseLogger направляет вывод goose в slog вместо stdout
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
	os.Exit(1)
}

// DB returns the underlying database connection for testing purposes
func (s *Storage) DB() *sql.DB {
	return s.db
}

// unavailable оборачивает I/O ошибку так, чтобы errors.Is находил ErrStorageUnavailable
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", storage.ErrStorageUnavailable, op, err)
}

// Helper functions for bool/int conversion
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
