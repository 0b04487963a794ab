package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/bandsync/internal/client/cli"
	"github.com/iudanet/bandsync/internal/client/iocli"
	"github.com/iudanet/bandsync/internal/client/library"
	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/client/storage/boltdb"
	"github.com/iudanet/bandsync/internal/client/storage/sqlite"
	"github.com/iudanet/bandsync/internal/client/sync"
	"github.com/iudanet/bandsync/internal/client/tracker"
	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/config"
	"github.com/iudanet/bandsync/internal/crdt"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/metrics"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/sharecode"
	"github.com/iudanet/bandsync/internal/writequeue"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	args, configPath := splitConfigFlag(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Data.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger, logCloser, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger = logger.With("version", Version)
	logger.Debug("Starting", "build_date", BuildDate, "commit", GitCommit, "data_dir", cfg.Data.Dir)

	local, err := sqlite.New(ctx, cfg.LocalDBPath(), sqlite.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer func() {
		if err := local.Close(); err != nil {
			logger.Error("failed to close library", "error", err)
		}
	}()

	state, err := boltdb.New(ctx, cfg.StateDBPath())
	if err != nil {
		return fmt.Errorf("failed to open device state: %w", err)
	}
	defer func() {
		if err := state.Close(); err != nil {
			logger.Error("failed to close device state", "error", err)
		}
	}()

	device, err := loadDevice(ctx, state, cfg.Device.Name)
	if err != nil {
		return err
	}

	queue := writequeue.New()
	defer queue.Close()

	tr := tracker.New(local, queue, crdt.NewHybridClock(device.ID), *device, logger)
	if err := tr.RestoreClock(ctx); err != nil {
		return err
	}

	m := metrics.New()
	env := &environment{
		cfg:     cfg,
		local:   local,
		state:   state,
		tracker: tr,
		queue:   queue,
		metrics: m,
		logger:  logger,
	}

	app := cli.New(cli.Deps{
		IO:                iocli.NewStdio(os.Stdin, os.Stdout),
		State:             state,
		Library:           library.NewService(local, tr, queue, logger),
		Metrics:           m,
		Config:            cfg,
		Logger:            logger,
		Connect:           env.connect,
		VerifyCredentials: verifyCredentials,
		Version:           Version,
	})
	return app.Execute(ctx, args)
}

// environment открытые хранилища процесса, из которых собирается сервис синхронизации
type environment struct {
	cfg     *config.Config
	local   *sqlite.Storage
	state   *boltdb.Storage
	tracker *tracker.Tracker
	queue   *writequeue.Queue
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func (e *environment) connect(ctx context.Context, keys sync.KeyProvider) (sync.Service, error) {
	creds, err := e.credentials(ctx)
	if err != nil {
		return nil, err
	}

	bucket, err := cloud.NewMinio(creds)
	if err != nil {
		return nil, err
	}
	transport := cloud.NewRetrying(bucket, e.logger,
		cloud.WithMaxRetries(e.cfg.Sync.MaxRetries),
		cloud.WithBase(e.cfg.Sync.RetryBase),
		cloud.WithOnRetry(e.metrics.RemoteRetry),
	)

	manifests := manifest.NewManager(transport, e.logger,
		manifest.WithMaxRetries(e.cfg.Sync.MaxRetries),
		manifest.WithRetryBase(e.cfg.Sync.RetryBase),
		manifest.WithOnConflict(e.metrics.ManifestConflict),
	)

	secret, err := e.cfg.ShareSecret(creds)
	if err != nil {
		return nil, err
	}
	codes, err := sharecode.NewService(transport, secret, e.logger)
	if err != nil {
		return nil, err
	}

	return sync.NewService(sync.Deps{
		Local:     e.local,
		State:     e.state,
		Tracker:   e.tracker,
		Queue:     e.queue,
		Manifests: manifests,
		Codes:     codes,
		Metrics:   e.metrics,
		Keys:      keys,
	}, sync.Config{
		AppVersion:  Version,
		Parallelism: e.cfg.Sync.Parallelism,
	}, e.logger), nil
}

// credentials сохраненные через login, иначе из конфигурации
func (e *environment) credentials(ctx context.Context) (models.CloudCredentials, error) {
	stored, err := e.state.GetCredentials(ctx)
	if err == nil {
		return *stored, nil
	}
	if !errors.Is(err, storage.ErrCredentialsNotFound) {
		return models.CloudCredentials{}, fmt.Errorf("failed to get credentials: %w", err)
	}
	if creds, ok := e.cfg.Credentials(); ok {
		return creds, nil
	}
	return models.CloudCredentials{}, cli.ErrNotLoggedIn
}

func verifyCredentials(ctx context.Context, creds models.CloudCredentials) error {
	bucket, err := cloud.NewMinio(creds)
	if err != nil {
		return err
	}
	return bucket.EnsureBucket(ctx)
}

// loadDevice возвращает идентичность устройства, создавая ее при первом запуске
func loadDevice(ctx context.Context, state storage.DeviceStorage, name string) (*models.Device, error) {
	device, err := state.GetDevice(ctx)
	switch {
	case errors.Is(err, storage.ErrDeviceNotFound):
		device = &models.Device{ID: uuid.New().String(), Name: name}
	case err != nil:
		return nil, fmt.Errorf("failed to get device: %w", err)
	case device.Name == name:
		return device, nil
	default:
		device.Name = name
	}

	if err := state.SaveDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to save device: %w", err)
	}
	return device, nil
}

// splitConfigFlag извлекает --config до разбора команд: от него зависит сборка команд
func splitConfigFlag(args []string) ([]string, string) {
	rest := make([]string, 0, len(args))
	path := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			rest = append(rest, args[i:]...)
			return rest, path
		case arg == "--config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		default:
			rest = append(rest, arg)
		}
	}
	return rest, path
}
