// Package cli implements the bandsync command line on top of the library and
// sync services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdsync "sync"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/client/iocli"
	"github.com/iudanet/bandsync/internal/client/library"
	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/client/sync"
	"github.com/iudanet/bandsync/internal/config"
	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/metrics"
	"github.com/iudanet/bandsync/internal/models"
)

// Deps зависимости команд
type Deps struct {
	IO      iocli.IO
	State   storage.StateStore
	Library library.Service
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger

	// Connect строит сервис синхронизации поверх сохраненных учетных данных.
	// Возвращает ErrNotLoggedIn, если облако не настроено.
	Connect func(ctx context.Context, keys sync.KeyProvider) (sync.Service, error)

	// VerifyCredentials проверяет доступ к бакету перед сохранением
	VerifyCredentials func(ctx context.Context, creds models.CloudCredentials) error

	Version string
}

// App набор команд bandsync
type App struct {
	io      iocli.IO
	state   storage.StateStore
	library library.Service
	metrics *metrics.Metrics
	cfg     *config.Config
	logger  *slog.Logger
	connect func(ctx context.Context, keys sync.KeyProvider) (sync.Service, error)
	verify  func(ctx context.Context, creds models.CloudCredentials) error
	version string

	syncSvc sync.Service

	mu         stdsync.Mutex
	passphrase string
	ciphers    map[string]*crypto.BlobCipher
}

// New creates the command set
func New(deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &App{
		io:      deps.IO,
		state:   deps.State,
		library: deps.Library,
		metrics: deps.Metrics,
		cfg:     cfg,
		logger:  logger,
		connect: deps.Connect,
		verify:  deps.VerifyCredentials,
		version: deps.Version,
		ciphers: make(map[string]*crypto.BlobCipher),
	}
}

// Root builds the command tree
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "bandsync",
		Short: "Offline-first sync of songs, setlists and annotations for a band",
		Long: `bandsync keeps the band library on this device in sync with the other
members through a shared cloud folder. Edits are recorded locally and work
offline; 'bandsync sync' exchanges them with the band and reports conflicts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.io)
	root.SetErr(a.io)
	// значение разбирается до сборки команд, флаг нужен для справки
	root.PersistentFlags().String("config", "", "config file (default ~/.bandsync/config.yaml)")

	root.AddCommand(
		a.createCmd(),
		a.shareCmd(),
		a.joinCmd(),
		a.syncCmd(),
		a.statusCmd(),
		a.conflictsCmd(),
		a.resolveCmd(),
		a.watchCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.songCmd(),
		a.setlistCmd(),
		a.versionCmd(),
	)
	return root
}

// Execute runs the command line with args
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.Root()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// service возвращает сервис синхронизации, создавая его при первом обращении
func (a *App) service(ctx context.Context) (sync.Service, error) {
	if a.syncSvc != nil {
		return a.syncSvc, nil
	}
	if a.connect == nil {
		return nil, ErrNotLoggedIn
	}
	svc, err := a.connect(ctx, a.groupCipher)
	if err != nil {
		return nil, err
	}
	a.syncSvc = svc
	return svc, nil
}

// groupCipher выводит ключ группы из общей passphrase.
// Passphrase берется из конфигурации или запрашивается один раз.
func (a *App) groupCipher(groupID string) (*crypto.BlobCipher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.ciphers[groupID]; ok {
		return c, nil
	}

	if a.passphrase == "" {
		a.passphrase = a.cfg.Crypto.Passphrase
	}
	if a.passphrase == "" {
		p, err := a.io.ReadPassword("Band passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		if p == "" {
			return nil, ErrEmptyPassphrase
		}
		a.passphrase = p
	}

	key, err := crypto.DeriveGroupKey(a.passphrase, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive group key: %w", err)
	}
	c, err := crypto.NewBlobCipher(key)
	if err != nil {
		return nil, err
	}
	a.ciphers[groupID] = c
	return c, nil
}

// group находит присоединенную группу по ID или имени
func (a *App) group(ctx context.Context, ref string) (*models.JoinedGroup, error) {
	group, err := a.state.GetGroup(ctx, ref)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, storage.ErrGroupNotFound) {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	groups, err := a.state.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var found *models.JoinedGroup
	for _, g := range groups {
		if g.Name != ref {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q, use the group id", ErrAmbiguousGroup, ref)
		}
		found = g
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, ref)
	}
	return found, nil
}

// prompt возвращает значение флага или спрашивает его у пользователя
func (a *App) prompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	input, err := a.io.ReadInput(label + ": ")
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	return input, nil
}
