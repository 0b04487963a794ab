// Package config loads client settings from a config file, .env files and
// BANDSYNC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/iudanet/bandsync/internal/crypto"
	"github.com/iudanet/bandsync/internal/models"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "BANDSYNC"

// Config настройки клиента
type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Data    DataConfig    `mapstructure:"data"`
	Cloud   CloudConfig   `mapstructure:"cloud"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Share   ShareConfig   `mapstructure:"share"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Crypto  CryptoConfig  `mapstructure:"crypto"`
}

// DeviceConfig имя устройства в журнале изменений
type DeviceConfig struct {
	Name string `mapstructure:"name"`
}

// DataConfig расположение локальных баз
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// CloudConfig параметры бакета. Используются, пока не выполнен login.
type CloudConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Secure    bool   `mapstructure:"secure"`
}

// SyncConfig параметры цикла синхронизации
type SyncConfig struct {
	MaxRetries    uint64        `mapstructure:"max_retries"`
	RetryBase     time.Duration `mapstructure:"retry_base"`
	Parallelism   int           `mapstructure:"parallelism"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	Debounce      time.Duration `mapstructure:"debounce"`
}

// ShareConfig параметры кодов приглашения
type ShareConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// LogConfig параметры логирования
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text или json
	File       string `mapstructure:"file"`   // пусто = stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig адрес /metrics в режиме watch, пусто = выключено
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// CryptoConfig пароль для шифрования снапшотов групп
type CryptoConfig struct {
	Passphrase string `mapstructure:"passphrase"`
}

// DefaultDataDir returns ~/.bandsync, or ./.bandsync when home is unknown
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bandsync"
	}
	return filepath.Join(home, ".bandsync")
}

func setDefaults(v *viper.Viper) {
	host, _ := os.Hostname()
	if host == "" {
		host = "bandsync"
	}

	// без значения по умолчанию ключ не виден Unmarshal из окружения
	for _, key := range []string{
		"cloud.endpoint", "cloud.bucket", "cloud.access_key", "cloud.secret_key", "cloud.region",
		"share.secret", "log.file", "metrics.addr", "crypto.passphrase",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("device.name", host)
	v.SetDefault("data.dir", DefaultDataDir())
	v.SetDefault("cloud.secure", true)
	v.SetDefault("sync.max_retries", 3)
	v.SetDefault("sync.retry_base", 200*time.Millisecond)
	v.SetDefault("sync.parallelism", 4)
	v.SetDefault("sync.watch_interval", 30*time.Second)
	v.SetDefault("sync.debounce", 500*time.Millisecond)
	v.SetDefault("share.ttl", 7*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// Load reads configuration. An explicit path must exist; without one the
// file config.yaml is looked up in the data dir and the working directory.
// .env files in the working directory are loaded into the environment first.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnv(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data.dir"))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks values that cannot be corrected silently
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("%w: data.dir is empty", ErrInvalidConfig)
	}
	if c.Sync.Parallelism < 0 {
		return fmt.Errorf("%w: sync.parallelism must not be negative", ErrInvalidConfig)
	}
	if c.Sync.WatchInterval <= 0 {
		return fmt.Errorf("%w: sync.watch_interval must be positive", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LocalDBPath путь к SQLite базе сущностей
func (c *Config) LocalDBPath() string {
	return filepath.Join(c.Data.Dir, "library.db")
}

// StateDBPath путь к bbolt базе состояния устройства
func (c *Config) StateDBPath() string {
	return filepath.Join(c.Data.Dir, "state.db")
}

// Credentials returns the cloud section as credentials.
// Returns false when the section is incomplete.
func (c *Config) Credentials() (models.CloudCredentials, bool) {
	creds := models.CloudCredentials{
		Endpoint:  c.Cloud.Endpoint,
		Bucket:    c.Cloud.Bucket,
		AccessKey: c.Cloud.AccessKey,
		SecretKey: c.Cloud.SecretKey,
		Region:    c.Cloud.Region,
		Secure:    c.Cloud.Secure,
	}
	ok := creds.Endpoint != "" && creds.Bucket != "" && creds.AccessKey != "" && creds.SecretKey != ""
	return creds, ok
}

// ShareSecret returns the key signing share codes. Every device of a band
// must use the same key, so without an explicit secret it is derived from
// the bucket credentials the band already shares.
func (c *Config) ShareSecret(creds models.CloudCredentials) ([]byte, error) {
	if c.Share.Secret != "" {
		return []byte(c.Share.Secret), nil
	}
	if creds.SecretKey == "" {
		return nil, fmt.Errorf("%w: share.secret is empty and no cloud secret key is known", ErrInvalidConfig)
	}
	return []byte(crypto.ChecksumBytes([]byte("bandsync:share:" + creds.Bucket + ":" + creds.SecretKey))), nil
}
