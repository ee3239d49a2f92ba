// Package config loads railfence settings from defaults, an optional TOML
// file and RAILFENCE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	rferrors "github.com/matzehuels/railfence/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the resolved configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cipher CipherConfig `toml:"cipher"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
}

// CipherConfig holds cipher defaults.
type CipherConfig struct {
	DefaultRails int `toml:"default_rails"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisDB       int      `toml:"redis_db"`
	RedisPassword string   `toml:"redis_password"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "15s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   32 << 20,
			ReadTimeout:    Duration{15 * time.Second},
			WriteTimeout:   Duration{30 * time.Second},
		},
		Cipher: CipherConfig{DefaultRails: 3},
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       DefaultCacheDir(),
			TTL:       Duration{24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/railfence/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "railfence", "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "railfence", "config.toml")
	}
	return ""
}

// DefaultCacheDir returns $XDG_CACHE_HOME/railfence, falling back to ~/.cache.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "railfence")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "railfence")
	}
	return filepath.Join(os.TempDir(), "railfence")
}

// Load resolves the configuration. An empty path reads [DefaultPath] and
// tolerates its absence; an explicit path must exist. Environment overrides
// are applied last and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := loadFile(&cfg, path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return rferrors.New(rferrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if val := strings.TrimSpace(os.Getenv("RAILFENCE_ADDR")); val != "" {
		cfg.Server.Addr = val
	}
	if val := strings.TrimSpace(os.Getenv("RAILFENCE_RAILS")); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "RAILFENCE_RAILS")
		}
		cfg.Cipher.DefaultRails = n
	}
	if val := strings.TrimSpace(os.Getenv("RAILFENCE_CACHE")); val != "" {
		cfg.Cache.Backend = val
	}
	if val := strings.TrimSpace(os.Getenv("RAILFENCE_CACHE_DIR")); val != "" {
		cfg.Cache.Dir = val
	}
	if val := strings.TrimSpace(os.Getenv("RAILFENCE_REDIS_ADDR")); val != "" {
		cfg.Cache.RedisAddr = val
	}
	if val := os.Getenv("RAILFENCE_REDIS_PASSWORD"); val != "" {
		cfg.Cache.RedisPassword = val
	}
	if val := strings.TrimSpace(os.Getenv("RAILFENCE_LOG_LEVEL")); val != "" {
		cfg.Log.Level = val
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return rferrors.New(rferrors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return rferrors.New(rferrors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		return rferrors.New(rferrors.ErrCodeInvalidConfig, "server timeouts cannot be negative")
	}
	if err := rferrors.ValidateRails(c.Cipher.DefaultRails); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "cipher.default_rails")
	}
	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Dir == "" {
			return rferrors.New(rferrors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return rferrors.New(rferrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	case CacheNone:
	default:
		return rferrors.New(rferrors.ErrCodeInvalidConfig, "invalid cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return rferrors.New(rferrors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "log.level")
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
