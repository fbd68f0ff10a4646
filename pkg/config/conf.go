package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	PortDefault     = 8080
	CacheTTLDefault = 5 * time.Minute
	LogLevelDefault = "info"
)

// Config represents app config object.
type Config struct {
	// DB is a sqlite file path or a postgres:// URL. Empty selects the default file in the home dir.
	DB        string        `yaml:"db" env:"BUYCHECK_DB"`
	Port      int           `yaml:"port" env:"BUYCHECK_PORT"`
	RedisAddr string        `yaml:"redis_addr" env:"BUYCHECK_REDIS_ADDR"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"BUYCHECK_CACHE_TTL"`
	LogLevel  string        `yaml:"log_level" env:"BUYCHECK_LOG_LEVEL"`
	Server    string        `yaml:"server" env:"BUYCHECK_SERVER"`
}

func getDefaultConfig() *Config {
	return &Config{
		Port:     PortDefault,
		CacheTTL: CacheTTLDefault,
		LogLevel: LogLevelDefault,
	}
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, ConfigFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", ConfigFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one,
// then applies BUYCHECK_* environment overrides.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, ConfigFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	c := getDefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}

	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "error parsing environment overrides")
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	if c.CacheTTL < 0 {
		return errors.Errorf("invalid cache ttl: %s", c.CacheTTL)
	}
	return nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		err := os.Mkdir(dir, dirMode)
		if err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
