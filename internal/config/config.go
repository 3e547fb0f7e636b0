package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// StorageBackend selects the key-value store implementation.
type StorageBackend string

// StorageBackend values.
const (
	StorageSQLite StorageBackend = "sqlite"
	StorageFile   StorageBackend = "file"
)

// ThemeMode selects the initial color scheme.
type ThemeMode string

// ThemeMode values. ThemeAuto defers to the stored preference, then to terminal detection.
const (
	ThemeAuto  ThemeMode = "auto"
	ThemeDark  ThemeMode = "dark"
	ThemeLight ThemeMode = "light"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	UI       UIConfig       `toml:"ui"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Backend StorageBackend `toml:"backend"`
	// FilePath is used by the file backend; blank derives it from the database path.
	FilePath string `toml:"file_path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UIConfig struct {
	Theme        ThemeMode `toml:"theme"`
	Animations   bool      `toml:"animations"`
	ToastSeconds int       `toml:"toast_seconds"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			Backend: StorageSQLite,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".tick/log",
			},
		},
		UI: UIConfig{
			Theme:        ThemeAuto,
			Animations:   true,
			ToastSeconds: 3,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch c.Storage.Backend {
	case StorageSQLite, StorageFile:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}

	if _, err := c.Logging.ParseLevel(); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	switch c.UI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("invalid ui.theme: %q", c.UI.Theme)
	}
	if c.UI.ToastSeconds < 1 || c.UI.ToastSeconds > 60 {
		return fmt.Errorf("ui.toast_seconds must be between 1 and 60, got %d", c.UI.ToastSeconds)
	}

	return nil
}

// StoreFilePath returns the JSON file used by the file backend.
func (c Config) StoreFilePath() string {
	if p := strings.TrimSpace(c.Storage.FilePath); p != "" {
		return p
	}
	db := strings.TrimSpace(c.Database.Path)
	return strings.TrimSuffix(db, filepath.Ext(db)) + ".json"
}

// ToastDuration returns how long notices stay on screen.
func (c Config) ToastDuration() time.Duration {
	return time.Duration(c.UI.ToastSeconds) * time.Second
}

// ParseLevel returns the configured log level. Matching ignores case and surrounding space.
func (l LoggingConfig) ParseLevel() (charmLog.Level, error) {
	return charmLog.ParseLevel(strings.TrimSpace(strings.ToLower(l.Level)))
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Write encodes cfg as TOML at path, creating the parent directory.
func Write(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
