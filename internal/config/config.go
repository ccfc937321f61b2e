package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the persistent application configuration.
type Config struct {
	// DataDir holds the database, the event log and the logs/ directory.
	DataDir string `yaml:"data_dir"`

	Scroll  ScrollConfig  `yaml:"scroll"`
	Feed    FeedConfig    `yaml:"feed"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
}

// ScrollConfig tunes the follow policy and names the panel parts it reads.
type ScrollConfig struct {
	Tolerance        int    `yaml:"tolerance"` // rows
	RegionSelector   string `yaml:"region_selector"`
	FallbackSelector string `yaml:"fallback_selector"`
	JumpControl      string `yaml:"jump_control"`
}

// FeedConfig drives the simulated chat participants.
type FeedConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Burst    int           `yaml:"burst"`
	Senders  []string      `yaml:"senders"`
}

// StorageConfig locates chat history.
type StorageConfig struct {
	DBFile       string `yaml:"db_file"` // relative to DataDir unless absolute
	HistoryLimit int    `yaml:"history_limit"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	ShowTimestamps bool `yaml:"show_timestamps"`
	SenderWidth    int  `yaml:"sender_width"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Scroll: ScrollConfig{
			Tolerance:        1,
			RegionSelector:   ".chat-scroll",
			FallbackSelector: "#chat-log",
			JumpControl:      ".jump-to-bottom",
		},
		Feed: FeedConfig{
			Enabled:  true,
			Interval: 1500 * time.Millisecond,
			Burst:    2,
			Senders:  []string{"ada", "grace", "linus", "ken"},
		},
		Storage: StorageConfig{
			DBFile:       "chat.db",
			HistoryLimit: 500,
		},
		UI: UIConfig{
			ShowTimestamps: true,
			SenderWidth:    10,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatfollow"
	}
	return filepath.Join(home, ".chatfollow")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads the config at path. A missing file yields defaults. Environment
// overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("CHATFOLLOW_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATFOLLOW_TOLERANCE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CHATFOLLOW_TOLERANCE=%q: %v", ErrInvalid, v, err)
		}
		c.Scroll.Tolerance = n
	}
	return nil
}

// Validate checks invariants the rest of the program relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.Scroll.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("scroll.tolerance must not be negative, got %d", c.Scroll.Tolerance))
	}
	if c.Scroll.RegionSelector == "" {
		errs = append(errs, errors.New("scroll.region_selector is required"))
	}
	if c.Scroll.JumpControl == "" {
		errs = append(errs, errors.New("scroll.jump_control is required"))
	}
	if c.Feed.Enabled {
		if c.Feed.Interval <= 0 {
			errs = append(errs, fmt.Errorf("feed.interval must be positive, got %s", c.Feed.Interval))
		}
		if c.Feed.Burst < 1 {
			errs = append(errs, fmt.Errorf("feed.burst must be at least 1, got %d", c.Feed.Burst))
		}
		if len(c.Feed.Senders) == 0 {
			errs = append(errs, errors.New("feed.senders must not be empty"))
		}
	}
	if c.Storage.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("storage.history_limit must be positive, got %d", c.Storage.HistoryLimit))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// DBPath returns the database location.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Storage.DBFile) || c.Storage.DBFile == ":memory:" {
		return c.Storage.DBFile
	}
	return filepath.Join(c.DataDir, c.Storage.DBFile)
}

// EventLogPath returns the JSONL event log location.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "chatfollow.events.jsonl")
}

// LogDir returns the directory for application logs.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}
