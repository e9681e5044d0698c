package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Defaults applied to fields left empty in the config file.
const (
	DefaultLanguage              = "ru"
	DefaultMaxThreads            = 5
	DefaultLogLevel              = "info"
	DefaultPlatform              = "windows"
	DefaultConnectTimeoutSeconds = 30
)

// Languages lists the supported interface languages.
var Languages = []string{"en", "ru"}

// Config represents the main configuration for tgcheck.
type Config struct {
	Language   string           `toml:"language"`    // "en" or "ru"
	MaxThreads int              `toml:"max_threads"` // concurrent session checks, at least 1
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info, warn, error
	Sessions   SessionsConfig   `toml:"sessions"`
	Proxies    ProxiesConfig    `toml:"proxies"`
	Quarantine QuarantineConfig `toml:"quarantine"`
	Network    NetworkConfig    `toml:"network"`
	Database   DatabaseConfig   `toml:"database"`
}

// SessionsConfig locates the session files and their metadata records.
type SessionsConfig struct {
	Dir      string `toml:"dir"`
	Platform string `toml:"platform"` // fingerprint platform: windows, macos, linux
}

// ProxiesConfig locates the proxy list. Files ending in .age are decrypted
// with IdentityPath, or with a passphrase prompt when IdentityPath is empty.
type ProxiesConfig struct {
	File         string `toml:"file"`
	IdentityPath string `toml:"identity_path,omitempty"`
}

// QuarantineConfig represents configuration for where invalid sessions go.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type QuarantineConfig struct {
	Type string `toml:"type"` // "filesystem" or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Dir string `toml:"dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// NetworkConfig selects the network client used for checks.
type NetworkConfig struct {
	Type                  string `toml:"type"` // "mtproto"
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds"`
}

// DatabaseConfig represents configuration for the run history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with every path rooted at baseDir.
func NewConfig(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with defaults. Paths are derived from BaseDir.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.MaxThreads < 1 {
		c.MaxThreads = DefaultMaxThreads
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Sessions.Dir == "" {
		c.Sessions.Dir = filepath.Join(c.BaseDir, "sessions")
	}
	if c.Sessions.Platform == "" {
		c.Sessions.Platform = DefaultPlatform
	}
	if c.Proxies.File == "" {
		c.Proxies.File = filepath.Join(c.BaseDir, "proxy.txt")
	}
	if c.Quarantine.Type == "" {
		c.Quarantine.Type = "filesystem"
	}
	if c.Quarantine.Type == "filesystem" && c.Quarantine.Dir == "" {
		c.Quarantine.Dir = filepath.Join(c.BaseDir, "unauthorized_sessions")
	}
	if c.Network.Type == "" {
		c.Network.Type = "mtproto"
	}
	if c.Network.ConnectTimeoutSeconds <= 0 {
		c.Network.ConnectTimeoutSeconds = DefaultConnectTimeoutSeconds
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type == "sqlite" && c.Database.DataDir == "" {
		c.Database.DataDir = filepath.Join(c.BaseDir, "db")
	}
}

// Set updates one user-editable setting by its TOML key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "language":
		for _, lang := range Languages {
			if lang == value {
				c.Language = value
				return nil
			}
		}
		return fmt.Errorf("unsupported language %q (want one of %v)", value, Languages)
	case "max_threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_threads must be an integer: %w", err)
		}
		c.MaxThreads = max(1, n)
		return nil
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader and applies defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to the specified file path, replacing any existing file.
func Save(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := Save(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// LoadOrInit reads the config at path, writing a default one first if the
// file does not exist.
func LoadOrInit(path, baseDir string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Init(path, NewConfig(baseDir)); err != nil {
			return nil, err
		}
	}
	return ReadFromFile(path)
}
