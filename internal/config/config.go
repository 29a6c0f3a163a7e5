package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config/relay.toml"
)

// isYAML reports whether path should be read and written as YAML
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads and parses the configuration file from the specified path.
// If path is empty, it uses the default path. Files ending in .yaml or .yml
// are decoded as YAML, everything else as TOML.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found at %s", path)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrCreate attempts to load the configuration file, and if it doesn't exist,
// creates a default configuration file and returns the default config.
func LoadOrCreate(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Configuration file not found. Creating default configuration at %s\n", path)

		defaultCfg := DefaultConfig()
		if err := CreateDefault(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}

		return defaultCfg, nil
	}

	return Load(path)
}

// CreateDefault writes cfg to path in the format its extension selects
func CreateDefault(path string, cfg *Config) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	if isYAML(path) {
		encoder := yaml.NewEncoder(f)
		encoder.SetIndent(2)
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		return encoder.Close()
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:     "irc.libera.chat",
			Port:        6667,
			Nickname:    "relay",
			AltNickname: "relay_",
			Username:    "relay",
			Realname:    "relay chat client",
		},
		Client: ClientConfig{
			AppName:    "relay",
			AppVersion: "1.0.0",
			SourceURL:  "https://github.com/yourusername/relay",
			Channels:   []string{"#relay"},
		},
		Limits: LimitsConfig{
			KeepaliveInterval: 0,
			KeepaliveTimeout:  120,
			CloseTimeout:      5,
			MessageRate:       0,
			MessageBurst:      4,
		},
		Database: DatabaseConfig{
			Path:           "data/relay.db",
			Transcript:     true,
			WALMode:        true,
			RetentionDays:  30,
			VacuumInterval: 24,
		},
		Logging: LoggingConfig{
			ErrorLog:     "data/error.log",
			MaxLogSizeMB: 10,
			MaxLogFiles:  5,
		},
	}
}

// validate checks that all required configuration fields are present and valid
func validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.Nickname == "" {
		return fmt.Errorf("server.nickname is required")
	}
	if cfg.Server.AltNickname == "" {
		return fmt.Errorf("server.alt_nickname is required")
	}
	if strings.EqualFold(cfg.Server.Nickname, cfg.Server.AltNickname) {
		return fmt.Errorf("server.alt_nickname must differ from server.nickname")
	}
	if cfg.Server.Username == "" {
		return fmt.Errorf("server.username is required")
	}
	if cfg.Server.Realname == "" {
		return fmt.Errorf("server.realname is required")
	}

	if cfg.Client.AppName == "" {
		return fmt.Errorf("client.app_name is required")
	}

	if cfg.Limits.KeepaliveInterval < 0 {
		return fmt.Errorf("limits.keepalive_interval must be non-negative, got %d", cfg.Limits.KeepaliveInterval)
	}
	if cfg.Limits.KeepaliveInterval > 0 && cfg.Limits.KeepaliveTimeout <= cfg.Limits.KeepaliveInterval {
		return fmt.Errorf("limits.keepalive_timeout (%d) must be greater than keepalive_interval (%d)",
			cfg.Limits.KeepaliveTimeout, cfg.Limits.KeepaliveInterval)
	}
	if cfg.Limits.CloseTimeout <= 0 {
		return fmt.Errorf("limits.close_timeout must be positive, got %d", cfg.Limits.CloseTimeout)
	}
	if cfg.Limits.MessageRate < 0 {
		return fmt.Errorf("limits.message_rate must be non-negative, got %g", cfg.Limits.MessageRate)
	}
	if cfg.Limits.MessageRate > 0 && cfg.Limits.MessageBurst <= 0 {
		return fmt.Errorf("limits.message_burst must be positive when message_rate is set, got %d", cfg.Limits.MessageBurst)
	}

	if cfg.Database.Transcript && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required when database.transcript is enabled")
	}
	if cfg.Database.RetentionDays < 0 {
		return fmt.Errorf("database.retention_days must be non-negative, got %d", cfg.Database.RetentionDays)
	}
	if cfg.Database.VacuumInterval <= 0 {
		return fmt.Errorf("database.vacuum_interval must be positive, got %d", cfg.Database.VacuumInterval)
	}

	if cfg.Logging.ErrorLog == "" {
		return fmt.Errorf("logging.error_log is required")
	}
	if cfg.Logging.MaxLogSizeMB <= 0 {
		return fmt.Errorf("logging.max_log_size_mb must be positive, got %d", cfg.Logging.MaxLogSizeMB)
	}
	if cfg.Logging.MaxLogFiles <= 0 {
		return fmt.Errorf("logging.max_log_files must be positive, got %d", cfg.Logging.MaxLogFiles)
	}

	return nil
}
