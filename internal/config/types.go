package config

import (
	"net"
	"strconv"
	"time"
)

// Config represents the complete client configuration
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Client   ClientConfig   `toml:"client" yaml:"client"`
	Limits   LimitsConfig   `toml:"limits" yaml:"limits"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// ServerConfig contains connection and identity settings
type ServerConfig struct {
	Address     string `toml:"address" yaml:"address"`
	Port        int    `toml:"port" yaml:"port"`
	Nickname    string `toml:"nickname" yaml:"nickname"`
	AltNickname string `toml:"alt_nickname" yaml:"alt_nickname"`
	Username    string `toml:"username" yaml:"username"`
	Realname    string `toml:"realname" yaml:"realname"`
	Proxy       string `toml:"proxy" yaml:"proxy"` // SOCKS5 host:port, empty uses the environment
}

// ClientConfig contains what the client says about itself and where it goes
type ClientConfig struct {
	AppName    string   `toml:"app_name" yaml:"app_name"`
	AppVersion string   `toml:"app_version" yaml:"app_version"`
	SourceURL  string   `toml:"source_url" yaml:"source_url"`
	Channels   []string `toml:"channels" yaml:"channels"`
}

// LimitsConfig contains keepalive, teardown and flood settings
type LimitsConfig struct {
	KeepaliveInterval int     `toml:"keepalive_interval" yaml:"keepalive_interval"` // seconds, 0 disables
	KeepaliveTimeout  int     `toml:"keepalive_timeout" yaml:"keepalive_timeout"`   // seconds
	CloseTimeout      int     `toml:"close_timeout" yaml:"close_timeout"`           // seconds
	MessageRate       float64 `toml:"message_rate" yaml:"message_rate"`             // messages per second, 0 disables
	MessageBurst      int     `toml:"message_burst" yaml:"message_burst"`
}

// DatabaseConfig contains transcript store settings
type DatabaseConfig struct {
	Path           string `toml:"path" yaml:"path"`
	Transcript     bool   `toml:"transcript" yaml:"transcript"`
	WALMode        bool   `toml:"wal_mode" yaml:"wal_mode"`
	RetentionDays  int    `toml:"retention_days" yaml:"retention_days"`   // 0 keeps everything
	VacuumInterval int    `toml:"vacuum_interval" yaml:"vacuum_interval"` // hours between maintenance runs
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	ErrorLog     string `toml:"error_log" yaml:"error_log"`
	MaxLogSizeMB int    `toml:"max_log_size_mb" yaml:"max_log_size_mb"`
	MaxLogFiles  int    `toml:"max_log_files" yaml:"max_log_files"`
}

// Addr returns the host:port to dial
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// GetKeepaliveIntervalDuration returns the keepalive interval as a time.Duration
func (c *LimitsConfig) GetKeepaliveIntervalDuration() time.Duration {
	return time.Duration(c.KeepaliveInterval) * time.Second
}

// GetKeepaliveTimeoutDuration returns the keepalive timeout as a time.Duration
func (c *LimitsConfig) GetKeepaliveTimeoutDuration() time.Duration {
	return time.Duration(c.KeepaliveTimeout) * time.Second
}

// GetCloseTimeoutDuration returns the close timeout as a time.Duration
func (c *LimitsConfig) GetCloseTimeoutDuration() time.Duration {
	return time.Duration(c.CloseTimeout) * time.Second
}

// GetVacuumIntervalDuration returns the maintenance interval as a time.Duration
func (c *DatabaseConfig) GetVacuumIntervalDuration() time.Duration {
	return time.Duration(c.VacuumInterval) * time.Hour
}
