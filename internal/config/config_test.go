package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "relay.toml", `
[server]
address = "irc.example.net"
port = 6668
nickname = "tester"
alt_nickname = "tester_"
username = "test"
realname = "Test Client"

[client]
app_name = "relay"
channels = ["#one", "#two"]

[limits]
keepalive_interval = 30
keepalive_timeout = 90
message_rate = 2.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr() != "irc.example.net:6668" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if got := cfg.Client.Channels; len(got) != 2 || got[1] != "#two" {
		t.Errorf("Channels = %v", got)
	}
	if cfg.Limits.GetKeepaliveIntervalDuration() != 30*time.Second {
		t.Errorf("keepalive interval = %v", cfg.Limits.GetKeepaliveIntervalDuration())
	}
	if cfg.Limits.MessageRate != 2.5 {
		t.Errorf("MessageRate = %v", cfg.Limits.MessageRate)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Limits.GetCloseTimeoutDuration() != 5*time.Second {
		t.Errorf("close timeout = %v", cfg.Limits.GetCloseTimeoutDuration())
	}
	if cfg.Logging.MaxLogFiles != 5 {
		t.Errorf("MaxLogFiles = %d", cfg.Logging.MaxLogFiles)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "relay.yaml", `
server:
  address: irc.example.org
  port: 6667
  nickname: yamlbot
  alt_nickname: yamlbot2
  username: yb
  realname: YAML Bot
  proxy: 127.0.0.1:1080
client:
  app_name: relay
  app_version: "2.0"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Nickname != "yamlbot" || cfg.Server.Proxy != "127.0.0.1:1080" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Client.AppVersion != "2.0" {
		t.Errorf("AppVersion = %q", cfg.Client.AppVersion)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Load = %v, want not found error", err)
	}
}

func TestLoadOrCreate_WritesDefault(t *testing.T) {
	for _, name := range []string{"relay.toml", "relay.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", name)

			cfg, err := LoadOrCreate(path)
			if err != nil {
				t.Fatalf("LoadOrCreate: %v", err)
			}
			if cfg.Server.Nickname != DefaultConfig().Server.Nickname {
				t.Errorf("Nickname = %q", cfg.Server.Nickname)
			}

			reloaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load after create: %v", err)
			}
			if reloaded.Server.AltNickname != cfg.Server.AltNickname {
				t.Errorf("AltNickname = %q, want %q", reloaded.Server.AltNickname, cfg.Server.AltNickname)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing address",
			mutate:  func(c *Config) { c.Server.Address = "" },
			wantErr: "server.address",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "alternate equals primary",
			mutate:  func(c *Config) { c.Server.AltNickname = "RELAY" },
			wantErr: "alt_nickname must differ",
		},
		{
			name: "keepalive timeout too short",
			mutate: func(c *Config) {
				c.Limits.KeepaliveInterval = 60
				c.Limits.KeepaliveTimeout = 30
			},
			wantErr: "keepalive_timeout",
		},
		{
			name: "rate without burst",
			mutate: func(c *Config) {
				c.Limits.MessageRate = 1
				c.Limits.MessageBurst = 0
			},
			wantErr: "message_burst",
		},
		{
			name: "transcript without path",
			mutate: func(c *Config) {
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Database.RetentionDays = -1 },
			wantErr: "retention_days",
		},
		{
			name:    "zero vacuum interval",
			mutate:  func(c *Config) { c.Database.VacuumInterval = 0 },
			wantErr: "vacuum_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
