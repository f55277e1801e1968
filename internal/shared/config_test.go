package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("Valid File", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[credentials.spotify]
client_id = "id"
client_secret = "secret"
redirect_uri = "http://localhost:9999/callback"

[server]
host = "0.0.0.0"
port = 9999

[sessions]
backend = "sqlite"
path = "test.db"

[protection]
enabled = true
window_seconds = 30
burst = 2
detect_bots = false
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Credentials.Spotify.ClientID != "id" {
				t.Errorf("unexpected client_id: %q", config.Credentials.Spotify.ClientID)
			}
			if config.Server.Port != 9999 {
				t.Errorf("unexpected port: %d", config.Server.Port)
			}
			if config.Sessions.Backend != "sqlite" {
				t.Errorf("unexpected backend: %q", config.Sessions.Backend)
			}
			if config.Protection.WindowSeconds != 30 {
				t.Errorf("unexpected window: %d", config.Protection.WindowSeconds)
			}
			if config.Protection.DetectBots {
				t.Error("expected bot detection disabled")
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
				t.Error("expected error for missing file")
			}
		})

		t.Run("Invalid TOML", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for invalid TOML")
			}
		})
	})

	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 8080 {
			t.Errorf("unexpected default port: %d", config.Server.Port)
		}
		if config.Sessions.Backend != "memory" {
			t.Errorf("unexpected default backend: %q", config.Sessions.Backend)
		}
		if !config.Protection.Enabled {
			t.Error("expected protection enabled by default")
		}
		if config.Protection.WindowSeconds != 60 {
			t.Errorf("unexpected default window: %d", config.Protection.WindowSeconds)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := LoadConfig(path); err != nil {
			t.Errorf("written config should parse: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
