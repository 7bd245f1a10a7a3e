package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Path == "" {
		t.Error("default config should set a database path")
	}
	if config.Remote.BaseURL == "" {
		t.Error("default config should set a remote base URL")
	}
	if config.Server.Port == 0 {
		t.Error("default config should set a callback server port")
	}
	if config.Drain.RetryInterval <= 0 {
		t.Error("default config should enable the drain recovery timer")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		content := `
[app]
site_url = "https://example.com"

[database]
path = "test.db"

[remote]
base_url = "http://localhost:9000"
write_rate_limit = 2.5

[drain]
retry_interval = 0
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.App.SiteURL != "https://example.com" {
			t.Errorf("expected site_url to be set, got %q", config.App.SiteURL)
		}
		if config.Database.Path != "test.db" {
			t.Errorf("expected database path test.db, got %q", config.Database.Path)
		}
		if config.Remote.WriteRateLimit != 2.5 {
			t.Errorf("expected write rate limit 2.5, got %v", config.Remote.WriteRateLimit)
		}
		if config.Drain.RetryInterval != 0 {
			t.Errorf("expected retry_interval 0, got %d", config.Drain.RetryInterval)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(path, []byte("[remote\nbase_url"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed config file")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected error when config file already exists")
	}
}
