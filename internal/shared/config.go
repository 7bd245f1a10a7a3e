package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Remote   RemoteConfig   `toml:"remote"`
	Server   ServerConfig   `toml:"server"`
	Drain    DrainConfig    `toml:"drain"`
}

// AppConfig contains host application settings.
type AppConfig struct {
	// SiteURL is the host web application where the sign-in session lives.
	SiteURL string `toml:"site_url"`
}

// AuthConfig contains OAuth2 credentials for the host application's identity provider.
type AuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains settings for the shared local storage area.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RemoteConfig contains connection settings for the remote content store.
type RemoteConfig struct {
	BaseURL string `toml:"base_url"`
	// WatchURL is the websocket endpoint pushing live result-set snapshots.
	WatchURL string `toml:"watch_url"`
	// WriteRateLimit caps remote writes per second. Zero disables limiting.
	WriteRateLimit float64 `toml:"write_rate_limit"`
}

// ServerConfig contains settings for the local sign-in callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DrainConfig contains settings for the background queue drainer.
type DrainConfig struct {
	// RetryInterval is the recovery timer in seconds for re-attempting a
	// failed drain when no append signal arrives. Zero disables the timer.
	RetryInterval int `toml:"retry_interval"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
