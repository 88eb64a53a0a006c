package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/inklet-labs/marksync/internal/adapters/driven/remote"
	"github.com/inklet-labs/marksync/internal/core/services"
)

// Config is the on-disk TOML configuration.
type Config struct {
	Auth   AuthConfig   `toml:"auth"`
	Save   SaveConfig   `toml:"save"`
	Remote RemoteConfig `toml:"remote"`
	Device DeviceConfig `toml:"device"`
}

// AuthConfig tunes token refresh behaviour.
type AuthConfig struct {
	// RefreshSkewSeconds is how long before expiry a token is refreshed.
	RefreshSkewSeconds int `toml:"refresh_skew_seconds"`
	// RetryBudget bounds consecutive transient refresh failures.
	RetryBudget int `toml:"retry_budget"`
}

// SaveConfig tunes save behaviour.
type SaveConfig struct {
	// AllowUnversioned permits unconditional writes for files whose
	// version token or folder is unknown.
	AllowUnversioned *bool `toml:"allow_unversioned"`
}

// RemoteConfig locates the provider endpoints.
type RemoteConfig struct {
	TokenURL          string  `toml:"token_url"`
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	RedirectURI       string  `toml:"redirect_uri"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BurstSize         int     `toml:"burst_size"`
}

// DeviceConfig overrides the device label used in fork filenames.
type DeviceConfig struct {
	Label string `toml:"label"`
}

// Load reads the configuration from configDir/config.toml.
// If configDir is empty, defaults to ~/.marksync. A missing file yields the
// zero Config; a malformed file is an error.
func Load(configDir string) (Config, error) {
	var cfg Config

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, err
		}
		configDir = filepath.Join(home, ".marksync")
	}

	raw, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ServiceConfig converts the file values into the service configuration.
// Zero values are left for services.Config to default.
func (c Config) ServiceConfig() services.Config {
	out := services.Config{
		RefreshSkew: time.Duration(c.Auth.RefreshSkewSeconds) * time.Second,
		RetryBudget: c.Auth.RetryBudget,
	}
	if c.Save.AllowUnversioned != nil {
		out.AllowUnversionedSave = *c.Save.AllowUnversioned
	} else {
		out.AllowUnversionedSave = services.DefaultConfig().AllowUnversionedSave
	}
	return out
}

// OAuthEndpoint converts the remote section into a token endpoint.
func (c Config) OAuthEndpoint() remote.OAuthEndpoint {
	return remote.OAuthEndpoint{
		TokenURL:     c.Remote.TokenURL,
		ClientID:     c.Remote.ClientID,
		ClientSecret: c.Remote.ClientSecret,
		RedirectURI:  c.Remote.RedirectURI,
	}
}

// FileEndpoint converts the remote section into a file endpoint.
func (c Config) FileEndpoint() remote.FileEndpoint {
	return remote.FileEndpoint{
		BaseURL: c.Remote.BaseURL,
		RateLimit: remote.RateLimitConfig{
			RequestsPerSecond: c.Remote.RequestsPerSecond,
			BurstSize:         c.Remote.BurstSize,
		},
	}
}
