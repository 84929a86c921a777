// Package config loads settings from $HOME/.veda/config.yaml, VEDA_*
// environment variables and command-line flags using viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Keys.
const (
	KeyBaseURL       = "base_url"
	KeyIdleTimeout   = "idle_timeout"
	KeyRetryAttempts = "retry.attempts"
	KeyRetryBackoff  = "retry.backoff"
	KeyRenderer      = "renderer"
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
	KeyCookieFile    = "cookie_file"
)

// MaxRetryAttempts bounds retry.attempts.
const MaxRetryAttempts = 10

// Renderer names.
const (
	RendererGoldmark = "goldmark"
	RendererGlamour  = "glamour"
)

const (
	dirName   = ".veda"
	fileName  = "config"
	envPrefix = "VEDA"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL     string
	IdleTimeout time.Duration
	Retry       Retry
	Renderer    string
	Log         Log
	CookieFile  string
}

// Retry controls reconnection when establishing a stream.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

// Log controls the zap logger. An empty File disables logging.
type Log struct {
	Level string
	File  string
}

// Dir returns the application directory, $HOME/.veda.
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// New returns a viper instance with defaults set and the config file
// search path pointed at dir. Environment variables such as
// VEDA_BASE_URL and VEDA_RETRY_ATTEMPTS override file values.
func New(dir string) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, "http://localhost:3000")
	v.SetDefault(KeyIdleTimeout, 2*time.Minute)
	v.SetDefault(KeyRetryAttempts, 1)
	v.SetDefault(KeyRetryBackoff, 500*time.Millisecond)
	v.SetDefault(KeyRenderer, RendererGoldmark)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyCookieFile, filepath.Join(dir, "cookies.json"))

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read reads the config file if one exists. A missing file is not an
// error; defaults and environment apply.
func Read(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
}

// Load resolves and validates a Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:     strings.TrimRight(v.GetString(KeyBaseURL), "/"),
		IdleTimeout: v.GetDuration(KeyIdleTimeout),
		Retry: Retry{
			Attempts: v.GetInt(KeyRetryAttempts),
			Backoff:  v.GetDuration(KeyRetryBackoff),
		},
		Renderer:   strings.ToLower(v.GetString(KeyRenderer)),
		Log:        Log{Level: v.GetString(KeyLogLevel), File: v.GetString(KeyLogFile)},
		CookieFile: v.GetString(KeyCookieFile),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: %s %q is not an absolute URL", KeyBaseURL, c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: %s scheme must be http or https, got %q", KeyBaseURL, u.Scheme)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("config: %s must not be negative", KeyIdleTimeout)
	}
	if c.Retry.Attempts < 1 || c.Retry.Attempts > MaxRetryAttempts {
		return fmt.Errorf("config: %s must be between 1 and %d, got %d", KeyRetryAttempts, MaxRetryAttempts, c.Retry.Attempts)
	}
	if c.Retry.Backoff < 0 {
		return fmt.Errorf("config: %s must not be negative", KeyRetryBackoff)
	}
	switch c.Renderer {
	case RendererGoldmark, RendererGlamour:
	default:
		return fmt.Errorf("config: unknown %s %q", KeyRenderer, c.Renderer)
	}
	if c.CookieFile == "" {
		return fmt.Errorf("config: %s must be set", KeyCookieFile)
	}
	return nil
}

// URL returns the parsed base URL. Valid after Validate succeeds.
func (c Config) URL() *url.URL {
	u, _ := url.Parse(c.BaseURL)
	return u
}
