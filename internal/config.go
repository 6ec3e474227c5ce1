package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the CLI
const EnvPrefix = "CHATLEGIS"

// Configuration keys
const (
	KeyBaseURL       = "base_url"
	KeyAPIPrefix     = "api_prefix"
	KeyTimeout       = "http.timeout"
	KeyToken         = "token"
	KeyDataDir       = "data_dir"
	KeySession       = "session"
	KeyAudioMinBytes = "audio.min_bytes"
	KeyLogLevel      = "log_level"
)

// Config is the resolved runtime configuration
type Config struct {
	BaseURL       string
	APIPrefix     string
	Timeout       time.Duration
	Token         string
	DataDir       string
	Session       string
	AudioMinBytes int
	LogLevel      string
}

// DefaultDataDir returns $HOME/.chatlegis, or .chatlegis when there is no home
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatlegis"
	}
	return filepath.Join(home, ".chatlegis")
}

// NewViper returns a viper instance carrying defaults and env bindings.
// Precedence: flags > environment (.env included) > config file > defaults.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyAPIPrefix, DefaultAPIPrefix)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeySession, DefaultSessionName)
	v.SetDefault(KeyAudioMinBytes, DefaultMinAudioBytes)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads a local .env file into the process environment without
// overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	LogDebug("Loaded environment file", "path", path)
	return nil
}

// LoadConfig reads the optional config file and resolves every key.
// configFile may be empty, in which case <data_dir>/config.yaml is tried.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString(KeyDataDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		LogDebug("Loaded config file", "path", v.ConfigFileUsed())
	}

	cfg := &Config{
		BaseURL:       v.GetString(KeyBaseURL),
		APIPrefix:     v.GetString(KeyAPIPrefix),
		Timeout:       v.GetDuration(KeyTimeout),
		Token:         v.GetString(KeyToken),
		DataDir:       v.GetString(KeyDataDir),
		Session:       v.GetString(KeySession),
		AudioMinBytes: v.GetInt(KeyAudioMinBytes),
		LogLevel:      v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%s must be configured", KeyBaseURL)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%s must start with http:// or https://, got %q", KeyBaseURL, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%s must be configured", KeyDataDir)
	}
	if c.Session == "" {
		c.Session = DefaultSessionName
	}
	if c.AudioMinBytes <= 0 {
		c.AudioMinBytes = DefaultMinAudioBytes
	}
	return nil
}

// StorePath is the SQLite session database
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "chatlegis.db")
}

// CacheDir holds the per-session conversation list caches
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "conversations")
}

// Endpoints derives the backend routes
func (c *Config) Endpoints() Endpoints {
	return NewEndpoints(c.BaseURL, c.APIPrefix)
}
