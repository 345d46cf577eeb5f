// Package config loads parley settings from a TOML file, PARLEY_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/auth"
	"github.com/fwojciec/parley/backend"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key to form its environment variable.
const EnvPrefix = "PARLEY"

// Config holds the client settings.
type Config struct {
	BaseURL      string `toml:"base_url" mapstructure:"base_url"`
	Token        string `toml:"token,omitempty" mapstructure:"token"`
	TokenFile    string `toml:"token_file" mapstructure:"token_file"`
	UserID       string `toml:"user_id" mapstructure:"user_id"`
	SpecificUser bool   `toml:"specific_user" mapstructure:"specific_user"`
	LogFile      string `toml:"log_file" mapstructure:"log_file"`
	Debug        bool   `toml:"debug" mapstructure:"debug"`
}

// Dir returns the per-user configuration directory, ~/.config/parley.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".config", "parley"), nil
}

// DefaultPath returns the location of the user config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// NewDefaultConfig returns the settings used when nothing is configured,
// with state files kept under dir.
func NewDefaultConfig(dir string) Config {
	return Config{
		BaseURL:   backend.DefaultBaseURL,
		TokenFile: filepath.Join(dir, "token"),
		LogFile:   filepath.Join(dir, "parley.log"),
	}
}

// NewViper returns a viper instance with defaults and environment
// bindings for every key. Callers bind flags onto it before Load.
func NewViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := NewDefaultConfig(dir)
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("token", def.Token)
	v.SetDefault("token_file", def.TokenFile)
	v.SetDefault("user_id", def.UserID)
	v.SetDefault("specific_user", def.SpecificUser)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("debug", def.Debug)
	return v
}

// Load reads the TOML file at path into v, if it exists, and decodes the
// merged settings. A missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML at path. It refuses to overwrite an existing
// file.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file already exists at: %s", path)
		}
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// TokenSource returns where the bearer token comes from: the literal token
// when one is configured, the token file otherwise.
func (c Config) TokenSource() parley.TokenSource {
	if c.Token != "" {
		return parley.StaticToken(c.Token)
	}
	return auth.FileTokenSource(c.TokenFile)
}

// ResolveUserID returns the configured user id, falling back to the one
// carried by the bearer token.
func (c Config) ResolveUserID() (string, error) {
	if c.UserID != "" {
		return c.UserID, nil
	}
	tok, err := c.TokenSource().Token()
	if err != nil {
		return "", fmt.Errorf("resolve user id: %w", err)
	}
	return auth.UserIDFromToken(tok)
}
