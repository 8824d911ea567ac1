package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. RELEASE_UTIL_API_BASE.
	EnvPrefix = "RELEASE_UTIL"

	configFileName = "config.yaml"
	prefsFileName  = "prefs.yaml"
)

// Config holds user configuration for the release client.
type Config struct {
	HomeDir       string        `mapstructure:"home_dir"`
	APIBase       string        `mapstructure:"api_base"`
	Token         string        `mapstructure:"token"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	RequireLength bool          `mapstructure:"require_length"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		HomeDir:   filepath.Join(home, ".release-util"),
		APIBase:   "https://api.github.com/repos",
		UserAgent: "release-util",
		Timeout:   30 * time.Second,
		ChunkSize: 32 << 10,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"home":         "home_dir",
	"api-base":     "api_base",
	"token":        "token",
	"timeout":      "timeout",
	"require-size": "require_length",
}

// Load resolves configuration from defaults, <home>/config.yaml, the
// environment and flags, later sources winning. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Defaults()
	v.SetDefault("home_dir", def.HomeDir)
	v.SetDefault("api_base", def.APIBase)
	v.SetDefault("token", "")
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("require_length", def.RequireLength)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// HOME_DIR and GITHUB_TOKEN are honoured as well as the prefixed names
	_ = v.BindEnv("home_dir", EnvPrefix+"_HOME_DIR", "HOME_DIR")
	_ = v.BindEnv("token", EnvPrefix+"_TOKEN", "GITHUB_TOKEN")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	home := v.GetString("home_dir")
	v.SetConfigFile(filepath.Join(home, configFileName))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = home

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_base %q: must be an http(s) URL", c.APIBase)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk_size %d", c.ChunkSize)
	}
	return nil
}

// ConfigPath returns the config file consulted by Load.
func (c Config) ConfigPath() string { return filepath.Join(c.HomeDir, configFileName) }

// PrefsPath returns the local version store.
func (c Config) PrefsPath() string { return filepath.Join(c.HomeDir, prefsFileName) }
