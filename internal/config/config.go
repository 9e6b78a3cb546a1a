// Package config loads settings from an optional YAML file, then lets
// MASTERTASKS_* environment variables override them. Command-line flags are
// applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/idilsaglam/mastertasks/internal/store/selector"
)

const (
	appDirName     = ".mastertasks"
	configFileName = "config"
)

type Config struct {
	// DataDir holds the database files.
	DataDir string `env:"MASTERTASKS_DATA_DIR"`
	// Platform is auto, native or desktop.
	Platform string `env:"MASTERTASKS_PLATFORM"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `env:"MASTERTASKS_LOG_LEVEL"`
	// Theme is classic, neon or mono.
	Theme string `env:"MASTERTASKS_THEME"`
}

// BaseDir is ~/.mastertasks, or the working directory when there is no home.
func BaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if wd, werr := os.Getwd(); werr == nil {
			return filepath.Join(wd, appDirName)
		}
		return appDirName
	}
	return filepath.Join(home, appDirName)
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DataDir:  BaseDir(),
		Platform: string(selector.PlatformAuto),
		LogLevel: "warn",
		Theme:    "classic",
	}
}

// Load reads path (or config.yaml in BaseDir when path is empty), then
// applies environment overrides. A missing default file is fine; a missing
// explicit file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(BaseDir())
	}
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("platform", cfg.Platform)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("theme", cfg.Theme)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.DataDir = v.GetString("data_dir")
	cfg.Platform = v.GetString("platform")
	cfg.LogLevel = v.GetString("log_level")
	cfg.Theme = v.GetString("theme")

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the app cannot act on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if _, err := selector.ParsePlatform(c.Platform); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Theme) {
	case "", "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
