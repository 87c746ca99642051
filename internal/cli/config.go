package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/tailscale/hujson"

	"hotgrep/internal/search"
)

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
)

// Config holds the resolved tuning defaults. Flags still override every
// field per invocation.
type Config struct {
	BlockSize int64
	CacheSize int64
	ShardSize int64
	Workers   int

	// Source is the path of the config file that was loaded, empty when
	// only built-in defaults apply.
	Source string
}

// fileConfig is the on-disk shape. Sizes are humanized strings ("8MiB",
// "2GiB") or plain byte counts; comments and trailing commas are allowed
// (JWCC via hujson).
type fileConfig struct {
	Block   string `json:"block,omitempty"`
	Cache   string `json:"cache,omitempty"`
	Shard   string `json:"shard,omitempty"`
	Workers int    `json:"workers,omitempty"`
}

// DefaultConfig returns the built-in tuning defaults.
func DefaultConfig() Config {
	return Config{
		BlockSize: search.DefaultBlockSize,
		CacheSize: search.DefaultCacheSize,
		ShardSize: search.DefaultShardSize,
	}
}

// configDir returns the tool's config directory.
// Uses $XDG_CONFIG_HOME/hotgrep if set, otherwise ~/.config/hotgrep.
// Returns empty string if neither is determinable.
func configDir(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "hotgrep")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "hotgrep")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest
// wins): built-in defaults, then the global user config if present, then an
// explicit --config file. Flag overrides are applied later by the commands.
//
// A missing global config is fine; a missing explicit one is an error.
func LoadConfig(explicitPath string, env map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if dir := configDir(env); dir != "" {
		path := filepath.Join(dir, "config.json")

		loaded, err := loadConfigFile(path)
		switch {
		case errors.Is(err, errConfigFileNotFound):
			// Defaults apply.
		case err != nil:
			return Config{}, err
		default:
			if cfg, err = loaded.mergeInto(cfg, path); err != nil {
				return Config{}, err
			}

			cfg.Source = path
		}
	}

	if explicitPath != "" {
		loaded, err := loadConfigFile(explicitPath)
		if err != nil {
			return Config{}, err
		}

		if cfg, err = loaded.mergeInto(cfg, explicitPath); err != nil {
			return Config{}, err
		}

		cfg.Source = explicitPath
	}

	return cfg, nil
}

func loadConfigFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
		}

		return fileConfig{}, fmt.Errorf("%w: %s: %v", errConfigFileRead, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%w: %s: %v", errConfigInvalid, path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("%w: %s: %v", errConfigInvalid, path, err)
	}

	return fc, nil
}

// mergeInto overlays the file's non-empty fields onto cfg.
func (fc fileConfig) mergeInto(cfg Config, path string) (Config, error) {
	for _, f := range []struct {
		raw  string
		dst  *int64
		name string
	}{
		{raw: fc.Block, dst: &cfg.BlockSize, name: "block"},
		{raw: fc.Cache, dst: &cfg.CacheSize, name: "cache"},
		{raw: fc.Shard, dst: &cfg.ShardSize, name: "shard"},
	} {
		if f.raw == "" {
			continue
		}

		v, err := parseSize(f.raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %s: %v", errConfigInvalid, path, f.name, err)
		}

		*f.dst = v
	}

	if fc.Workers > 0 {
		cfg.Workers = fc.Workers
	}

	return cfg, nil
}

// parseSize accepts plain byte counts and humanized sizes ("8MiB", "2GB").
func parseSize(s string) (int64, error) {
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	if v > uint64(1)<<62 {
		return 0, fmt.Errorf("size %q too large", s)
	}

	return int64(v), nil
}
