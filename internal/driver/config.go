package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"strswitch/internal/selector"
)

// ConfigName is the project configuration file looked up from the working directory.
const ConfigName = "strswitch.toml"

// Config is the resolved project configuration.
type Config struct {
	// Path is the file the config came from, empty when defaults are used.
	Path     string
	Planner  selector.Options
	CacheDir string
	// CacheEnabled turns the on-disk plan cache on.
	CacheEnabled bool
}

type configFile struct {
	Planner struct {
		MinCases           int  `toml:"min_cases"`
		DenseFactor        int  `toml:"dense_factor"`
		MaxProbeOffset     int  `toml:"max_probe_offset"`
		NodeBudgetFactor   int  `toml:"node_budget_factor"`
		DisableLengthBased bool `toml:"disable_length_based"`
	} `toml:"planner"`
	Cache struct {
		Enabled bool   `toml:"enabled"`
		Dir     string `toml:"dir"`
	} `toml:"cache"`
}

// DefaultConfig is used when no strswitch.toml exists.
func DefaultConfig() Config {
	return Config{Planner: selector.DefaultOptions()}
}

// FindConfig walks up from startDir to the filesystem root looking for strswitch.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadConfig finds and reads the project configuration. A missing file is not an error.
func LoadConfig(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return DefaultConfig(), err
	}
	return ReadConfig(path)
}

// ReadConfig parses path. Only keys present in the file override defaults;
// a relative cache dir is resolved against the file's directory.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Path = path

	var f configFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	p := &cfg.Planner
	if meta.IsDefined("planner", "min_cases") {
		if f.Planner.MinCases < 0 {
			return Config{}, fmt.Errorf("%s: [planner].min_cases must not be negative", path)
		}
		p.MinCases = f.Planner.MinCases
	}
	if meta.IsDefined("planner", "dense_factor") {
		if f.Planner.DenseFactor < 1 {
			return Config{}, fmt.Errorf("%s: [planner].dense_factor must be at least 1", path)
		}
		p.DenseFactor = f.Planner.DenseFactor
	}
	if meta.IsDefined("planner", "max_probe_offset") {
		p.MaxProbeOffset = f.Planner.MaxProbeOffset
	}
	if meta.IsDefined("planner", "node_budget_factor") {
		p.NodeBudgetFactor = f.Planner.NodeBudgetFactor
	}
	if meta.IsDefined("planner", "disable_length_based") {
		p.DisableLengthBased = f.Planner.DisableLengthBased
	}

	if meta.IsDefined("cache") {
		cfg.CacheEnabled = true
		if meta.IsDefined("cache", "enabled") {
			cfg.CacheEnabled = f.Cache.Enabled
		}
		cfg.CacheDir = f.Cache.Dir
		if cfg.CacheDir != "" && !filepath.IsAbs(cfg.CacheDir) {
			cfg.CacheDir = filepath.Join(filepath.Dir(path), cfg.CacheDir)
		}
	}
	return cfg, nil
}
