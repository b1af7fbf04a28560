package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// projectManifest is the optional nbaio.toml found by walking up from the
// working directory. It supplies defaults that flags can override.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Download downloadConfig `toml:"download"`
	Shell    shellConfig    `toml:"shell"`
}

type downloadConfig struct {
	Concurrent int    `toml:"concurrent"`
	Insecure   bool   `toml:"insecure"`
	Cache      bool   `toml:"cache"`
	Output     string `toml:"output"`
}

type shellConfig struct {
	Concurrent int `toml:"concurrent"`
}

func defaultConfig() projectConfig {
	return projectConfig{
		Download: downloadConfig{Concurrent: 5, Cache: true},
		Shell:    shellConfig{Concurrent: 5},
	}
}

func findNbaioToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "nbaio.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectConfig returns manifest-backed configuration, falling back to
// defaults when no nbaio.toml exists.
func loadProjectConfig(startDir string) (projectConfig, *projectManifest, error) {
	cfg := defaultConfig()
	path, ok, err := findNbaioToml(startDir)
	if err != nil || !ok {
		return cfg, nil, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Download.Concurrent <= 0 {
		cfg.Download.Concurrent = 5
	}
	if cfg.Shell.Concurrent <= 0 {
		cfg.Shell.Concurrent = 5
	}
	manifest := &projectManifest{Path: path, Root: filepath.Dir(path), Config: cfg}
	return cfg, manifest, nil
}
