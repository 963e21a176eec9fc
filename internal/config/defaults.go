package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Default returns the built-in configuration.
func Default() *Config {
	enabled := true
	return &Config{
		Version:        1,
		ContentDir:     DefaultContentDir(),
		APIBaseURL:     "https://api.github.com",
		WebBaseURL:     "https://github.com",
		RequestTimeout: 30 * time.Second,
		Botpack: Pack{
			Owner:  "RLBot",
			Name:   "RLBotPack",
			Branch: "master",
			Folder: "RLBotPackDeletable",
		},
		Mappack: Pack{
			Owner:  "azeemba",
			Name:   "RLBotMapPack",
			Branch: "main",
			Folder: "RLBotMapPackDeletable",
		},
		Tuning: Tuning{
			MaxPatchGap:      50,
			SizeScale:        1000,
			CompressionRatio: 0.62,
			FallbackSize:     170_000_000,
			ProgressInterval: 100 * time.Millisecond,
		},
		OnlineCheck: OnlineCheck{
			Enabled: &enabled,
			Addrs:   []string{"clients3.google.com:80", "detectportal.firefox.com:80"},
			Timeout: 5 * time.Second,
		},
	}
}

// DefaultContentDir returns the platform data directory for packs and state.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share/botpack-sync.
func DefaultContentDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName)
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, configDirName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), configDirName)
	}
	return filepath.Join(home, ".local", "share", configDirName)
}

// StatePath is the resolved state file location.
func (c *Config) StatePath() string {
	if c.StateFile != "" {
		return expandHome(c.StateFile)
	}
	return filepath.Join(c.contentDir(), "state.yaml")
}

// CachePath is the resolved patch cache directory.
func (c *Config) CachePath() string {
	if c.CacheDir != "" {
		return expandHome(c.CacheDir)
	}
	return filepath.Join(c.contentDir(), "cache")
}

// PackDir is the folder a pack's snapshot is extracted into.
func (c *Config) PackDir(p Pack) string {
	folder := expandHome(p.Folder)
	if filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(c.contentDir(), folder)
}

// CheckoutDir is the directory the snapshot archive unpacks to, named
// after the repository and branch.
func (c *Config) CheckoutDir(p Pack) string {
	return filepath.Join(c.PackDir(p), p.Name+"-"+p.Branch)
}

func (c *Config) contentDir() string {
	if c.ContentDir == "" {
		return DefaultContentDir()
	}
	return expandHome(c.ContentDir)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
