package config

import (
	"os"
	"path/filepath"
	"strings"
)

const configFileName = "config.yaml"
const configDirName = "botpack-sync"

// DefaultPath returns the configuration file location. BOTPACK_SYNC_CONFIG
// overrides the platform user config directory.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("BOTPACK_SYNC_CONFIG")); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// EnvSkipOnlineCheck returns true if BOTPACK_SYNC_SKIP_ONLINE_CHECK is set
// to "1" or "true".
func EnvSkipOnlineCheck() bool {
	return envBoolTrue("BOTPACK_SYNC_SKIP_ONLINE_CHECK")
}

// envBoolTrue returns true if the env var is set to "1" or "true" (case-insensitive).
func envBoolTrue(key string) bool {
	v := os.Getenv(key)
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true"
}
