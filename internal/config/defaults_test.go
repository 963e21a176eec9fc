package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvedPaths(t *testing.T) {
	cfg := Default()
	cfg.ContentDir = "/data"

	if got, want := cfg.StatePath(), filepath.Join("/data", "state.yaml"); got != want {
		t.Errorf("StatePath() = %q, want %q", got, want)
	}
	if got, want := cfg.CachePath(), filepath.Join("/data", "cache"); got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
	if got, want := cfg.CheckoutDir(cfg.Botpack), filepath.Join("/data", "RLBotPackDeletable", "RLBotPack-master"); got != want {
		t.Errorf("CheckoutDir(botpack) = %q, want %q", got, want)
	}
	if got, want := cfg.CheckoutDir(cfg.Mappack), filepath.Join("/data", "RLBotMapPackDeletable", "RLBotMapPack-main"); got != want {
		t.Errorf("CheckoutDir(mappack) = %q, want %q", got, want)
	}

	cfg.StateFile = "/elsewhere/s.yaml"
	cfg.Botpack.Folder = "/abs/bots"
	if got := cfg.StatePath(); got != "/elsewhere/s.yaml" {
		t.Errorf("StatePath() = %q", got)
	}
	if got := cfg.PackDir(cfg.Botpack); got != "/abs/bots" {
		t.Errorf("PackDir() = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/packs"); got != filepath.Join(home, "packs") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %q", got)
	}
}

func TestDefaultContentDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	if got := DefaultContentDir(); got != filepath.Join("/xdg", "botpack-sync") {
		t.Errorf("DefaultContentDir() = %q", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("BOTPACK_SYNC_CONFIG", "/tmp/custom.yaml")
	if got := DefaultPath(); got != "/tmp/custom.yaml" {
		t.Errorf("DefaultPath() = %q", got)
	}

	t.Setenv("BOTPACK_SYNC_CONFIG", "")
	if got := DefaultPath(); filepath.Base(got) != "config.yaml" {
		t.Errorf("DefaultPath() = %q, want config.yaml", got)
	}
}

func TestEnvSkipOnlineCheck(t *testing.T) {
	for _, tt := range []struct {
		val  string
		want bool
	}{{"1", true}, {"TRUE", true}, {" true ", true}, {"0", false}, {"", false}} {
		t.Setenv("BOTPACK_SYNC_SKIP_ONLINE_CHECK", tt.val)
		if got := EnvSkipOnlineCheck(); got != tt.want {
			t.Errorf("EnvSkipOnlineCheck() with %q = %v, want %v", tt.val, got, tt.want)
		}
	}
}
