package botpacksync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/botpack-sync/internal/config"
	"github.com/bianoble/botpack-sync/internal/testutil"
)

// writeConfig writes a config pointing both packs at host and returns its path.
func writeConfig(t *testing.T, dir, hostURL string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `version: 1
content_dir: ` + filepath.Join(dir, "content") + `
api_base_url: ` + hostURL + `
web_base_url: ` + hostURL + `
user_agent: test
online_check:
  enabled: false
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestNewFromConfigPath(t *testing.T) {
	dir := t.TempDir()
	client, err := New(Options{ConfigPath: writeConfig(t, dir, "http://127.0.0.1:1")})
	require.NoError(t, err)

	cfg := client.Config()
	assert.Equal(t, filepath.Join(dir, "content"), cfg.ContentDir)
	assert.Equal(t, "RLBot", cfg.Botpack.Owner)
	assert.False(t, cfg.OnlineCheck.IsEnabled())
	assert.True(t, client.IsOnline(context.Background()))
}

func TestNewMissingConfigUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	client, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)
	assert.Equal(t, config.Default().Botpack, client.Config().Botpack)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContentDir = t.TempDir()
	cfg.Version = 2
	cfg.Botpack.Owner = ""

	_, err := New(Options{Config: cfg})
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}

func TestClientEnsureBotpack(t *testing.T) {
	host := testutil.NewFakeHost(t, "RLBot", "RLBotPack")
	host.SetRepoSize(1)
	host.SetLatestRelease("incr-3")
	host.SetSnapshot("master", testutil.Zip(t,
		testutil.Dir("RLBotPack-master"),
		testutil.File("RLBotPack-master/bots/a.cfg", "a"),
	))

	var mu sync.Mutex
	var statuses []string
	dir := t.TempDir()
	client, err := New(Options{
		ConfigPath: writeConfig(t, dir, host.URL()),
		Progress: ProgressFunc(func(_ float64, status string) error {
			mu.Lock()
			defer mu.Unlock()
			statuses = append(statuses, status)
			return nil
		}),
	})
	require.NoError(t, err)

	res := client.EnsureBotpack(context.Background())
	require.Equal(t, Success, res.Outcome.Kind, res.Outcome.Message)
	assert.True(t, res.FullDownload)
	assert.Contains(t, statuses, "Extracting zip...")
	assert.True(t, client.IsBotpackUpToDate(context.Background()))

	st, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, Tag(3), st.Tag)
	assert.True(t, st.CheckoutPresent)

	res = client.EnsureBotpack(context.Background())
	assert.Equal(t, Skipped, res.Outcome.Kind)
}

func TestClientCache(t *testing.T) {
	dir := t.TempDir()
	client, err := New(Options{ConfigPath: writeConfig(t, dir, "http://127.0.0.1:1")})
	require.NoError(t, err)

	size, err := client.CacheSize()
	require.NoError(t, err)
	assert.Zero(t, size)
	require.NoError(t, client.CleanCache())
}
