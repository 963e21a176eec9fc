package mappack

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/github"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/testutil"
)

const oldIndex = `{"revision": 4, "maps": [
	{"path": "maps/a.upk", "revision": 1},
	{"path": "maps/b.upk", "revision": 1}
]}`

const newIndex = `{"revision": 5, "maps": [
	{"path": "maps/a.upk", "revision": 1},
	{"path": "maps/b.upk", "revision": 2},
	{"path": "extra/c.upk", "revision": 1}
]}`

func newUpdater(t *testing.T, host *testutil.FakeHost) *Updater {
	t.Helper()
	fc := fetch.New(nil, "test")
	return &Updater{
		Metadata: &github.Client{Fetch: fc, APIBaseURL: host.URL(), WebBaseURL: host.URL()},
		Fetch:    fc,
	}
}

func TestNeedsUpdate(t *testing.T) {
	tests := []struct {
		name  string
		index string
		tag   string
		want  outcome.Kind
	}{
		{"no local index", "", "v5", outcome.RequiresFullDownload},
		{"remote ahead", oldIndex, "v5", outcome.RequiresFullDownload},
		{"equal", oldIndex, "v4", outcome.Skipped},
		{"remote behind", oldIndex, "v3", outcome.Skipped},
		{"corrupt local index", `{"maps": []}`, "v5", outcome.RequiresFullDownload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := testutil.NewFakeHost(t, "azeemba", "RLBotMapPack")
			host.SetLatestRelease(tt.tag)
			dir := t.TempDir()
			if tt.index != "" {
				testutil.WriteTree(t, dir, map[string]string{IndexName: tt.index})
			}

			got := newUpdater(t, host).NeedsUpdate(context.Background(), Request{Owner: "azeemba", Name: "RLBotMapPack", Dir: dir})
			assert.Equal(t, tt.want, got.Kind)
			if tt.want == outcome.Skipped {
				assert.Equal(t, "up to date", got.Message)
			}
		})
	}
}

func TestNeedsUpdateReleaseFailure(t *testing.T) {
	host := testutil.NewFakeHost(t, "o", "n")
	host.Fail(host.ReleasePath(), http.StatusInternalServerError)
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{IndexName: oldIndex})

	got := newUpdater(t, host).NeedsUpdate(context.Background(), Request{Owner: "o", Name: "n", Dir: dir})
	assert.Equal(t, outcome.Skipped, got.Kind)
	assert.NotEqual(t, "up to date", got.Message)
}

func TestRemoteRevisionBadTag(t *testing.T) {
	for _, tag := range []string{"v", "vX1"} {
		host := testutil.NewFakeHost(t, "o", "n")
		host.SetLatestRelease(tag)
		_, err := newUpdater(t, host).RemoteRevision(context.Background(), Request{Owner: "o", Name: "n"})
		assert.ErrorIs(t, err, github.ErrBadTag, tag)
	}
}

func TestHydrateFetchesOnlyChangedMaps(t *testing.T) {
	host := testutil.NewFakeHost(t, "azeemba", "RLBotMapPack")
	host.SetLatestRelease("v5")
	host.AddAsset("a.upk", []byte("A2"))
	host.AddAsset("b.upk", []byte("B2"))
	host.AddAsset("c.upk", []byte("C1"))

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		IndexName:    newIndex,
		"maps/a.upk": "A1",
		"maps/b.upk": "B1",
	})
	prev, err := ParseIndex([]byte(oldIndex))
	require.NoError(t, err)

	res, err := newUpdater(t, host).Hydrate(context.Background(), Request{Owner: "azeemba", Name: "RLBotMapPack", Dir: dir}, prev)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra/c.upk", "maps/b.upk"}, res.Fetched)
	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Unmatched)

	assert.Zero(t, host.Hits(testutil.AssetPath("a.upk")))
	assert.Equal(t, 1, host.Hits(testutil.AssetPath("b.upk")))
	assert.Equal(t, 1, host.Hits(testutil.AssetPath("c.upk")))

	want := map[string]string{
		IndexName:     newIndex,
		"maps/a.upk":  "A1",
		"maps/b.upk":  "B2",
		"extra/c.upk": "C1",
	}
	if diff := cmp.Diff(want, testutil.Tree(t, dir)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateWithoutPreviousIndexFetchesAll(t *testing.T) {
	host := testutil.NewFakeHost(t, "o", "n")
	host.SetLatestRelease("v5")
	host.AddAsset("a.upk", []byte("A"))
	host.AddAsset("b.upk", []byte("B"))

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{IndexName: newIndex})

	res, err := newUpdater(t, host).Hydrate(context.Background(), Request{Owner: "o", Name: "n", Dir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"maps/a.upk", "maps/b.upk"}, res.Fetched)
	assert.Equal(t, []string{"extra/c.upk"}, res.Unmatched)
}

func TestHydrateAssetFailureIsNotFatal(t *testing.T) {
	host := testutil.NewFakeHost(t, "o", "n")
	host.SetLatestRelease("v5")
	host.AddAsset("b.upk", []byte("B2"))
	host.AddAsset("c.upk", []byte("C1"))
	host.Fail(testutil.AssetPath("b.upk"), http.StatusNotFound)

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{IndexName: newIndex, "maps/b.upk": "B1"})
	prev, err := ParseIndex([]byte(oldIndex))
	require.NoError(t, err)

	res, err := newUpdater(t, host).Hydrate(context.Background(), Request{Owner: "o", Name: "n", Dir: dir}, prev)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra/c.upk"}, res.Fetched)
	assert.Equal(t, []string{"maps/b.upk"}, res.Failed)
	assert.Equal(t, "B1", testutil.Tree(t, dir)["maps/b.upk"])
}

func TestHydrateRequiresIndex(t *testing.T) {
	host := testutil.NewFakeHost(t, "o", "n")
	_, err := newUpdater(t, host).Hydrate(context.Background(), Request{Owner: "o", Name: "n", Dir: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestHydrateRejectsEscapingPath(t *testing.T) {
	host := testutil.NewFakeHost(t, "o", "n")
	host.SetLatestRelease("v2")
	host.AddAsset("evil.upk", []byte("x"))

	parent := t.TempDir()
	dir := filepath.Join(parent, "pack")
	testutil.WriteTree(t, dir, map[string]string{IndexName: `{"revision":2,"maps":[{"path":"../evil.upk","revision":1}]}`})

	res, err := newUpdater(t, host).Hydrate(context.Background(), Request{Owner: "o", Name: "n", Dir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"../evil.upk"}, res.Failed)
	assert.NotContains(t, testutil.Tree(t, parent), "evil.upk")
}
