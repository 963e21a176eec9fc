package download

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/github"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/progress"
	"github.com/bianoble/botpack-sync/internal/revision"
	"github.com/bianoble/botpack-sync/internal/state"
	"github.com/bianoble/botpack-sync/internal/testutil"
)

type fixture struct {
	host  *testutil.FakeHost
	store *state.Store
	rec   *progress.Recorder
	d     *Downloader
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	host := testutil.NewFakeHost(t, "RLBot", "RLBotPack")
	host.SetRepoSize(1)
	host.SetLatestRelease("incr-12")
	host.SetSnapshot("master", testutil.Zip(t,
		testutil.Dir("RLBotPack-master"),
		testutil.File("RLBotPack-master/bots/a.cfg", "a"),
		testutil.File("RLBotPack-master/README.md", "readme"),
	))

	root := t.TempDir()
	f := &fixture{
		host:  host,
		store: state.NewStore(filepath.Join(root, "state.yaml")),
		rec:   &progress.Recorder{},
		dir:   filepath.Join(root, "RLBotPackDeletable"),
	}
	f.d = &Downloader{
		Metadata: &github.Client{Fetch: fetch.New(nil, "test"), APIBaseURL: host.URL(), WebBaseURL: host.URL()},
		Fetch:    fetch.New(nil, "test"),
		Tags:     f.store,
		Progress: f.rec,
		Tuning:   Tuning{ProgressInterval: time.Nanosecond},
	}
	return f
}

func (f *fixture) request() Request {
	return Request{Owner: "RLBot", Name: "RLBotPack", Branch: "master", Dir: f.dir, Clobber: true, RecordTag: true, Label: "bot pack"}
}

func TestDownloadSuccess(t *testing.T) {
	f := newFixture(t)

	got := f.d.Download(context.Background(), f.request())
	require.Equal(t, outcome.Success, got.Kind, got.Message)
	assert.Equal(t, "Downloaded the bot pack!", got.Message)

	assert.Equal(t, map[string]string{
		"RLBotPack-master/bots/a.cfg": "a",
		"RLBotPack-master/README.md":  "readme",
	}, testutil.Tree(t, f.dir))

	tag, ok, err := f.store.CurrentTag()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, revision.Tag(12), tag)

	last, ok := f.rec.Last()
	require.True(t, ok)
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, "Extracting zip...", last.Status)
}

func TestDownloadProgressUsesCompressionRatio(t *testing.T) {
	f := newFixture(t)
	f.host.SetRepoSize(2) // 2000 bytes, estimate 1240

	got := f.d.Download(context.Background(), f.request())
	require.True(t, got.IsSuccess(), got.Message)

	events := f.rec.Events()
	require.GreaterOrEqual(t, len(events), 3)
	assert.Zero(t, events[0].Percent)

	var downloading []progress.Event
	for _, e := range events {
		if strings.HasPrefix(e.Status, "Downloading the bot pack:") {
			downloading = append(downloading, e)
		}
	}
	require.NotEmpty(t, downloading)
	size := len(testutil.Zip(t,
		testutil.Dir("RLBotPack-master"),
		testutil.File("RLBotPack-master/bots/a.cfg", "a"),
		testutil.File("RLBotPack-master/README.md", "readme"),
	))
	assert.InDelta(t, float64(size)/1240*100, downloading[len(downloading)-1].Percent, 0.001)
}

func TestDownloadFallbackEstimate(t *testing.T) {
	f := newFixture(t)
	f.host.SetRepoSize(-1)

	got := f.d.Download(context.Background(), f.request())
	assert.True(t, got.IsSuccess(), got.Message)
}

func TestDownloadClobber(t *testing.T) {
	f := newFixture(t)
	testutil.WriteTree(t, f.dir, map[string]string{"RLBotPack-master/stale.py": "old"})

	got := f.d.Download(context.Background(), f.request())
	require.True(t, got.IsSuccess(), got.Message)
	assert.NotContains(t, testutil.Tree(t, f.dir), "RLBotPack-master/stale.py")
}

func TestDownloadWithoutClobberMerges(t *testing.T) {
	f := newFixture(t)
	testutil.WriteTree(t, f.dir, map[string]string{"RLBotPack-master/stale.py": "old", "RLBotPack-master/README.md": "mine"})

	req := f.request()
	req.Clobber = false
	got := f.d.Download(context.Background(), req)
	require.True(t, got.IsSuccess(), got.Message)

	tree := testutil.Tree(t, f.dir)
	assert.Equal(t, "old", tree["RLBotPack-master/stale.py"])
	assert.Equal(t, "readme", tree["RLBotPack-master/README.md"])
}

func TestDownloadNetworkFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *testutil.FakeHost)
	}{
		{"not found", func(h *testutil.FakeHost) { h.Fail(h.SnapshotPath("master"), http.StatusNotFound) }},
		{"interrupted", func(h *testutil.FakeHost) { h.Truncate(h.SnapshotPath("master")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.store.SetTag(3))
			testutil.WriteTree(t, f.dir, map[string]string{"keep.txt": "k"})
			tt.setup(f.host)

			got := f.d.Download(context.Background(), f.request())
			assert.Equal(t, outcome.Skipped, got.Kind)
			assert.Contains(t, got.Message, "Failed to download the bot pack")

			tag, _, err := f.store.CurrentTag()
			require.NoError(t, err)
			assert.Equal(t, revision.Tag(3), tag, "tag must not change on failure")
			assert.Equal(t, map[string]string{"keep.txt": "k"}, testutil.Tree(t, f.dir))
		})
	}
}

func TestDownloadCorruptArchive(t *testing.T) {
	f := newFixture(t)
	f.host.SetSnapshot("master", []byte("definitely not a zip"))

	got := f.d.Download(context.Background(), f.request())
	assert.Equal(t, outcome.Skipped, got.Kind)
	assert.Contains(t, got.Message, "Failed to extract")
	_, ok, _ := f.store.CurrentTag()
	assert.False(t, ok)
}

func TestDownloadTagLookupFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.host.Fail(f.host.ReleasePath(), http.StatusBadGateway)

	got := f.d.Download(context.Background(), f.request())
	require.Equal(t, outcome.Success, got.Kind)
	assert.Contains(t, got.Message, "could not be determined")
	assert.NotEmpty(t, testutil.Tree(t, f.dir))
}

type failingTags struct{}

func (failingTags) CurrentTag() (revision.Tag, bool, error) { return 0, false, nil }
func (failingTags) SetTag(revision.Tag) error              { return errors.New("disk full") }

func TestDownloadTagPersistFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.d.Tags = failingTags{}

	got := f.d.Download(context.Background(), f.request())
	require.Equal(t, outcome.Success, got.Kind)
	assert.Contains(t, got.Message, "could not be saved")
	assert.Contains(t, got.Message, "disk full")
}

func TestDownloadWithoutRecordTag(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.RecordTag = false

	got := f.d.Download(context.Background(), req)
	require.True(t, got.IsSuccess())
	assert.Zero(t, f.host.Hits(f.host.ReleasePath()))
	_, ok, _ := f.store.CurrentTag()
	assert.False(t, ok)
}
