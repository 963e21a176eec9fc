package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/botpack-sync/internal/revision"
)

func TestStoreTagRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.yaml"))

	_, ok, err := s.CurrentTag()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetTag(5))
	tag, ok, err := s.CurrentTag()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, revision.Tag(5), tag)

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "incr: incr-5")

	require.NoError(t, s.ClearTag())
	_, ok, err = s.CurrentTag()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreAddFolderKeepsTag(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "state.yaml"))
	require.NoError(t, s.SetTag(9))

	folder := filepath.Join(dir, "RLBotPackDeletable")
	require.NoError(t, s.AddFolder(folder))
	require.NoError(t, s.AddFolder(folder))

	folders, err := s.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{folder}, folders)

	tag, ok, err := s.CurrentTag()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, revision.Tag(9), tag)
}

func TestStoreImplementsTagStore(t *testing.T) {
	var _ TagStore = (*Store)(nil)
}
