package state

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bianoble/botpack-sync/internal/revision"
)

// TagStore reads and writes the installed revision tag.
type TagStore interface {
	// CurrentTag returns the persisted tag; ok is false when none exists.
	// An error means the persisted value is unreadable or corrupt.
	CurrentTag() (tag revision.Tag, ok bool, err error)
	SetTag(tag revision.Tag) error
}

// Store is a state file handle. Every mutation is a read-modify-write of
// the file so the file on disk is always the checkpoint.
type Store struct {
	Path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the current contents of the state file.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Load(s.Path)
}

// CurrentTag implements TagStore.
func (s *Store) CurrentTag() (revision.Tag, bool, error) {
	st, err := s.Load()
	if err != nil {
		return 0, false, err
	}
	return st.Tag()
}

// SetTag implements TagStore.
func (s *Store) SetTag(tag revision.Tag) error {
	return s.update(func(st *State) {
		st.Botpack.Incr = tag.String()
	})
}

// ClearTag forgets the installed revision.
func (s *Store) ClearTag() error {
	return s.update(func(st *State) {
		st.Botpack.Incr = ""
	})
}

// AddFolder registers dir as a visible bot folder.
func (s *Store) AddFolder(dir string) error {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return s.update(func(st *State) {
		if st.Botpack.Folders == nil {
			st.Botpack.Folders = map[string]FolderSettings{}
		}
		st.Botpack.Folders[dir] = FolderSettings{Visible: true}
	})
}

// Folders returns the registered folder paths in sorted order.
func (s *Store) Folders() ([]string, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(st.Botpack.Folders))
	for p := range st.Botpack.Folders {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := Load(s.Path)
	if err != nil {
		return err
	}
	fn(st)
	if err := Save(s.Path, st); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}
