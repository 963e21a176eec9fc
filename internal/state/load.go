// Package state persists the installed revision tag and folder visibility
// settings between runs.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bianoble/botpack-sync/internal/revision"
)

// Load reads and validates a state file. A missing file yields an empty
// state.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state %s: %w", path, err)
	}

	st := New()
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("parsing state %s: %w", path, err)
	}
	if st.Version == 0 {
		st.Version = 1
	}

	if errs := Validate(st); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return st, nil
}

// Save writes a state file atomically using a temp file and rename.
func Save(path string, st *State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp state %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp state to %s: %w", path, err)
	}

	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("state validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a State for semantic correctness.
// An unparsable tag is reported by CurrentTag rather than here, so a
// corrupt tag still lets the rest of the state load.
func Validate(st *State) []string {
	var errs []string

	if st.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d, only version 1 is supported", st.Version))
	}

	for p := range st.Botpack.Folders {
		if p == "" {
			errs = append(errs, "bot_folder_settings.folders: empty folder path")
		}
	}
	for p := range st.Botpack.Files {
		if p == "" {
			errs = append(errs, "bot_folder_settings.files: empty file path")
		}
	}

	return errs
}

// Tag parses the persisted revision. ok is false when none is recorded.
func (st *State) Tag() (tag revision.Tag, ok bool, err error) {
	if strings.TrimSpace(st.Botpack.Incr) == "" {
		return 0, false, nil
	}
	tag, err = revision.Parse(st.Botpack.Incr)
	if err != nil {
		return 0, false, fmt.Errorf("persisted tag: %w", err)
	}
	return tag, true, nil
}
