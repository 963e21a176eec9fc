// Package sandbox confines filesystem mutation to a root directory.
package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrOutsideRoot is wrapped by errors for paths that resolve outside the root.
var ErrOutsideRoot = errors.New("path escapes root")

// ValidatePath checks if targetPath is safely within root.
// It resolves symlinks, normalizes paths, and verifies containment.
// Returns the resolved absolute path or an error.
func ValidatePath(root, targetPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, targetPath))

	// The path may not exist yet, so resolve as much as we can.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}

	// Trailing separator avoids prefix matching "root2" for "root".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("%w: '%s' resolves to '%s' which is outside '%s'", ErrOutsideRoot, targetPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}

// SafeWrite atomically writes content to a path within root.
func SafeWrite(root, relPath string, content []byte, perm os.FileMode) error {
	return SafeWriteFrom(root, relPath, bytes.NewReader(content), perm)
}

// SafeWriteFrom streams r into a path within root. The data lands in a temp
// file in the destination directory and is renamed into place, so readers
// never observe a partially written file.
func SafeWriteFrom(root, relPath string, r io.Reader, perm os.FileMode) error {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return err
	}

	if _, err := ValidatePath(root, filepath.Dir(relPath)); err != nil {
		return fmt.Errorf("parent directory escapes sandbox: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".botpack-sync-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, resolved); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}

	success = true
	return nil
}

// SafeRemove removes a file within root.
func SafeRemove(root, relPath string) error {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

// PruneEmptyDirs removes every directory below root that is empty once its
// own children have been pruned, deepest first. root itself is kept.
// Failures do not stop the walk; they are joined into the returned error.
func PruneEmptyDirs(root string) ([]string, error) {
	var removed []string
	var errs []error
	pruneDir(root, true, &removed, &errs)
	sort.Strings(removed)
	return removed, errors.Join(errs...)
}

func pruneDir(dir string, isRoot bool, removed *[]string, errs *[]error) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("reading %s: %w", dir, err))
		return false
	}

	remaining := len(entries)
	for _, e := range entries {
		// Symlinked directories are leaves; never descend through them.
		if !e.IsDir() {
			continue
		}
		if pruneDir(filepath.Join(dir, e.Name()), false, removed, errs) {
			remaining--
		}
	}

	if isRoot || remaining > 0 {
		return false
	}
	if err := os.Remove(dir); err != nil {
		*errs = append(*errs, fmt.Errorf("removing %s: %w", dir, err))
		return false
	}
	*removed = append(*removed, dir)
	return true
}
