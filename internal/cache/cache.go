// Package cache keeps downloaded patch archives on disk until they have been
// applied, so an interrupted chain does not download them again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const archiveDir = "archives"

// Cache stores archives keyed by their download URL. Each entry records
// the SHA256 of its content and is verified on retrieval.
type Cache struct {
	dir string
}

// New creates a Cache at the given directory.
// The directory is created if it does not exist.
func New(dir string) (*Cache, error) {
	objDir := filepath.Join(dir, archiveDir)
	if err := os.MkdirAll(objDir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", objDir, err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns the archive cached for url.
// Returns nil, false if not cached. An entry whose content no longer
// matches its recorded hash is removed and reported as a miss.
func (c *Cache) Get(url string) ([]byte, bool, error) {
	path := c.entryPath(url)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry for %s: %w", url, err)
	}

	want, err := os.ReadFile(path + ".sha256")
	if err != nil || strings.TrimSpace(string(want)) != ComputeHash(data) {
		_ = c.Delete(url)
		return nil, false, nil
	}

	return data, true, nil
}

// Put stores content for url, replacing any previous entry.
func (c *Cache) Put(url string, content []byte) error {
	path := c.entryPath(url)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache subdirectory: %w", err)
	}

	// The hash is written last so a torn Put never verifies.
	_ = os.Remove(path + ".sha256")
	if err := writeAtomic(dir, path, content); err != nil {
		return err
	}
	return writeAtomic(dir, path+".sha256", []byte(ComputeHash(content)+"\n"))
}

// Has reports whether url has an entry, without verifying it.
func (c *Cache) Has(url string) bool {
	_, err := os.Stat(c.entryPath(url))
	return err == nil
}

// Delete removes the entry for url. A missing entry is not an error.
func (c *Cache) Delete(url string) error {
	path := c.entryPath(url)
	var errs []error
	for _, p := range []string{path, path + ".sha256"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	objDir := filepath.Join(c.dir, archiveDir)
	if err := os.RemoveAll(objDir); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return os.MkdirAll(objDir, 0755)
}

// Size returns the total size of the cache in bytes.
func (c *Cache) Size() (int64, error) {
	var total int64
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// Path returns the cache directory path.
func (c *Cache) Path() string {
	return c.dir
}

func (c *Cache) entryPath(url string) string {
	key := ComputeHash([]byte(url))
	return filepath.Join(c.dir, archiveDir, key[:2], key+".zip")
}

func writeAtomic(dir, path string, content []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming cache temp file: %w", err)
	}

	success = true
	return nil
}

// ComputeHash computes the SHA256 hash of content and returns the hex string.
func ComputeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
