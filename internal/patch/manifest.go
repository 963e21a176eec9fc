package patch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the deletion manifest shipped inside patch archives.
const ManifestName = ".deleted"

// ParseManifest reads one relative path per line. Stray NUL and CR bytes
// are dropped and blank lines ignored.
func ParseManifest(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := cleanLine(sc.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading deletion manifest: %w", err)
	}
	return paths, nil
}

// ReadManifest parses dir's deletion manifest. found is false when dir has
// none, which is not an error.
func ReadManifest(dir string) (paths []string, found bool, err error) {
	f, err := os.Open(filepath.Join(dir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening deletion manifest: %w", err)
	}
	defer f.Close()

	paths, err = ParseManifest(f)
	if err != nil {
		return nil, true, err
	}
	return paths, true, nil
}

// removeManifest deletes dir's deletion manifest if present.
func removeManifest(dir string) error {
	err := os.Remove(filepath.Join(dir, ManifestName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func cleanLine(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 || r == '\r' || r == '\uFEFF' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	return filepath.FromSlash(strings.ReplaceAll(s, `\`, "/"))
}
