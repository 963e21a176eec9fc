// Package archive unpacks zip archives into a directory tree.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/bianoble/botpack-sync/internal/sandbox"
)

// Options controls how entries are written.
type Options struct {
	// StripTopLevel removes a single top-level directory shared by every
	// entry. Archives without exactly one such directory keep full paths.
	StripTopLevel bool
	// Overwrite replaces existing files. When false they are left untouched.
	Overwrite bool
}

// Stats summarizes a finished extraction.
type Stats struct {
	Entries  int
	Written  int
	Skipped  int
	Dirs     int
	Stripped bool
}

// Extractor unpacks zip archives. The zero value is ready to use.
type Extractor struct {
	Logger *slog.Logger
}

// ExtractBytes extracts an in-memory archive.
func (x *Extractor) ExtractBytes(ctx context.Context, data []byte, targetDir string, opts Options) (Stats, error) {
	return x.Extract(ctx, bytes.NewReader(data), int64(len(data)), targetDir, opts)
}

// Extract unpacks the zip archive in src into targetDir, creating it if
// needed. Entries are processed in archive order.
func (x *Extractor) Extract(ctx context.Context, src io.ReaderAt, size int64, targetDir string, opts Options) (Stats, error) {
	var stats Stats
	logger := x.logger()

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return stats, &ExtractError{Kind: KindWrite, Path: targetDir, Err: err}
	}

	zr, err := zip.NewReader(src, size)
	if zr == nil {
		return stats, &ExtractError{Kind: KindInvalidArchive, Err: err}
	}
	if err != nil {
		// Reader flagged non-local names; each entry is checked below.
		logger.Debug("archive reader reported insecure names", "err", err)
	}

	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = normalizeName(f.Name)
	}

	stats.Entries = len(zr.File)
	stats.Stripped = opts.StripTopLevel && hasSingleTopLevel(names)
	if opts.StripTopLevel && !stats.Stripped {
		logger.Info("archive has no single top-level directory; keeping full paths")
	}

	logger.Info("extracting archive", "dir", targetDir, "entries", stats.Entries)

	total := len(zr.File)
	for i, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rel, err := enclosedName(names[i])
		if err != nil {
			return stats, &ExtractError{Kind: KindUnsafePath, Path: f.Name, Err: err}
		}
		if stats.Stripped {
			rel = stripFirst(rel)
		}
		if rel == "" {
			// The stripped top-level directory itself.
			continue
		}

		dest := filepath.Join(targetDir, filepath.FromSlash(rel))
		if _, err := sandbox.ValidatePath(targetDir, filepath.FromSlash(rel)); err != nil {
			return stats, &ExtractError{Kind: KindUnsafePath, Path: f.Name, Err: err}
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(dest, 0755); err != nil {
				logger.Warn("failed to create directory", "path", dest, "err", err)
				continue
			}
			stats.Dirs++
			logger.Debug("created directory", "index", i+1, "total", total, "dest", dest, "src", f.Name)
			continue
		case mode&fs.ModeSymlink != 0:
			logger.Debug("skipping symlink entry", "src", f.Name)
			stats.Skipped++
			continue
		}

		written, err := x.writeFile(targetDir, rel, dest, f, opts.Overwrite)
		if err != nil {
			return stats, err
		}
		if !written {
			stats.Skipped++
			logger.Debug("kept existing file", "index", i+1, "total", total, "dest", dest, "src", f.Name)
			continue
		}
		stats.Written++
		logger.Debug("extracted file", "index", i+1, "total", total, "dest", dest, "src", f.Name)
	}

	logger.Info("extracted archive", "dir", targetDir, "files", stats.Written, "skipped", stats.Skipped, "entries", stats.Entries)
	return stats, nil
}

func (x *Extractor) writeFile(targetDir, rel, dest string, f *zip.File, overwrite bool) (bool, error) {
	if _, err := os.Lstat(dest); err == nil {
		if !overwrite {
			return false, nil
		}
		if err := os.Remove(dest); err != nil {
			return false, &ExtractError{Kind: KindWrite, Path: dest, Err: fmt.Errorf("removing existing file: %w", err)}
		}
	} else if parent := filepath.Dir(dest); parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			// The write below reports the real failure if the directory is unusable.
			x.logger().Warn("failed to create directory", "path", parent, "err", err)
		}
	}

	rc, err := f.Open()
	if err != nil {
		return false, &ExtractError{Kind: KindInvalidArchive, Path: f.Name, Err: err}
	}
	defer rc.Close()

	perm := f.Mode().Perm()
	if perm&0400 == 0 {
		perm = 0644
	}
	if err := sandbox.SafeWriteFrom(targetDir, filepath.FromSlash(rel), rc, perm); err != nil {
		var kind = KindWrite
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) || errors.Is(err, io.ErrUnexpectedEOF) {
			kind = KindInvalidArchive
		}
		return false, &ExtractError{Kind: kind, Path: dest, Err: err}
	}
	return true, nil
}

func (x *Extractor) logger() *slog.Logger {
	if x == nil || x.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return x.Logger
}

// normalizeName converts Windows separators so every platform sees the same
// entry layout.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// enclosedName returns the cleaned slash path of an entry, rejecting names
// that are absolute or climb out of the extraction root.
func enclosedName(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty entry name")
	}
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) || hasVolume(name) {
		return "", errors.New("absolute path not allowed")
	}
	if strings.ContainsRune(name, 0) {
		return "", errors.New("NUL byte in entry name")
	}
	clean := path.Clean(name)
	if clean == "." {
		return "", nil
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.New("path traversal not allowed")
	}
	return clean, nil
}

func hasVolume(name string) bool {
	return len(name) >= 2 && name[1] == ':' &&
		((name[0] >= 'a' && name[0] <= 'z') || (name[0] >= 'A' && name[0] <= 'Z'))
}

// hasSingleTopLevel reports whether every entry lives under the first
// entry's top-level component. Fewer than two entries never qualify.
func hasSingleTopLevel(names []string) bool {
	if len(names) < 2 {
		return false
	}
	top := firstComponent(names[0])
	if top == "" {
		return false
	}
	for _, name := range names {
		if firstComponent(name) != top {
			return false
		}
	}
	return true
}

func firstComponent(name string) string {
	name = strings.TrimLeft(path.Clean(name), "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	if name == "." {
		return ""
	}
	return name
}

func stripFirst(rel string) string {
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[i+1:]
	}
	return ""
}
