package archive

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures.
type ErrorKind int

const (
	// KindInvalidArchive means the zip central directory could not be parsed
	// or an entry could not be opened.
	KindInvalidArchive ErrorKind = iota + 1
	// KindUnsafePath means an entry would resolve outside the target directory.
	KindUnsafePath
	// KindWrite means writing an entry to disk failed.
	KindWrite
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArchive:
		return "invalid archive"
	case KindUnsafePath:
		return "unsafe path"
	case KindWrite:
		return "write failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against an *ExtractError of the same kind.
var (
	ErrInvalidArchive = errors.New("invalid archive")
	ErrUnsafePath     = errors.New("unsafe archive path")
	ErrWrite          = errors.New("archive write failed")
)

// ExtractError reports a failure that aborted an extraction.
type ExtractError struct {
	Kind ErrorKind
	Path string // entry path, or target path for write failures
	Err  error
}

func (e *ExtractError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("extract: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *ExtractError) Is(target error) bool {
	switch target {
	case ErrInvalidArchive:
		return e.Kind == KindInvalidArchive
	case ErrUnsafePath:
		return e.Kind == KindUnsafePath
	case ErrWrite:
		return e.Kind == KindWrite
	}
	return false
}
