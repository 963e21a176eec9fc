// Package revision models the content pack's release numbering.
//
// Releases are named "incr-<N>" where N is a monotonically increasing
// unsigned integer. The locally persisted tag is the high-water mark of
// successfully applied patches.
package revision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Prefix is the literal prefix of every release tag name.
const Prefix = "incr-"

// ErrInvalid is returned when a tag name cannot be parsed.
var ErrInvalid = errors.New("invalid revision tag")

// Tag is a content pack revision number.
type Tag uint32

// Parse extracts the revision number from a tag name such as "incr-103".
// A bare number without the prefix is accepted as well.
func Parse(name string) (Tag, error) {
	s := strings.TrimSpace(name)
	s = strings.TrimPrefix(s, Prefix)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, name)
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalid, name, err)
	}
	return Tag(n), nil
}

// String returns the tag name in its persisted "incr-<N>" form.
func (t Tag) String() string {
	return Prefix + strconv.FormatUint(uint64(t), 10)
}

// Gap returns how many patches separate t from a newer tag.
// It returns 0 when newer is not ahead of t.
func (t Tag) Gap(newer Tag) uint32 {
	if newer <= t {
		return 0
	}
	return uint32(newer - t)
}

// Range returns the tags in (t, newer] in ascending order.
func (t Tag) Range(newer Tag) []Tag {
	if newer <= t {
		return nil
	}
	tags := make([]Tag, 0, newer-t)
	for tag := t + 1; tag <= newer; tag++ {
		tags = append(tags, tag)
	}
	return tags
}
