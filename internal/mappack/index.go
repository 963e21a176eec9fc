package mappack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
)

// IndexName is the manifest at the root of a map pack checkout.
const IndexName = "index.json"

// ErrBadIndex is wrapped by index parse failures.
var ErrBadIndex = errors.New("malformed map pack index")

// Manifest is the parsed map pack index: the pack revision and the
// revision of every map file, keyed by relative path.
type Manifest struct {
	Revision uint64
	Maps     map[string]uint64
}

// ParseIndex decodes an index document.
func ParseIndex(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not JSON", ErrBadIndex)
	}
	doc := gjson.ParseBytes(data)

	rev := doc.Get("revision")
	if rev.Type != gjson.Number {
		return nil, fmt.Errorf("%w: missing revision", ErrBadIndex)
	}

	m := &Manifest{Revision: rev.Uint(), Maps: map[string]uint64{}}
	var bad error
	doc.Get("maps").ForEach(func(_, entry gjson.Result) bool {
		p, r := entry.Get("path"), entry.Get("revision")
		if p.Type != gjson.String || p.Str == "" || r.Type != gjson.Number {
			bad = fmt.Errorf("%w: map entry %s", ErrBadIndex, entry.Raw)
			return false
		}
		m.Maps[p.Str] = r.Uint()
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return m, nil
}

// LoadIndex reads dir's index. found is false when there is none.
func LoadIndex(dir string) (m *Manifest, found bool, err error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading map pack index: %w", err)
	}
	m, err = ParseIndex(data)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Changed returns the paths in next that are new or have a higher revision
// than in prev, sorted. A nil prev treats every map as new.
func Changed(prev, next *Manifest) []string {
	if next == nil {
		return nil
	}
	var out []string
	for p, rev := range next.Maps {
		if prev != nil {
			if old, ok := prev.Maps[p]; ok && old >= rev {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
