package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeHost emulates the release-hosting API and download endpoints for one
// repository. The same server answers API and web URLs.
type FakeHost struct {
	Server *httptest.Server
	Owner  string
	Name   string

	mu        sync.Mutex
	repoSize  int64
	tagName   string
	assets    []string
	files     map[string][]byte
	failures  map[string]int
	truncated map[string]bool
	hits      map[string]int
}

// NewFakeHost starts a fake host that is closed when the test ends.
func NewFakeHost(t testing.TB, owner, name string) *FakeHost {
	t.Helper()
	h := &FakeHost{
		Owner:     owner,
		Name:      name,
		repoSize:  -1,
		files:     map[string][]byte{},
		failures:  map[string]int{},
		truncated: map[string]bool{},
		hits:      map[string]int{},
	}
	h.Server = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.Server.Close)
	return h
}

// URL is the base URL for both API and web requests.
func (h *FakeHost) URL() string { return h.Server.URL }

// SetRepoSize sets the size (in KB) reported by repository metadata.
// A negative size makes the metadata endpoint fail.
func (h *FakeHost) SetRepoSize(kb int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.repoSize = kb
}

// SetLatestRelease sets the latest release tag name. An empty name makes
// the release endpoint fail.
func (h *FakeHost) SetLatestRelease(tagName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tagName = tagName
}

// AddAsset attaches a downloadable asset to the latest release.
func (h *FakeHost) AddAsset(name string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.assets = append(h.assets, name)
	h.files[AssetPath(name)] = data
}

// SetPatch serves data as the incremental archive for tag.
func (h *FakeHost) SetPatch(tag int, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[h.PatchPath(tag)] = data
}

// SetSnapshot serves data as the branch zipball.
func (h *FakeHost) SetSnapshot(branch string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[h.SnapshotPath(branch)] = data
}

// Fail makes requests for path answer with status.
func (h *FakeHost) Fail(path string, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[path] = status
}

// Recover undoes Fail for path.
func (h *FakeHost) Recover(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.failures, path)
}

// Truncate makes downloads of path drop the connection mid-body.
func (h *FakeHost) Truncate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.truncated[path] = true
}

// Hits returns how many requests path received.
func (h *FakeHost) Hits(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

// RepoPath is the repository metadata path.
func (h *FakeHost) RepoPath() string {
	return fmt.Sprintf("/repos/%s/%s", h.Owner, h.Name)
}

// ReleasePath is the latest release metadata path.
func (h *FakeHost) ReleasePath() string {
	return h.RepoPath() + "/releases/latest"
}

// PatchPath is the download path of the incremental archive for tag.
func (h *FakeHost) PatchPath(tag int) string {
	return fmt.Sprintf("/%s/%s/releases/download/incr-%d/incremental.zip", h.Owner, h.Name, tag)
}

// SnapshotPath is the download path of a branch zipball.
func (h *FakeHost) SnapshotPath(branch string) string {
	return fmt.Sprintf("/%s/%s/archive/refs/heads/%s.zip", h.Owner, h.Name, branch)
}

// AssetPath is the download path of a release asset.
func AssetPath(name string) string { return "/assets/" + name }

func (h *FakeHost) serve(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.hits[r.URL.Path]++
	status, failing := h.failures[r.URL.Path]
	truncate := h.truncated[r.URL.Path]
	h.mu.Unlock()

	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch {
	case r.URL.Path == h.RepoPath():
		h.serveRepo(w)
	case r.URL.Path == h.ReleasePath():
		h.serveRelease(w)
	default:
		h.mu.Lock()
		data, ok := h.files[r.URL.Path]
		h.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		if truncate {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)+1024))
			_, _ = w.Write(data[:len(data)/2])
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}
}

func (h *FakeHost) serveRepo(w http.ResponseWriter) {
	h.mu.Lock()
	size := h.repoSize
	h.mu.Unlock()
	if size < 0 {
		http.Error(w, "metadata unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"full_name": h.Owner + "/" + h.Name, "size": size})
}

func (h *FakeHost) serveRelease(w http.ResponseWriter) {
	h.mu.Lock()
	tag := h.tagName
	names := append([]string(nil), h.assets...)
	h.mu.Unlock()
	if tag == "" {
		http.Error(w, "no release", http.StatusNotFound)
		return
	}
	assets := make([]map[string]any, 0, len(names))
	for _, n := range names {
		assets = append(assets, map[string]any{
			"name":                 n,
			"browser_download_url": h.Server.URL + AssetPath(n),
		})
	}
	writeJSON(w, map[string]any{"tag_name": tag, "assets": assets})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// RawJSON serves body verbatim on path, for malformed-response tests.
func RawJSON(t testing.TB, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(strings.TrimSpace(body)))
	}))
	t.Cleanup(srv.Close)
	return srv
}
