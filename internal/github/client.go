// Package github queries the release-hosting API for the content packs and
// builds their download URLs.
package github

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/revision"
)

const (
	// DefaultAPIBaseURL is the public release API.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultWebBaseURL hosts release assets and branch archives.
	DefaultWebBaseURL = "https://github.com"
	// DefaultSizeScale converts the API's repository size (KB) to bytes.
	DefaultSizeScale = 1000
)

// Parse failures, wrapped with detail.
var (
	ErrMissingField = errors.New("missing field in API response")
	ErrBadTag       = errors.New("unparsable release tag")
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name string
	URL  string
}

// Client is a read-only view of the release API. None of its methods retry.
type Client struct {
	Fetch      *fetch.Client
	APIBaseURL string
	WebBaseURL string
	// SizeScale multiplies the reported repository size. Zero means
	// DefaultSizeScale.
	SizeScale int64
}

// RepoSize returns a rough uncompressed size estimate for owner/name in
// bytes, intended only for progress calibration.
func (c *Client) RepoSize(ctx context.Context, owner, name string) (int64, error) {
	body, err := c.getJSON(ctx, c.apiURL("repos", owner, name))
	if err != nil {
		return 0, err
	}
	size := gjson.GetBytes(body, "size")
	if size.Type != gjson.Number {
		return 0, fmt.Errorf("repository %s/%s: %w: size", owner, name, ErrMissingField)
	}
	scale := c.SizeScale
	if scale <= 0 {
		scale = DefaultSizeScale
	}
	return size.Int() * scale, nil
}

// LatestReleaseTagName returns the raw tag_name of the latest release.
func (c *Client) LatestReleaseTagName(ctx context.Context, owner, name string) (string, error) {
	body, err := c.latestRelease(ctx, owner, name)
	if err != nil {
		return "", err
	}
	return tagName(body, owner, name)
}

// LatestReleaseTag returns the revision of the latest "incr-<N>" release.
func (c *Client) LatestReleaseTag(ctx context.Context, owner, name string) (revision.Tag, error) {
	raw, err := c.LatestReleaseTagName(ctx, owner, name)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(raw, revision.Prefix) {
		return 0, fmt.Errorf("release %q of %s/%s: %w: expected %q prefix", raw, owner, name, ErrBadTag, revision.Prefix)
	}
	tag, err := revision.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("release of %s/%s: %w: %v", owner, name, ErrBadTag, err)
	}
	return tag, nil
}

// LatestReleaseAssets lists the binary assets of the latest release.
func (c *Client) LatestReleaseAssets(ctx context.Context, owner, name string) ([]Asset, error) {
	body, err := c.latestRelease(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	assets := gjson.GetBytes(body, "assets")
	if !assets.IsArray() {
		return nil, fmt.Errorf("release of %s/%s: %w: assets", owner, name, ErrMissingField)
	}
	var out []Asset
	var bad error
	assets.ForEach(func(_, a gjson.Result) bool {
		n, u := a.Get("name"), a.Get("browser_download_url")
		if n.Type != gjson.String || u.Type != gjson.String {
			bad = fmt.Errorf("release of %s/%s: %w: asset name or browser_download_url", owner, name, ErrMissingField)
			return false
		}
		out = append(out, Asset{Name: n.Str, URL: u.Str})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return out, nil
}

// PatchURL is the incremental archive for tag.
func (c *Client) PatchURL(owner, name string, tag revision.Tag) string {
	return c.webURL(owner, name, "releases", "download", tag.String(), "incremental.zip")
}

// ZipballURL is the full archive of branch.
func (c *Client) ZipballURL(owner, name, branch string) string {
	return c.webURL(owner, name, "archive", "refs", "heads", branch+".zip")
}

func (c *Client) latestRelease(ctx context.Context, owner, name string) ([]byte, error) {
	return c.getJSON(ctx, c.apiURL("repos", owner, name, "releases", "latest"))
}

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	fc := c.Fetch
	if fc == nil {
		fc = fetch.New(nil, "")
	}
	body, err := fc.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w: response is not JSON", url, ErrMissingField)
	}
	return body, nil
}

func (c *Client) apiURL(parts ...string) string {
	return joinURL(c.APIBaseURL, DefaultAPIBaseURL, parts)
}

func (c *Client) webURL(parts ...string) string {
	return joinURL(c.WebBaseURL, DefaultWebBaseURL, parts)
}

func joinURL(base, fallback string, parts []string) string {
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/") + path.Join(append([]string{"/"}, parts...)...)
}

func tagName(body []byte, owner, name string) (string, error) {
	v := gjson.GetBytes(body, "tag_name")
	if !v.Exists() {
		return "", fmt.Errorf("release of %s/%s: %w: tag_name", owner, name, ErrMissingField)
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("release of %s/%s: %w: tag_name is %s, not a string", owner, name, ErrBadTag, v.Type)
	}
	return v.Str, nil
}
