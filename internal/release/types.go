package release

import (
	"fmt"
	"time"
)

// ReleaseInfo is the summary of a release: its title, notes and asset names.
type ReleaseInfo struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	AssetNames  []string `json:"assets" yaml:"assets"`
}

func (r ReleaseInfo) String() string {
	return fmt.Sprintf("Title: %s\nDescription: %s\nAssets: %v", r.Title, r.Description, r.AssetNames)
}

// Release represents a GitHub release
type Release struct {
	TagName     string     `json:"tag_name" yaml:"tag_name"`
	Name        string     `json:"name" yaml:"name"`
	Body        string     `json:"body" yaml:"body"` // Changelog/release notes
	Draft       bool       `json:"draft" yaml:"draft"`
	Prerelease  bool       `json:"prerelease" yaml:"prerelease"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	HTMLURL     string     `json:"html_url" yaml:"html_url"`
	Assets      []Asset    `json:"assets" yaml:"assets"`
}

// Asset represents a downloadable file attached to a release
type Asset struct {
	Name               string `json:"name" yaml:"name"`
	BrowserDownloadURL string `json:"browser_download_url" yaml:"browser_download_url"`
	Size               int64  `json:"size" yaml:"size"`
	ContentType        string `json:"content_type" yaml:"content_type"`
}

// FindAsset finds an asset by name in the release
func (r *Release) FindAsset(name string) *Asset {
	for i := range r.Assets {
		if r.Assets[i].Name == name {
			return &r.Assets[i]
		}
	}
	return nil
}

// ProgressFunc is called after every chunk written with the bytes transferred
// so far and the total size. total is -1 when the server did not report it.
type ProgressFunc func(transferred, total int64)

// DownloadOptions selects which assets of a release are downloaded.
type DownloadOptions struct {
	// Name restricts the download to a single asset. Empty means every asset.
	Name string
	// Progress returns the callback used for an asset; nil disables reporting.
	Progress func(a Asset) ProgressFunc
}
