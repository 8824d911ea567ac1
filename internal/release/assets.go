package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DownloadAssets downloads the assets of the release tagged tag into destDir
// and returns the written paths in asset order.
func (c *Client) DownloadAssets(ctx context.Context, owner, repo, tag, destDir string, opts DownloadOptions) ([]string, error) {
	return c.downloadFrom(ctx, c.tagURL(owner, repo, tag), destDir, opts)
}

// DownloadLatestAssets is DownloadAssets for the latest release.
func (c *Client) DownloadLatestAssets(ctx context.Context, owner, repo, destDir string, opts DownloadOptions) ([]string, error) {
	return c.downloadFrom(ctx, c.latestURL(owner, repo), destDir, opts)
}

// ListAssets returns the downloadable assets of a release (latest when tag is empty).
func (c *Client) ListAssets(ctx context.Context, owner, repo, tag string) ([]Asset, error) {
	u := c.latestURL(owner, repo)
	if tag != "" {
		u = c.tagURL(owner, repo, tag)
	}
	p, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return p.assets()
}

// DownloadFile downloads a single URL to destPath.
func (c *Client) DownloadFile(ctx context.Context, sourceURL, destPath string, onProgress ProgressFunc) error {
	return c.downloader.Download(ctx, sourceURL, destPath, onProgress)
}

func (c *Client) downloadFrom(ctx context.Context, u, destDir string, opts DownloadOptions) ([]string, error) {
	p, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	all, err := p.assets()
	if err != nil {
		return nil, err
	}
	selected, err := SelectAssets(all, opts.Name)
	if err != nil {
		return nil, &NotFoundError{URL: u, Reason: err.Error()}
	}
	return c.DownloadSelected(ctx, selected, destDir, opts.Progress)
}

// DownloadSelected downloads each asset to destDir/<name>, stopping at the
// first failure. The paths written before the failure are returned with it.
// Every name is checked before the first file is created.
func (c *Client) DownloadSelected(ctx context.Context, assets []Asset, destDir string, progress func(Asset) ProgressFunc) ([]string, error) {
	for _, a := range assets {
		if !safeAssetName(a.Name) {
			return nil, fmt.Errorf("download %q: %w", a.Name, ErrUnsafeAssetName)
		}
	}

	paths := make([]string, 0, len(assets))
	for _, a := range assets {
		dest := filepath.Join(destDir, a.Name)
		var cb ProgressFunc
		if progress != nil {
			cb = progress(a)
		}
		if err := c.downloader.Download(ctx, a.BrowserDownloadURL, dest, cb); err != nil {
			return paths, fmt.Errorf("download %s: %w", a.Name, err)
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func safeAssetName(name string) bool {
	return filepath.IsLocal(name) && filepath.Base(name) == name
}

// SelectAssets returns every asset when name is empty, otherwise the single
// asset called name.
func SelectAssets(assets []Asset, name string) ([]Asset, error) {
	if name == "" {
		return assets, nil
	}
	for _, a := range assets {
		if a.Name == name {
			return []Asset{a}, nil
		}
	}
	return nil, fmt.Errorf("asset %q not found in release", name)
}

// RemoveIfExists deletes path if it exists. It reports whether a file was removed.
func RemoveIfExists(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
