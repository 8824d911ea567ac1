package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/t3sl4/release-util/internal/release"
	ui "github.com/t3sl4/release-util/internal/ui"
)

// errMock is a generic error for test assertions.
var errMock = errors.New("mock error")

// mockReleases implements ReleaseService for testing. DownloadSelected and
// DownloadFile write files[asset name] (or files[url]) to disk.
type mockReleases struct {
	latest    release.ReleaseInfo
	byTag     map[string]release.ReleaseInfo
	latestTag string
	redirect  map[string]string
	assets    []release.Asset
	files     map[string]string
	verifyErr error
	err       error // returned by every call when set

	tagCalls    int
	redirectURL string
	listedTag   string
	verified    []string
	downloaded  []string
}

func (m *mockReleases) ResolveLatest(ctx context.Context, owner, repo string) (release.ReleaseInfo, error) {
	if m.err != nil {
		return release.ReleaseInfo{}, m.err
	}
	return m.latest, nil
}

func (m *mockReleases) ResolveByTag(ctx context.Context, owner, repo, tag string) (release.ReleaseInfo, error) {
	if m.err != nil {
		return release.ReleaseInfo{}, m.err
	}
	info, ok := m.byTag[tag]
	if !ok {
		return release.ReleaseInfo{}, &release.NotFoundError{URL: tag, Status: 404}
	}
	return info, nil
}

func (m *mockReleases) ResolveLatestTag(ctx context.Context, owner, repo string) (string, error) {
	m.tagCalls++
	if m.err != nil {
		return "", m.err
	}
	return m.latestTag, nil
}

func (m *mockReleases) ResolveRedirectTag(ctx context.Context, releaseURL string) (string, error) {
	m.redirectURL = releaseURL
	if m.err != nil {
		return "", m.err
	}
	return m.redirect[releaseURL], nil
}

func (m *mockReleases) ListAssets(ctx context.Context, owner, repo, tag string) ([]release.Asset, error) {
	m.listedTag = tag
	if m.err != nil {
		return nil, m.err
	}
	return m.assets, nil
}

func (m *mockReleases) DownloadSelected(ctx context.Context, assets []release.Asset, destDir string, progress func(release.Asset) release.ProgressFunc) ([]string, error) {
	var paths []string
	for _, a := range assets {
		content, ok := m.files[a.Name]
		if !ok {
			return paths, &release.TransferError{Path: a.Name, Err: io.ErrUnexpectedEOF}
		}
		dest := filepath.Join(destDir, a.Name)
		if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
			return paths, err
		}
		if progress != nil {
			if cb := progress(a); cb != nil {
				n := int64(len(content))
				cb(n, n)
			}
		}
		m.downloaded = append(m.downloaded, a.Name)
		paths = append(paths, dest)
	}
	return paths, nil
}

func (m *mockReleases) DownloadFile(ctx context.Context, sourceURL, destPath string, onProgress release.ProgressFunc) error {
	if m.err != nil {
		return m.err
	}
	content := m.files[sourceURL]
	if err := os.WriteFile(destPath, []byte(content), 0o644); err != nil {
		return err
	}
	if onProgress != nil {
		onProgress(int64(len(content)), -1)
	}
	return nil
}

func (m *mockReleases) VerifyAsset(ctx context.Context, assets []release.Asset, assetName, path string) error {
	m.verified = append(m.verified, assetName)
	return m.verifyErr
}

// mapStore is an in-memory prefs.Store.
type mapStore map[string]string

func (s mapStore) Get(node, key string) (string, bool) {
	v, ok := s[node+"/"+key]
	return v, ok
}

func (s mapStore) Set(node, key, value string) error {
	s[node+"/"+key] = value
	return nil
}

func testPrinter(format string, out io.Writer) ui.Printer {
	p := ui.NewPrinter(format).WithOutput(out)
	p.Colors.Enabled = false
	p.Colors.EmojiEnabled = false
	return p
}

// newTestDeps returns Deps backed by m and capturing all output in the
// returned buffer.
func newTestDeps(m *mockReleases, format string) (*Deps, *bytes.Buffer) {
	var out bytes.Buffer
	return &Deps{
		Releases: m,
		Prefs:    mapStore{},
		Printer:  testPrinter(format, &out),
		Output:   &out,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, &out
}
