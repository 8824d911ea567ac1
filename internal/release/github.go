package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIBase is the GitHub REST prefix that owner/repo paths are appended to.
	DefaultAPIBase = "https://api.github.com/repos"

	// DefaultUserAgent identifies the client to GitHub, which rejects requests without one.
	DefaultUserAgent = "release-util"

	httpTimeout = 30 * time.Second

	// maxReleaseBody bounds the metadata response read into memory.
	maxReleaseBody = 16 << 20
)

// HTTPDoer interface for HTTP requests (allows mocking in tests).
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	APIBase   string
	Token     string // sent as a Bearer token when set
	UserAgent string
	Timeout   time.Duration // overall timeout for metadata requests

	// ChunkSize and RequireLength configure the asset downloader.
	ChunkSize     int
	RequireLength bool

	// HTTP overrides the metadata client; Download overrides the asset client
	// and falls back to HTTP when only that is set.
	HTTP     HTTPDoer
	Download HTTPDoer

	Logger *slog.Logger
}

// Client resolves GitHub release metadata and downloads release assets.
type Client struct {
	api        HTTPDoer
	head       HTTPDoer
	apiBase    string
	token      string
	userAgent  string
	downloader *Downloader
	log        *slog.Logger
}

// New creates a Client from opts.
func New(opts Options) *Client {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = httpTimeout
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}

	api := opts.HTTP
	if api == nil {
		api = &http.Client{Timeout: opts.Timeout}
	}
	dl := opts.Download
	if dl == nil {
		dl = opts.HTTP
	}

	apiBase := strings.TrimRight(opts.APIBase, "/")
	tokenHosts := []string{"github.com", "api.github.com"}
	if u, err := url.Parse(apiBase); err == nil {
		tokenHosts = append(tokenHosts, u.Host)
	}

	return &Client{
		api:       api,
		head:      withoutRedirects(api),
		apiBase:   apiBase,
		token:     opts.Token,
		userAgent: opts.UserAgent,
		downloader: NewDownloader(DownloaderOptions{
			HTTP:          dl,
			ChunkSize:     opts.ChunkSize,
			RequireLength: opts.RequireLength,
			Token:         opts.Token,
			TokenHosts:    tokenHosts,
			UserAgent:     opts.UserAgent,
			Logger:        opts.Logger,
		}),
		log: opts.Logger,
	}
}

// ResolveLatest returns the title, notes and asset names of the latest release.
func (c *Client) ResolveLatest(ctx context.Context, owner, repo string) (ReleaseInfo, error) {
	p, err := c.fetch(ctx, c.latestURL(owner, repo))
	if err != nil {
		return ReleaseInfo{}, err
	}
	return p.info()
}

// ResolveByTag returns the title, notes and asset names of the release tagged tag.
func (c *Client) ResolveByTag(ctx context.Context, owner, repo, tag string) (ReleaseInfo, error) {
	p, err := c.fetch(ctx, c.tagURL(owner, repo, tag))
	if err != nil {
		return ReleaseInfo{}, err
	}
	return p.info()
}

// ResolveLatestTag returns only the tag name of the latest release.
func (c *Client) ResolveLatestTag(ctx context.Context, owner, repo string) (string, error) {
	p, err := c.fetch(ctx, c.latestURL(owner, repo))
	if err != nil {
		return "", err
	}
	return p.tag()
}

// FetchRelease returns the full release for tag, or the latest release when
// tag is empty. Missing fields are left at their zero values.
func (c *Client) FetchRelease(ctx context.Context, owner, repo, tag string) (*Release, error) {
	u := c.latestURL(owner, repo)
	if tag != "" {
		u = c.tagURL(owner, repo, tag)
	}
	p, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return p.release(), nil
}

func (c *Client) latestURL(owner, repo string) string {
	return fmt.Sprintf("%s/%s/%s/releases/latest", c.apiBase, url.PathEscape(owner), url.PathEscape(repo))
}

func (c *Client) tagURL(owner, repo, tag string) string {
	return fmt.Sprintf("%s/%s/%s/releases/tags/%s", c.apiBase, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(tag))
}

// fetch performs a metadata GET and parses the release JSON.
func (c *Client) fetch(ctx context.Context, u string) (*releasePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	setCommonHeaders(req, c.userAgent, c.token)

	c.log.Debug("fetch release", "url", u)
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("release response", "url", u, "status", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &NotFoundError{URL: u, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReleaseBody))
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	return parseRelease(u, data)
}

func setCommonHeaders(req *http.Request, userAgent, token string) {
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
