package release

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const tagMarker = "/releases/tag/"

// LatestReleaseURL returns the github.com page that redirects to the latest release.
func LatestReleaseURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s/releases/latest", url.PathEscape(owner), url.PathEscape(repo))
}

// ResolveRedirectTag issues a HEAD request to releaseURL without following
// redirects and extracts the tag that follows "/releases/tag/".
//
//   - 302: the tag is taken from the Location header
//   - 200: no redirect happened, the tag is taken from releaseURL itself
//   - anything else fails with *StatusError
func (c *Client) ResolveRedirectTag(ctx context.Context, releaseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, releaseURL, nil)
	if err != nil {
		return "", err
	}
	setCommonHeaders(req, c.userAgent, "")

	c.log.Debug("resolve redirect tag", "url", releaseURL)
	resp, err := c.head.Do(req)
	if err != nil {
		return "", &NetworkError{URL: releaseURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusFound:
		location := resp.Header.Get("Location")
		if location == "" {
			return "", ErrMissingRedirect
		}
		c.log.Debug("redirected", "location", location)
		return extractTag(location)
	case http.StatusOK:
		return extractTag(releaseURL)
	default:
		return "", &StatusError{URL: releaseURL, Code: resp.StatusCode}
	}
}

// extractTag returns the path segment after the tag marker, without any
// query string or fragment.
func extractTag(u string) (string, error) {
	i := strings.Index(u, tagMarker)
	if i < 0 {
		return "", &NotFoundError{URL: u, Reason: "no " + tagMarker + " segment in URL"}
	}
	tag := u[i+len(tagMarker):]
	if j := strings.IndexAny(tag, "?#"); j >= 0 {
		tag = tag[:j]
	}
	if tag == "" {
		return "", &NotFoundError{URL: u, Reason: "empty tag in URL"}
	}
	if unescaped, err := url.PathUnescape(tag); err == nil {
		tag = unescaped
	}
	return tag, nil
}

// withoutRedirects returns a doer that hands redirect responses back to the
// caller. Doers that are not *http.Client are returned unchanged.
func withoutRedirects(h HTTPDoer) HTTPDoer {
	c, ok := h.(*http.Client)
	if !ok {
		return h
	}
	cp := *c
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}
