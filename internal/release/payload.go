package release

import (
	"encoding/json"
	"fmt"
	"time"
)

// releasePayload mirrors the GitHub release JSON with pointer fields so that
// absent and null values can be told apart from empty strings.
type releasePayload struct {
	TagName     *string         `json:"tag_name"`
	Name        *string         `json:"name"`
	Body        *string         `json:"body"`
	Draft       bool            `json:"draft"`
	Prerelease  bool            `json:"prerelease"`
	PublishedAt *time.Time      `json:"published_at"`
	HTMLURL     string          `json:"html_url"`
	Assets      *[]assetPayload `json:"assets"`

	url string // request URL, used in error messages
}

type assetPayload struct {
	Name               *string `json:"name"`
	BrowserDownloadURL *string `json:"browser_download_url"`
	Size               int64   `json:"size"`
	ContentType        string  `json:"content_type"`
}

func parseRelease(url string, data []byte) (*releasePayload, error) {
	var p releasePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &NotFoundError{URL: url, Reason: fmt.Sprintf("invalid release JSON: %v", err)}
	}
	p.url = url
	return &p, nil
}

// tag returns tag_name, failing if it is absent.
func (p *releasePayload) tag() (string, error) {
	if p.TagName == nil {
		return "", missingField(p.url, "tag_name")
	}
	return *p.TagName, nil
}

// info extracts name, body and the asset names. Every field is required.
func (p *releasePayload) info() (ReleaseInfo, error) {
	if p.Name == nil {
		return ReleaseInfo{}, missingField(p.url, "name")
	}
	if p.Body == nil {
		return ReleaseInfo{}, missingField(p.url, "body")
	}
	if p.Assets == nil {
		return ReleaseInfo{}, missingField(p.url, "assets")
	}

	names := make([]string, 0, len(*p.Assets))
	for i, a := range *p.Assets {
		if a.Name == nil {
			return ReleaseInfo{}, missingField(p.url, fmt.Sprintf("assets[%d].name", i))
		}
		names = append(names, *a.Name)
	}

	return ReleaseInfo{
		Title:       *p.Name,
		Description: *p.Body,
		AssetNames:  names,
	}, nil
}

// assets extracts the asset list, requiring a name and download URL for each.
func (p *releasePayload) assets() ([]Asset, error) {
	if p.Assets == nil {
		return nil, missingField(p.url, "assets")
	}

	out := make([]Asset, 0, len(*p.Assets))
	for i, a := range *p.Assets {
		if a.Name == nil {
			return nil, missingField(p.url, fmt.Sprintf("assets[%d].name", i))
		}
		if a.BrowserDownloadURL == nil || *a.BrowserDownloadURL == "" {
			return nil, missingField(p.url, fmt.Sprintf("assets[%d].browser_download_url", i))
		}
		out = append(out, Asset{
			Name:               *a.Name,
			BrowserDownloadURL: *a.BrowserDownloadURL,
			Size:               a.Size,
			ContentType:        a.ContentType,
		})
	}
	return out, nil
}

// release converts the payload leniently, defaulting absent fields.
func (p *releasePayload) release() *Release {
	r := &Release{
		TagName:     deref(p.TagName),
		Name:        deref(p.Name),
		Body:        deref(p.Body),
		Draft:       p.Draft,
		Prerelease:  p.Prerelease,
		PublishedAt: p.PublishedAt,
		HTMLURL:     p.HTMLURL,
		Assets:      []Asset{},
	}
	if p.Assets != nil {
		for _, a := range *p.Assets {
			r.Assets = append(r.Assets, Asset{
				Name:               deref(a.Name),
				BrowserDownloadURL: deref(a.BrowserDownloadURL),
				Size:               a.Size,
				ContentType:        a.ContentType,
			})
		}
	}
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
