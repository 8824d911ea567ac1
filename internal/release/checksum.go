package release

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ChecksumsAssetName is the aggregate checksum file attached by release tooling.
const ChecksumsAssetName = "checksums.txt"

// FindChecksumAsset returns the checksum file that covers assetName:
// "<asset>.sha256" when present, otherwise checksums.txt.
func FindChecksumAsset(assets []Asset, assetName string) (*Asset, error) {
	var aggregate *Asset
	for i := range assets {
		switch assets[i].Name {
		case assetName + ".sha256":
			return &assets[i], nil
		case ChecksumsAssetName:
			aggregate = &assets[i]
		}
	}
	if aggregate != nil {
		return aggregate, nil
	}
	return nil, fmt.Errorf("no checksum file for %s in release", assetName)
}

// VerifyAsset checks the SHA-256 of the file at path against the checksum
// published alongside assetName in assets.
func (c *Client) VerifyAsset(ctx context.Context, assets []Asset, assetName, path string) error {
	sumAsset, err := FindChecksumAsset(assets, assetName)
	if err != nil {
		return err
	}

	expected, err := c.fetchChecksum(ctx, sumAsset.BrowserDownloadURL, assetName)
	if err != nil {
		return err
	}

	actual, err := fileSHA256(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actual, expected) {
		return &ChecksumError{Asset: assetName, Expected: expected, Actual: actual}
	}
	c.log.Debug("checksum verified", "asset", assetName, "sha256", actual)
	return nil
}

func (c *Client) fetchChecksum(ctx context.Context, u, assetName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	c.downloader.setHeaders(req)

	resp, err := c.downloader.http.Do(req)
	if err != nil {
		return "", &NetworkError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: u, Code: resp.StatusCode}
	}
	return parseChecksums(io.LimitReader(resp.Body, 1<<20), assetName)
}

// parseChecksums parses "<sha256>  <filename>" lines. A line naming
// assetName wins; a single bare hash is accepted for per-asset files.
func parseChecksums(r io.Reader, assetName string) (string, error) {
	var bare string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if !isSHA256(parts[0]) {
			continue
		}
		if len(parts) == 1 {
			if bare == "" {
				bare = parts[0]
			}
			continue
		}
		// "sha256sum -b" prefixes binary-mode names with '*'
		if strings.TrimPrefix(parts[1], "*") == assetName {
			return parts[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read checksum file: %w", err)
	}
	if bare != "" {
		return bare, nil
	}
	return "", fmt.Errorf("checksum not found for %s", assetName)
}

func isSHA256(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
