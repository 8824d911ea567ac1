package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultChunkSize is the read size used when copying a download to disk.
	DefaultChunkSize = 32 << 10

	minChunkSize = 4 << 10
	maxChunkSize = 64 << 10
)

// DownloaderOptions configures a Downloader.
type DownloaderOptions struct {
	HTTP      HTTPDoer
	ChunkSize int // clamped to [4 KiB, 64 KiB]

	// RequireLength makes Download fail with ErrSizeUnknown when a progress
	// callback is supplied but the server does not report Content-Length.
	RequireLength bool

	// Token is sent only to URLs whose host is listed in TokenHosts.
	Token      string
	TokenHosts []string
	UserAgent  string
	Logger     *slog.Logger
}

// Downloader streams a URL to a file, reporting progress after every chunk.
type Downloader struct {
	http          HTTPDoer
	chunkSize     int
	requireLength bool
	token         string
	tokenHosts    map[string]bool
	userAgent     string
	log           *slog.Logger
}

// NewDownloader creates a Downloader. A nil HTTP uses a client with no
// overall timeout so that large assets are not cut off.
func NewDownloader(opts DownloaderOptions) *Downloader {
	h := opts.HTTP
	if h == nil {
		h = &http.Client{
			Timeout: 0, // No timeout for large downloads
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		}
	}

	chunk := opts.ChunkSize
	switch {
	case chunk <= 0:
		chunk = DefaultChunkSize
	case chunk < minChunkSize:
		chunk = minChunkSize
	case chunk > maxChunkSize:
		chunk = maxChunkSize
	}

	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}

	hosts := make(map[string]bool, len(opts.TokenHosts))
	for _, host := range opts.TokenHosts {
		if host != "" {
			hosts[strings.ToLower(host)] = true
		}
	}

	return &Downloader{
		http:          h,
		chunkSize:     chunk,
		requireLength: opts.RequireLength,
		token:         opts.Token,
		tokenHosts:    hosts,
		userAgent:     opts.UserAgent,
		log:           log,
	}
}

// Download fetches sourceURL into destPath. The parent directory of destPath
// must already exist. onProgress may be nil.
//
// On a failure after the destination was created, the partial file is kept
// and a *TransferError carrying the bytes written so far is returned.
func (d *Downloader) Download(ctx context.Context, sourceURL, destPath string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/octet-stream")
	d.setHeaders(req)

	d.log.Debug("download start", "url", sourceURL, "dest", destPath)
	resp, err := d.http.Do(req)
	if err != nil {
		return &NetworkError{URL: sourceURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{URL: sourceURL, Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return &StatusError{URL: sourceURL, Code: resp.StatusCode}
	}

	total := resp.ContentLength
	if total < 0 {
		total = -1
	}
	if onProgress != nil && total < 0 && d.requireLength {
		return ErrSizeUnknown
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	written, copyErr := d.copy(out, resp.Body, total, onProgress)
	closeErr := out.Close()

	if copyErr != nil {
		return &TransferError{Path: destPath, BytesTransferred: written, Err: copyErr}
	}
	if total >= 0 && written < total {
		return &TransferError{Path: destPath, BytesTransferred: written, Err: io.ErrUnexpectedEOF}
	}
	if closeErr != nil {
		return &TransferError{Path: destPath, BytesTransferred: written, Err: closeErr}
	}

	d.log.Debug("download complete", "dest", destPath, "bytes", written)
	return nil
}

// setHeaders sets the User-Agent and, for a trusted host, the token.
func (d *Downloader) setHeaders(req *http.Request) {
	token := ""
	if d.tokenHosts[strings.ToLower(req.URL.Host)] {
		token = d.token
	}
	setCommonHeaders(req, d.userAgent, token)
}

// copy moves r into w one chunk at a time and calls onProgress after each
// chunk is written.
func (d *Downloader) copy(w io.Writer, r io.Reader, total int64, onProgress ProgressFunc) (int64, error) {
	buf := make([]byte, d.chunkSize)
	var written int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if wn != n {
				return written, io.ErrShortWrite
			}
			if onProgress != nil {
				onProgress(written, total)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
