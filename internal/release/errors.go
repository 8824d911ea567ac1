package release

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRedirect is returned when a redirect status carries no Location header.
	ErrMissingRedirect = errors.New("redirect response without Location header")

	// ErrSizeUnknown is returned when progress is requested, the downloader
	// requires a known length, and the server did not report one.
	ErrSizeUnknown = errors.New("unable to determine file size")

	// ErrUnsafeAssetName is returned for an asset name that is not a plain
	// file name, such as "../x" or "dir/x".
	ErrUnsafeAssetName = errors.New("asset name is not a plain file name")
)

// NetworkError reports a transport failure talking to URL.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError reports a metadata fetch that returned a non-success status
// or a body missing an expected field.
type NotFoundError struct {
	URL    string
	Status int    // HTTP status, 0 when the failure is in the body
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("release not found: %s returned HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("release not found: %s: %s", e.URL, e.Reason)
}

// StatusError reports an HTTP status outside the set an operation accepts.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.Code, e.URL)
}

// TransferError reports an I/O failure during a download. The partially
// written destination file is left on disk.
type TransferError struct {
	Path             string
	BytesTransferred int64
	Err              error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer to %s failed after %d bytes: %v", e.Path, e.BytesTransferred, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ChecksumError reports a downloaded file whose SHA-256 does not match the
// published checksum.
type ChecksumError struct {
	Asset    string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Asset, e.Expected, e.Actual)
}

// missingField builds the NotFoundError used for absent JSON fields.
func missingField(url, field string) *NotFoundError {
	return &NotFoundError{URL: url, Reason: fmt.Sprintf("response has no %q field", field)}
}
