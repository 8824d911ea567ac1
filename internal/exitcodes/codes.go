package exitcodes

import (
	"errors"
	"os"

	"github.com/t3sl4/release-util/internal/archive"
	"github.com/t3sl4/release-util/internal/release"
)

// Standard exit codes for release-util
const (
	// Success indicates successful command completion
	Success = 0

	// GeneralError indicates a general/unknown error
	GeneralError = 1

	// InvalidArgs indicates invalid command-line arguments or flags
	InvalidArgs = 2

	// NotFound indicates a release, tag or asset could not be found
	// (e.g., unknown repository, missing tag, malformed release JSON)
	NotFound = 3

	// NetworkError indicates network/connectivity failure or an HTTP
	// status the operation does not accept
	NetworkError = 4

	// TransferFailed indicates a download stopped part way through
	TransferFailed = 5

	// ValidationError indicates a result failed a check
	// (e.g., checksum mismatch, unknown size, versions differ under --strict)
	ValidationError = 6
)

// Exit terminates the program with the given code
func Exit(code int) {
	os.Exit(code)
}

// CodeForError returns the exit code for err. An explicit *ErrorWithCode
// anywhere in the chain wins; release errors map to their kind; anything
// else is GeneralError.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}

	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}

	var (
		notFound *release.NotFoundError
		network  *release.NetworkError
		status   *release.StatusError
		transfer *release.TransferError
		checksum *release.ChecksumError
	)
	switch {
	case errors.As(err, &transfer):
		return TransferFailed
	case errors.As(err, &notFound):
		return NotFound
	case errors.As(err, &network), errors.As(err, &status), errors.Is(err, release.ErrMissingRedirect):
		return NetworkError
	case errors.As(err, &checksum), errors.Is(err, release.ErrSizeUnknown), errors.Is(err, release.ErrUnsafeAssetName):
		return ValidationError
	case errors.Is(err, archive.ErrUnsupportedFormat):
		return InvalidArgs
	}
	return GeneralError
}
