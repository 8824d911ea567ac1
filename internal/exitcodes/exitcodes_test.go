package exitcodes

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/t3sl4/release-util/internal/archive"
	"github.com/t3sl4/release-util/internal/release"
)

// TestExitCodeConstants verifies all exit code constants have expected values
func TestExitCodeConstants(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"InvalidArgs", InvalidArgs, 2},
		{"NotFound", NotFound, 3},
		{"NetworkError", NetworkError, 4},
		{"TransferFailed", TransferFailed, 5},
		{"ValidationError", ValidationError, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name        string
		err         *ErrorWithCode
		wantCode    int
		wantMessage string
	}{
		{"NewError", NewError(99, "custom"), 99, "custom"},
		{"NewErrorf", NewErrorf(InvalidArgs, "bad %s", "flag"), InvalidArgs, "bad flag"},
		{"InvalidArgsError", InvalidArgsError("need OWNER"), InvalidArgs, "need OWNER"},
		{"InvalidArgsErrorf", InvalidArgsErrorf("got %d args", 3), InvalidArgs, "got 3 args"},
		{"NotFoundErrorf", NotFoundErrorf("asset %q", "x"), NotFound, `asset "x"`},
		{"ValidationErrf", ValidationErrf("%s != %s", "a", "b"), ValidationError, "a != b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if tt.err.Error() != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMessage)
			}
			if tt.err.Cause != nil {
				t.Errorf("Cause = %v, want nil", tt.err.Cause)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(TransferFailed, "download failed", cause)

	if err.Error() != "download failed: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("WrapError does not unwrap to cause")
	}
}

func TestCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain error", errors.New("boom"), GeneralError},
		{"explicit code", NewError(InvalidArgs, "x"), InvalidArgs},
		{"wrapped explicit code", fmt.Errorf("ctx: %w", NewError(ValidationError, "x")), ValidationError},
		{"not found", &release.NotFoundError{URL: "u", Status: 404}, NotFound},
		{"network", &release.NetworkError{URL: "u", Err: io.EOF}, NetworkError},
		{"status", &release.StatusError{URL: "u", Code: 500}, NetworkError},
		{"missing redirect", release.ErrMissingRedirect, NetworkError},
		{"size unknown", fmt.Errorf("download: %w", release.ErrSizeUnknown), ValidationError},
		{"unsafe asset name", fmt.Errorf("download: %w", release.ErrUnsafeAssetName), ValidationError},
		{"transfer", &release.TransferError{Path: "p", BytesTransferred: 10, Err: io.ErrUnexpectedEOF}, TransferFailed},
		{"wrapped transfer", fmt.Errorf("download a: %w", &release.TransferError{Err: io.EOF}), TransferFailed},
		{"checksum", &release.ChecksumError{Asset: "a"}, ValidationError},
		{"unsupported archive", fmt.Errorf("%w: a.rar", archive.ErrUnsupportedFormat), InvalidArgs},
		{"explicit code beats release kind", WrapError(GeneralError, "x", &release.NotFoundError{}), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeForError(tt.err); got != tt.want {
				t.Errorf("CodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
