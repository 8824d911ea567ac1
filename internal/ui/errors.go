package ui

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/t3sl4/release-util/internal/release"
)

// ErrorMessage represents a structured, actionable error to present to users.
type ErrorMessage struct {
	Problem string   // one-line problem statement
	Causes  []string // possible causes
	Actions []string // actionable steps to resolve
	Hints   []string // optional hints (e.g., commands to try)
}

// Format renders the error using the color theme. It contains no ANSI
// codes when colors are disabled.
func (e ErrorMessage) Format(c *ColorConfig) string {
	var b strings.Builder
	b.WriteString(c.Icon("error"))
	b.WriteString(" ")
	b.WriteString(c.Header("Error"))
	b.WriteString("\n")
	if e.Problem != "" {
		fmt.Fprintf(&b, "  %s: %s\n", c.Label("Problem"), e.Problem)
	}
	writeList(&b, c.Label("Possible causes"), "•", e.Causes, nil)
	writeList(&b, c.Label("Try"), "→", e.Actions, nil)
	writeList(&b, c.Label("Hints"), "·", e.Hints, c.Description)
	return b.String()
}

func writeList(b *strings.Builder, label, bullet string, items []string, style func(string) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", label)
	for _, it := range items {
		if style != nil {
			it = style(it)
		}
		fmt.Fprintf(b, "   %s %s\n", bullet, it)
	}
}

// PrintError writes the structured error to w.
func PrintError(w io.Writer, c *ColorConfig, e ErrorMessage) {
	fmt.Fprintln(w, e.Format(c))
}

// ErrorFor builds the user-facing message for a release client error.
func ErrorFor(err error) ErrorMessage {
	msg := ErrorMessage{Problem: err.Error()}

	var (
		notFound *release.NotFoundError
		network  *release.NetworkError
		status   *release.StatusError
		transfer *release.TransferError
		checksum *release.ChecksumError
	)
	switch {
	case errors.As(err, &transfer):
		msg.Problem = fmt.Sprintf("download stopped after %s", FormatBytes(transfer.BytesTransferred))
		msg.Causes = []string{transfer.Err.Error()}
		msg.Actions = []string{
			fmt.Sprintf("Partial file kept at %s", transfer.Path),
			"Re-run the download; use 'fetch --clean' to remove the partial file first",
		}
	case errors.As(err, &notFound):
		msg.Causes = []string{"The repository, tag or asset does not exist", "The repository is private and no token was supplied"}
		if notFound.Status == http.StatusForbidden {
			msg.Causes = []string{"GitHub API rate limit exceeded"}
		}
		msg.Actions = []string{"Check OWNER/REPO and the tag name", "Set GITHUB_TOKEN for private repositories or higher rate limits"}
	case errors.As(err, &status):
		msg.Causes = []string{fmt.Sprintf("The server answered HTTP %d", status.Code)}
		msg.Actions = []string{"Retry later", "Run with --debug to see the request"}
	case errors.Is(err, release.ErrMissingRedirect):
		msg.Causes = []string{"The releases page returned a redirect without a Location header"}
		msg.Actions = []string{"Resolve the tag through the API: drop --redirect"}
	case errors.As(err, &network):
		msg.Causes = []string{"No network connectivity", "DNS or proxy misconfiguration", "Request timed out"}
		msg.Actions = []string{"Check connectivity to " + hostOf(network.URL), "Increase --timeout"}
	case errors.Is(err, release.ErrSizeUnknown):
		msg.Causes = []string{"The server did not send Content-Length"}
		msg.Actions = []string{"Re-run without --require-size"}
	case errors.As(err, &checksum):
		msg.Problem = fmt.Sprintf("checksum mismatch for %s", checksum.Asset)
		msg.Causes = []string{"The download was corrupted", "The asset was replaced after the checksum file was published"}
		msg.Hints = []string{"expected " + checksum.Expected, "actual   " + checksum.Actual}
	}
	return msg
}

func hostOf(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return u
	}
	return parsed.Host
}
