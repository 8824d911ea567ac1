package ui

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

var initOnce sync.Once

// InitTerminal must run before the first lipgloss or bubbletea call. It
// pre-sets COLORFGBG so termenv skips its OSC 11 background query, whose
// reply would otherwise be echoed into stdout.
func InitTerminal() {
	initOnce.Do(func() {
		if os.Getenv("COLORFGBG") == "" {
			_ = os.Setenv("COLORFGBG", "0;15")
		}
		if stdoutIsTerminal() {
			fmt.Fprint(os.Stdout, "\033[?1004l") // focus reporting off
			time.Sleep(20 * time.Millisecond)
			FlushStdinWithTimeout(150 * time.Millisecond)
		}
	})
}

// ResetTerminalAfterTUI restores terminal modes a bubbletea program may
// have left enabled and drops any late replies still queued on stdin.
func ResetTerminalAfterTUI() {
	if !stdoutIsTerminal() {
		return
	}
	for _, seq := range []string{
		"\033[?1004l", // focus reporting
		"\033[?1003l", // all mouse tracking
		"\033[?1000l", // X10 mouse
		"\033[?1006l", // SGR mouse
		"\033[?25h",   // show cursor
		"\r",
	} {
		fmt.Fprint(os.Stdout, seq)
	}
	time.Sleep(30 * time.Millisecond)
	FlushStdinWithTimeout(150 * time.Millisecond)
}

// FlushStdinWithTimeout discards pending terminal input for timeout.
// Piped stdin is never read.
func FlushStdinWithTimeout(timeout time.Duration) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		return
	}
	defer func() { _ = syscall.SetNonblock(fd, false) }()

	buf := make([]byte, 256)
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); {
		if n, _ := os.Stdin.Read(buf); n <= 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return stdoutIsTerminal() && term.IsTerminal(int(os.Stdin.Fd()))
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
