package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const drawInterval = 100 * time.Millisecond

// ProgressBar renders download progress for one file. On a terminal it
// redraws a single line; otherwise it prints a line every 10%.
type ProgressBar struct {
	out       io.Writer
	label     string
	indent    string
	total     int64
	current   int64
	startTime time.Time
	lastDraw  time.Time
	lastPct   float64
	isTTY     bool
	colors    *ColorConfig
	bar       progress.Model
	finished  bool
	now       func() time.Time
}

// NewProgressBar creates a progress bar writing to out. A total <= 0 means
// the size is unknown and only bytes and speed are shown.
func NewProgressBar(out io.Writer, label string, total int64) *ProgressBar {
	if out == nil {
		out = os.Stdout
	}

	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	if isTTY {
		// Disable focus reporting (CSI ? 1004 l) so ^[[I/^[[O do not land in the bar
		fmt.Fprint(out, "\033[?1004l")
	}

	colors := NewColorConfigFromGlobal()
	opts := []progress.Option{
		progress.WithoutPercentage(),
		progress.WithWidth(barWidth(out)),
		progress.WithFillCharacters('█', '░'),
	}
	if colors.Enabled {
		opts = append(opts, progress.WithDefaultGradient())
	} else {
		opts = append(opts, progress.WithColorProfile(termenv.Ascii))
	}

	return &ProgressBar{
		out:       out,
		label:     label,
		indent:    "  ",
		total:     normalizeTotal(total),
		startTime: time.Now(),
		lastPct:   -1,
		isTTY:     isTTY,
		colors:    colors,
		bar:       progress.New(opts...),
		now:       time.Now,
	}
}

// SetIndent sets the indentation prefix for the progress bar output.
func (p *ProgressBar) SetIndent(indent string) { p.indent = indent }

// Callback adapts the bar to a download progress callback. The total
// reported by the downloader replaces the one given at construction.
func (p *ProgressBar) Callback() func(transferred, total int64) {
	return func(transferred, total int64) {
		p.total = normalizeTotal(total)
		p.Update(transferred)
	}
}

// Update records the current byte count and redraws when due.
func (p *ProgressBar) Update(current int64) {
	p.current = current

	complete := p.total > 0 && current >= p.total
	now := p.now()
	if p.isTTY && !complete && now.Sub(p.lastDraw) < drawInterval {
		return
	}
	p.lastDraw = now

	if p.isTTY {
		fmt.Fprint(p.out, "\r"+p.render())
		return
	}

	// Non-TTY: print at 10% intervals; nothing until Finish for unknown sizes
	if p.total <= 0 {
		return
	}
	threshold := float64(int(p.percent()*10) * 10)
	if threshold > p.lastPct {
		p.lastPct = threshold
		fmt.Fprintf(p.out, "%s%s %.0f%%\n", p.indent, p.label, threshold)
	}
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	if p.finished {
		return
	}
	p.finished = true

	if p.isTTY {
		fmt.Fprint(p.out, "\r"+p.render()+"\n")
		return
	}
	elapsed := p.now().Sub(p.startTime)
	fmt.Fprintf(p.out, "%s%s %s in %s\n", p.indent, p.label, FormatBytes(p.current), formatDuration(elapsed.Seconds()))
}

func (p *ProgressBar) percent() float64 {
	if p.total <= 0 {
		return 0
	}
	pct := float64(p.current) / float64(p.total)
	if pct > 1 {
		pct = 1
	}
	return pct
}

// render builds the TTY line:
// "<indent><label> [bar] 42.0%  1.2 MiB/2.9 MiB  800.0 KiB/s  ETA 2s"
func (p *ProgressBar) render() string {
	elapsed := p.now().Sub(p.startTime).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(p.current) / elapsed
	}

	label := p.colors.Label(p.label)
	if p.total <= 0 {
		return fmt.Sprintf("%s%s %s  %s", p.indent, label, FormatBytes(p.current), FormatSpeed(speed))
	}

	eta := "0s"
	if p.current < p.total {
		eta = "--"
		if speed > 0 {
			eta = formatDuration(float64(p.total-p.current) / speed)
		}
	}
	pct := p.percent()
	return fmt.Sprintf("%s%s %s %5.1f%%  %s/%s  %s  ETA %s",
		p.indent, label, p.bar.ViewAs(pct), pct*100,
		FormatBytes(p.current), FormatBytes(p.total), FormatSpeed(speed), eta)
}

func normalizeTotal(total int64) int64 {
	if total <= 0 {
		return -1
	}
	return total
}

// barWidth sizes the bar to the terminal, leaving room for the stats.
func barWidth(out io.Writer) int {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	bw := width - 70
	if bw < 10 {
		bw = 10
	}
	if bw > 40 {
		bw = 40
	}
	return bw
}
