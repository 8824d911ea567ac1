package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestBar(buf *bytes.Buffer, total int64) *ProgressBar {
	pb := NewProgressBar(buf, "asset.bin", total)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pb.startTime = start
	pb.now = func() time.Time { return start.Add(2 * time.Second) }
	return pb
}

func TestProgressBar_NonTTYThresholds(t *testing.T) {
	var buf bytes.Buffer
	pb := newTestBar(&buf, 1000)
	cb := pb.Callback()

	for _, n := range []int64{50, 120, 130, 500, 1000} {
		cb(n, 1000)
	}

	want := "  asset.bin 0%\n  asset.bin 10%\n  asset.bin 50%\n  asset.bin 100%\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	pb := newTestBar(&buf, 0)
	cb := pb.Callback()

	cb(1024, -1)
	cb(4096, -1)
	if buf.Len() != 0 {
		t.Errorf("unexpected output before Finish: %q", buf.String())
	}

	pb.Finish()
	pb.Finish()
	if got := buf.String(); got != "  asset.bin 4.0 KiB in 2s\n" {
		t.Errorf("Finish output = %q", got)
	}
}

func TestProgressBar_Render(t *testing.T) {
	var buf bytes.Buffer
	pb := newTestBar(&buf, 4096)
	pb.current = 1024

	line := pb.render()
	for _, want := range []string{"asset.bin", "25.0%", "1.0 KiB/4.0 KiB", "512 B/s", "ETA 6s"} {
		if !strings.Contains(line, want) {
			t.Errorf("render() = %q, missing %q", line, want)
		}
	}

	pb.total = -1
	line = pb.render()
	if strings.Contains(line, "%") || !strings.Contains(line, "1.0 KiB") {
		t.Errorf("unknown-total render() = %q", line)
	}
}

func TestProgressBar_SetIndent(t *testing.T) {
	var buf bytes.Buffer
	pb := newTestBar(&buf, 10)
	pb.SetIndent("")
	pb.Update(10)
	if got := buf.String(); got != "asset.bin 100%\n" {
		t.Errorf("output = %q", got)
	}
}
