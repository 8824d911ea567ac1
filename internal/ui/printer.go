package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Printer centralizes output formatting for commands.
// - Respects --output (text|json|yaml)
// - Uses ColorConfig for styling when printing text
// - Drops informational lines when quiet
type Printer struct {
	format string
	out    io.Writer
	quiet  bool
	Colors *ColorConfig
}

func NewPrinter(format string) Printer {
	return Printer{format: normalizeFormat(format), out: os.Stdout, Colors: NewColorConfig()}
}

// WithOutput returns a copy of p writing to w.
func (p Printer) WithOutput(w io.Writer) Printer {
	p.out = w
	return p
}

// Out returns the writer used for text output.
func (p Printer) Out() io.Writer { return p.out }

// Format returns the selected output format.
func (p Printer) Format() string { return p.format }

// Structured reports whether output is machine-readable.
func (p Printer) Structured() bool { return p.format == FormatJSON || p.format == FormatYAML }

// Emit writes v in the selected structured format. For text output it
// falls back to fmt's %v, so callers normally render text themselves.
func (p Printer) Emit(v any) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(p.out, v)
		return err
	}
}

// Textf prints formatted text (always text path).
func (p Printer) Textf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }

// Println prints a plain line.
func (p Printer) Println(a ...any) { fmt.Fprintln(p.out, a...) }

// Success prints a success line with themed prefix.
func (p Printer) Success(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.Colors.Icon("success"), msg)
}

// Info prints an informational line.
func (p Printer) Info(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.Colors.Icon("info"), msg)
}

// Warn prints a warning line. Warnings are shown even when quiet.
func (p Printer) Warn(msg string) {
	fmt.Fprintln(p.out, p.Colors.Icon("warning"), msg)
}

// Error prints an error line.
func (p Printer) Error(msg string) {
	fmt.Fprintln(p.out, p.Colors.Icon("error"), msg)
}

// Header prints a section header.
func (p Printer) Header(title string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.Colors.Header(" "+title+" "))
}

// Section prints a section header with separator
func (p Printer) Section(title string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.Colors.SubHeader(title))
	fmt.Fprintln(p.out, p.Colors.Separator(40))
}

// KeyValueLine prints a key-value pair. colorType is one of
// "blue", "yellow", "green", "dim" or "" for the default.
func (p Printer) KeyValueLine(key, value, colorType string) {
	var coloredValue string
	switch colorType {
	case "blue":
		coloredValue = p.Colors.Info(value)
	case "yellow":
		coloredValue = p.Colors.Warning(value)
	case "green":
		coloredValue = p.Colors.Success(value)
	case "dim":
		coloredValue = p.Colors.Description(value)
	default:
		coloredValue = p.Colors.Value(value)
	}
	fmt.Fprintf(p.out, "%s %s\n", p.Colors.Label(key+":"), coloredValue)
}

func normalizeFormat(format string) string {
	switch format {
	case FormatJSON, FormatYAML:
		return format
	default:
		return FormatText
	}
}
