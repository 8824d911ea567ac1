package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the styles for different UI elements
type Theme struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Header      lipgloss.Style
	SubHeader   lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Description lipgloss.Style
	Separator   lipgloss.Style

	// Release rendering
	Tag   lipgloss.Style
	Asset lipgloss.Style
	Box   lipgloss.Style

	Pending   lipgloss.Style
	Selection lipgloss.Style
}

// DefaultTheme returns the default color theme
func DefaultTheme() *Theme {
	return &Theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),

		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		SubHeader:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Label:       lipgloss.NewStyle().Bold(true), // terminal default foreground
		Value:       lipgloss.NewStyle(),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		Tag:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Asset: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),

		Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Selection: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	}
}

// ColorConfig manages color output settings
type ColorConfig struct {
	Enabled      bool
	EmojiEnabled bool
	Theme        *Theme
}

// NewColorConfig creates a color configuration from the environment.
// Colors are off when NO_COLOR is set or TERM is empty or dumb.
func NewColorConfig() *ColorConfig {
	noColor := os.Getenv("NO_COLOR") != ""
	term := os.Getenv("TERM")

	return &ColorConfig{
		Enabled:      !noColor && term != "dumb" && term != "",
		EmojiEnabled: true,
		Theme:        DefaultTheme(),
	}
}

// Apply renders text with style if colors are enabled
func (c *ColorConfig) Apply(style lipgloss.Style, text string) string {
	if !c.Enabled {
		return text
	}
	return style.Render(text)
}

func (c *ColorConfig) Success(text string) string     { return c.Apply(c.Theme.Success, text) }
func (c *ColorConfig) Warning(text string) string     { return c.Apply(c.Theme.Warning, text) }
func (c *ColorConfig) Error(text string) string       { return c.Apply(c.Theme.Error, text) }
func (c *ColorConfig) Info(text string) string        { return c.Apply(c.Theme.Info, text) }
func (c *ColorConfig) Header(text string) string      { return c.Apply(c.Theme.Header, text) }
func (c *ColorConfig) SubHeader(text string) string   { return c.Apply(c.Theme.SubHeader, text) }
func (c *ColorConfig) Label(text string) string       { return c.Apply(c.Theme.Label, text) }
func (c *ColorConfig) Value(text string) string       { return c.Apply(c.Theme.Value, text) }
func (c *ColorConfig) Description(text string) string { return c.Apply(c.Theme.Description, text) }

// Separator returns a colored separator line
func (c *ColorConfig) Separator(width int) string {
	return c.Apply(c.Theme.Separator, strings.Repeat("─", width))
}

// Icon returns the status glyph for kind, or a bracketed word when emoji are off.
func (c *ColorConfig) Icon(kind string) string {
	type pair struct {
		emoji, plain string
		style        lipgloss.Style
	}
	var p pair
	switch strings.ToLower(kind) {
	case "success":
		p = pair{"✓", "[OK]", c.Theme.Success}
	case "warning":
		p = pair{"!", "[WARN]", c.Theme.Warning}
	case "error":
		p = pair{"✗", "[ERR]", c.Theme.Error}
	case "info":
		p = pair{"ℹ", "[INFO]", c.Theme.Info}
	default:
		p = pair{"○", "[ ]", c.Theme.Pending}
	}
	if c.EmojiEnabled {
		return c.Apply(p.style, p.emoji)
	}
	return c.Apply(p.style, p.plain)
}
