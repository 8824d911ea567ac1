package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/t3sl4/release-util/internal/release"
)

// RenderRelease renders the title, notes and asset names of a release.
func RenderRelease(c *ColorConfig, info release.ReleaseInfo) string {
	var b strings.Builder

	title := info.Title
	if title == "" {
		title = "(untitled release)"
	}
	b.WriteString(c.Apply(c.Theme.Tag, title))
	b.WriteString("\n")

	if notes := strings.TrimSpace(info.Description); notes != "" {
		b.WriteString("\n")
		b.WriteString(renderNotes(c, notes))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(c.Label(fmt.Sprintf("Assets (%d)", len(info.AssetNames))))
	b.WriteString("\n")
	if len(info.AssetNames) == 0 {
		b.WriteString(c.Description("  none"))
		b.WriteString("\n")
	}
	for _, name := range info.AssetNames {
		b.WriteString("  ")
		b.WriteString(c.Apply(c.Theme.Asset, name))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderAssets renders a name/size table of assets.
func RenderAssets(c *ColorConfig, assets []release.Asset) string {
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		size := "unknown"
		if a.Size > 0 {
			size = FormatBytes(a.Size)
		}
		rows = append(rows, []string{a.Name, size})
	}
	return Table(c, []string{"ASSET", "SIZE"}, rows, nil)
}

// renderNotes shows release notes indented, boxed when colors are on.
func renderNotes(c *ColorConfig, notes string) string {
	if !c.Enabled {
		lines := strings.Split(notes, "\n")
		for i, l := range lines {
			lines[i] = "  " + l
		}
		return strings.Join(lines, "\n")
	}
	return c.Theme.Box.MaxWidth(100).Render(lipgloss.NewStyle().Width(80).Render(notes))
}
