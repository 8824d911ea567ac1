package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPickCancelled is returned when the user leaves the picker without confirming.
var ErrPickCancelled = errors.New("selection cancelled")

// PickItem is one selectable row.
type PickItem struct {
	Name   string
	Detail string // shown dimmed after the name, e.g. a size
}

type pickerKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.Confirm, k.Quit}
}

func (k pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

func newPickerKeys() pickerKeys {
	return pickerKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all/none"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "download"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// pickerModel is a multi-select list. Confirming with nothing toggled
// selects the row under the cursor.
type pickerModel struct {
	title     string
	items     []PickItem
	cursor    int
	selected  map[int]bool
	keys      pickerKeys
	help      help.Model
	colors    *ColorConfig
	confirmed bool
	cancelled bool
}

func newPickerModel(title string, items []PickItem, colors *ColorConfig) pickerModel {
	return pickerModel{
		title:    title,
		items:    items,
		selected: map[int]bool{},
		keys:     newPickerKeys(),
		help:     help.New(),
		colors:   colors,
	}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if len(m.items) > 0 {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case key.Matches(keyMsg, m.keys.All):
		all := len(m.Selected()) < len(m.items)
		for i := range m.items {
			m.selected[i] = all
		}
	case key.Matches(keyMsg, m.keys.Confirm):
		if len(m.items) == 0 {
			return m, nil
		}
		if len(m.Selected()) == 0 {
			m.selected[m.cursor] = true
		}
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

// Selected returns the toggled indices in list order.
func (m pickerModel) Selected() []int {
	var out []int
	for i := range m.items {
		if m.selected[i] {
			out = append(out, i)
		}
	}
	return out
}

func (m pickerModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}

	c := m.colors
	var b strings.Builder
	b.WriteString(c.Header(m.title))
	b.WriteString("\n\n")
	for i, it := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = c.Apply(c.Theme.Selection, "> ")
		}
		box := "[ ]"
		if m.selected[i] {
			box = c.Success("[x]")
		}
		name := it.Name
		if i == m.cursor {
			name = c.Apply(c.Theme.Selection, name)
		}
		fmt.Fprintf(&b, "%s%s %s", cursor, box, name)
		if it.Detail != "" {
			b.WriteString("  ")
			b.WriteString(c.Description(it.Detail))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Pick runs an interactive multi-select over items and returns the chosen
// indices. opts are passed to the bubbletea program.
func Pick(title string, items []PickItem, opts ...tea.ProgramOption) ([]int, error) {
	if len(items) == 0 {
		return nil, errors.New("nothing to pick from")
	}

	m := newPickerModel(title, items, NewColorConfigFromGlobal())
	final, err := tea.NewProgram(m, opts...).Run()
	ResetTerminalAfterTUI()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}

	result := final.(pickerModel)
	if !result.confirmed {
		return nil, ErrPickCancelled
	}
	return result.Selected(), nil
}
