package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/boardroom/internal/persona"
)

type theme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	title       lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	inputPanel  lipgloss.Style
	settings    lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	helpText    lipgloss.Style
	idle        lipgloss.Style
	done        lipgloss.Style
	seed        lipgloss.Style
	persona     map[persona.Archetype]lipgloss.Style
}

func newTheme() theme {
	blue := lipgloss.Color("#01cdfe")
	pink := lipgloss.Color("#ff71ce")
	border := lipgloss.Color("#3b2d5c")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	t := theme{
		root: lipgloss.NewStyle().Foreground(text).Padding(0, 1),
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		title: lipgloss.NewStyle().Foreground(blue).Bold(true),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(muted).Bold(true),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		settings: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		footer:      lipgloss.NewStyle().Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		idle:        lipgloss.NewStyle().Foreground(muted),
		done:        lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1")),
		seed:        lipgloss.NewStyle().Foreground(muted).Italic(true),
		persona:     make(map[persona.Archetype]lipgloss.Style),
	}
	for _, a := range persona.Archetypes() {
		t.persona[a] = lipgloss.NewStyle().Foreground(lipgloss.Color(a.Accent())).Bold(true)
	}
	return t
}

func (t theme) accent(a persona.Archetype) lipgloss.Style {
	if s, ok := t.persona[a]; ok {
		return s
	}
	return t.panelTitle
}
