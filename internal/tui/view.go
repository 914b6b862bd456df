package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/pipeline"
)

const sidebarWidth = 30

// View renders the whole screen.
func (a *App) View() string {
	out := lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		a.renderContent(),
		a.renderInput(),
		a.renderFooter(),
	)
	return a.theme.root.Render(out)
}

func (a *App) contentWidth() int { return max(60, a.width-4) }

func (a *App) contentHeight() int { return max(8, a.height-12) }

func (a *App) resize() {
	left := a.contentWidth() - sidebarWidth - 1
	a.timeline.Width = max(20, left-4)
	a.timeline.Height = max(5, a.contentHeight()-3)
	a.idea.Width = max(20, a.contentWidth()-8)
	a.credential.Width = max(20, a.contentWidth()-16)
}

func (a *App) renderHeader() string {
	title := a.theme.title.Render("Boardroom")
	status := a.theme.helpText.Render(fmt.Sprintf("  %d executives · %s", a.personas.Count(), a.snap.Status))
	return a.theme.header.Width(a.contentWidth()).Render(title + status)
}

func (a *App) renderContent() string {
	height := a.contentHeight()
	left := a.contentWidth() - sidebarWidth - 1
	timeline := a.theme.panel.Width(left).Height(height).Render(
		a.theme.panelTitle.Render("Meeting") + "\n" + a.timeline.View(),
	)
	sidebar := a.theme.panel.Width(sidebarWidth).Height(height).Render(
		a.theme.panelTitle.Render("The Board") + "\n" + a.renderSidebar(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, timeline, sidebar)
}

func (a *App) renderInput() string {
	width := a.contentWidth()
	if a.showSettings {
		body := a.theme.panelTitle.Render("Settings") + "\n" +
			a.credential.View() + "\n" +
			a.theme.helpText.Render("Kept in memory for this session only. Enter to save.")
		return a.theme.settings.Width(width).Render(body)
	}
	view := a.idea.View()
	if a.snap.Status == pipeline.StatusRunning {
		view = a.spinner.View() + " the board is in session... " + view
	}
	return a.theme.inputPanel.Width(width).Render(view)
}

func (a *App) renderFooter() string {
	style := a.theme.status
	if a.noticeErr {
		style = a.theme.errorStatus
	}
	hints := a.theme.helpText.Render("Enter start · Ctrl+R reset · Ctrl+S settings · PgUp/PgDn scroll · Ctrl+C quit")
	return a.theme.footer.Width(a.contentWidth()).Render(style.Render(a.notice) + "\n" + hints)
}

// renderTimeline refreshes the viewport from the current snapshot.
func (a *App) renderTimeline() {
	a.timeline.SetContent(a.timelineContent())
	a.timeline.GotoBottom()
}

func (a *App) timelineContent() string {
	if a.snap.Seed == "" && len(a.snap.Entries) == 0 {
		return a.theme.idle.Render("Pitch an idea and press Enter to convene the board.")
	}
	wrap := lipgloss.NewStyle().Width(max(20, a.timeline.Width-2))

	var b strings.Builder
	b.WriteString(a.theme.seed.Render(wrap.Render("Initial Idea: " + a.snap.Seed)))
	for _, e := range a.snap.Entries {
		b.WriteString("\n\n")
		b.WriteString(a.entryHeader(e))
		b.WriteString("\n")
		b.WriteString(wrap.Render(e.Content))
	}
	return b.String()
}

func (a *App) entryHeader(e pipeline.LogEntry) string {
	def, err := a.personas.ByID(e.AgentID)
	if err != nil {
		return a.theme.panelTitle.Render(e.AgentName)
	}
	header := a.theme.accent(def.Archetype).Render(fmt.Sprintf("%s %s", def.Archetype.Icon(), e.AgentName))
	role := a.theme.helpText.Render(" · " + def.Role)
	if !e.Done && a.snap.Active == e.AgentID {
		return header + role + " " + a.spinner.View()
	}
	return header + role
}

func (a *App) renderSidebar() string {
	var b strings.Builder
	for i, def := range a.personas.All() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.personaMarker(def))
		b.WriteString(" ")
		b.WriteString(a.theme.accent(def.Archetype).Render(def.Name))
		b.WriteString("\n   ")
		b.WriteString(a.theme.helpText.Render(def.Archetype.Label()))
	}
	return b.String()
}

func (a *App) personaMarker(def persona.Definition) string {
	if a.snap.Active == def.ID {
		return a.spinner.View()
	}
	if e, ok := a.snap.Entry(def.ID); ok && e.Done {
		return a.theme.done.Render("✓")
	}
	return a.theme.idle.Render("·")
}
