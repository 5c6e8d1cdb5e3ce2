package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/story-console/pkg/render"
	"github.com/jwebster45206/story-console/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

// Rows and columns taken by the frame around the story body:
// border (2) + title (1) + separator (1) + footer (2).
const (
	chromeHeight = 6
	chromeWidth  = 4
	minBodyWidth = 10
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	healthStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// bodySize returns the story viewport size for a terminal of w x h cells.
func bodySize(w, h int) (int, int) {
	bw := w - chromeWidth
	if bw < minBodyWidth {
		bw = minBodyWidth
	}
	bh := h - chromeHeight
	if bh < 1 {
		bh = 1
	}
	return bw, bh
}

// renderBody lays out the story log followed by the option list.
func renderBody(frame render.Frame, width int) string {
	var content strings.Builder

	for i, line := range strings.Split(frame.Story, "\n") {
		if frame.Story == "" {
			break
		}
		if i > 0 {
			content.WriteString("\n")
		}
		if isErrorLine(line) {
			content.WriteString(errorStyle.Render(wordwrap.String(line, width)))
			continue
		}
		content.WriteString(wordwrap.String(line, width))
	}

	switch {
	case len(frame.Options) > 0:
		content.WriteString("\n\n")
		for i, opt := range frame.Options {
			if i > 0 {
				content.WriteString("\n")
			}
			style := lipgloss.NewStyle().Foreground(opt.Color)
			content.WriteString(style.Render(wordwrap.String(opt.Label(), width)))
		}
	case frame.NoOptions:
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render(render.NoOptionsText))
	}

	if content.Len() == 0 {
		return ""
	}
	return centered(width, content.String())
}

// centered aligns every line of s to the middle of width columns.
func centered(width int, s string) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}

func isErrorLine(line string) bool {
	return line == state.GenerationErrorMarker || line == state.InvalidSelectionMessage
}

// renderFooter shows the health bar and either the wait indicator, a status
// message, or the key help.
func (m ConsoleUI) renderFooter(frame render.Frame) string {
	health := fmt.Sprintf("Health %3d %s", frame.HealthBar.Health, healthStyle.Render(frame.HealthBar.String()))

	var hint string
	switch {
	case frame.Awaiting:
		hint = m.spinner.View() + loadingStyle.Render(" The story continues...")
	case m.status != "":
		hint = promptStyle.Render(m.status)
	case frame.GameOver:
		hint = promptStyle.Render("Game over. q: quit  c: copy")
	default:
		hint = promptStyle.Render(frame.Help)
	}

	return health + "\n" + hint
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	frame := render.Produce(m.store.Snapshot(), m.phase == phaseAwaitingGeneration)
	innerWidth := m.viewport.Width

	title := lipgloss.PlaceHorizontal(innerWidth, lipgloss.Center, titleStyle.Render(frame.Title))
	separator := separatorStyle.Render(strings.Repeat("─", innerWidth))

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		centered(innerWidth, m.renderFooter(frame)),
	)

	return frameStyle.Width(innerWidth + 2).Render(body)
}
