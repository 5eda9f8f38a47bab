package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wolfsim/werewolf"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	systemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DDDDDD"))
	phaseStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888"))
	deathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	executionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F"))
	winStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2ECC71"))
	speakerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	thoughtStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#CC6666"))
	deadStyle      = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#666666"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// renderLog formats every round record. Inner thoughts only show in god view.
func renderLog(records []werewolf.RoundRecord, agents []werewolf.AgentView, god bool) string {
	if len(records) == 0 {
		return phaseStyle.Render("No days simulated yet. Press n to begin.")
	}
	byName := make(map[string]werewolf.AgentView, len(agents))
	for _, a := range agents {
		byName[a.Name] = a
	}

	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(titleStyle.Render(fmt.Sprintf("── Day %d ──", rec.Round)))
		sb.WriteString("\n")
		for _, e := range rec.Events {
			sb.WriteString(renderEvent(e, byName[e.Actor], god))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderEvent(e werewolf.Event, actor werewolf.AgentView, god bool) string {
	switch e.Kind {
	case werewolf.EventSystem:
		return systemStyle.Render(e.Text)
	case werewolf.EventPhase:
		return phaseStyle.Render(e.Text)
	case werewolf.EventDeath:
		return deathStyle.Render(e.Text)
	case werewolf.EventExecution:
		return executionStyle.Render(e.Text)
	case werewolf.EventWin:
		return winStyle.Render(e.Text)
	case werewolf.EventChat:
		who := fmt.Sprintf("%s %s", actor.Personality.Emoji(), e.Actor)
		if god {
			who = fmt.Sprintf("%s %s", e.Role.Icon(), who)
		}
		line := speakerStyle.Render(who) + "  " + e.Text
		if god && e.InnerThought != "" {
			line += "\n    " + thoughtStyle.Render("💭 "+e.InnerThought)
		}
		return line
	}
	return e.Text
}

// renderRoster lists every agent; roles show once revealed or in god view.
func renderRoster(agents []werewolf.AgentView, god bool) string {
	lines := make([]string, 0, len(agents)+1)
	lines = append(lines, titleStyle.Render("Village"))
	for _, a := range agents {
		label := a.Name
		if god || a.Revealed {
			label = fmt.Sprintf("%s %s (%s)", a.Role.Icon(), a.Name, a.Role.Title())
		}
		if !a.Alive {
			lines = append(lines, deadStyle.Render("x "+label))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", a.Personality.Emoji(), label))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
