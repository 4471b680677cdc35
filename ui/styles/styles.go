package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/MediBot/internal/models"
)

// Status dot colours.
const (
	OnlineColor     = "#00ff7f"
	OfflineColor    = "#ff4444"
	ConnectingColor = "#ffaa00"
)

func DotColor(state models.ConnectionState) string {
	switch state {
	case models.Online:
		return OnlineColor
	case models.Offline:
		return OfflineColor
	default:
		return ConnectingColor
	}
}

func DotStyle(state models.ConnectionState) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(DotColor(state)))
}

func InputStyle(width int, enabled bool) lipgloss.Style {
	border := lipgloss.Color("62")
	if !enabled {
		border = lipgloss.Color("240")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(width-4, 10))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func SpeechStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		Width(max(width-4, 10))
}

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		MarginLeft(2)
}

func BotStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		MarginLeft(2)
}

func TimestampStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
}

func SourcesStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true)
}

func TypingStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Padding(0, 2)
}
