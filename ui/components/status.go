package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/MediBot/internal/models"
	"github.com/Rorical/MediBot/ui/styles"
)

// RenderStatus draws the status dot, status text and active profile.
func RenderStatus(state models.ConnectionState, server string, width int) string {
	dot := styles.DotStyle(state).Render("●")
	return styles.StatusStyle(width).Render(dot + " " + state.String() + "  " + server)
}

// RenderSpeech draws the assistant speech bubble.
func RenderSpeech(speech string, width int) string {
	return styles.SpeechStyle(width).Render("MediBot: " + speech)
}

// RenderQuickHints lists the preset questions bound to F1..F4.
func RenderQuickHints(questions []string, width int) string {
	parts := make([]string, 0, len(questions))
	for i, q := range questions {
		if i >= 4 {
			break
		}
		parts = append(parts, fmt.Sprintf("F%d %s", i+1, q))
	}
	return styles.TimestampStyle().Width(max(width, 10)).Render(strings.Join(parts, " · "))
}
