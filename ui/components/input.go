package components

import (
	"github.com/Rorical/MediBot/internal/core"
	"github.com/Rorical/MediBot/ui/styles"
)

func RenderInput(input string, enabled bool, width int) string {
	return styles.InputStyle(width, enabled).Render(input)
}

func RenderTyping(spinner string) string {
	return styles.TypingStyle().Render(spinner + " " + core.TypingText)
}
