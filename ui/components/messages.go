package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Rorical/MediBot/internal/models"
	"github.com/Rorical/MediBot/ui/styles"
)

const TimeLayout = "15:04"

// MessageRenderer turns messages into list entries. Bot replies are
// markdown and go through glamour; user text is shown as typed.
type MessageRenderer struct {
	md *glamour.TermRenderer
}

// NewMessageRenderer builds a renderer for the given glamour style
// ("dark", "light", "ascii", "notty") wrapping at width.
func NewMessageRenderer(style string, width int) (*MessageRenderer, error) {
	if width <= 0 {
		width = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &MessageRenderer{md: md}, nil
}

func (r *MessageRenderer) markdown(text string) string {
	if r == nil || r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// SourcesNote is the annotation under replies backed by the knowledge base.
func SourcesNote(n int) string {
	return fmt.Sprintf("Based on %d medical sources", n)
}

// RenderMessage is deterministic for a given text, sender, source count
// and timestamp.
func (r *MessageRenderer) RenderMessage(msg models.Message) string {
	stamp := styles.TimestampStyle().Render(msg.Timestamp.Format(TimeLayout))

	if msg.Sender == models.User {
		header := styles.HeaderStyle().Render("You") + " " + stamp
		return header + "\n" + styles.UserStyle().Render(msg.Text)
	}

	body := r.markdown(msg.Text)
	if msg.SourceCount > 0 {
		body += "\n" + styles.SourcesStyle().Render(SourcesNote(msg.SourceCount))
	}
	header := styles.HeaderStyle().Render("MediBot") + " " + stamp
	return header + "\n" + styles.BotStyle().Render(body)
}

// RenderMessages renders the whole list followed by the typing placeholder
// when one is showing.
func (r *MessageRenderer) RenderMessages(messages []models.Message, typing bool, spinner string) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(r.RenderMessage(msg))
		b.WriteString("\n\n")
	}
	if typing {
		b.WriteString(RenderTyping(spinner))
	}
	return strings.TrimRight(b.String(), "\n")
}
