package components

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/MediBot/internal/core"
	"github.com/Rorical/MediBot/internal/models"
)

var at = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newRenderer(t *testing.T) *MessageRenderer {
	t.Helper()
	r, err := NewMessageRenderer("notty", 60)
	require.NoError(t, err)
	return r
}

func TestRenderBotMessageWithSources(t *testing.T) {
	r := newRenderer(t)
	out := r.RenderMessage(models.Message{Text: "X", Sender: models.Bot, SourceCount: 3, Timestamp: at})

	assert.Contains(t, out, "MediBot")
	assert.Contains(t, out, "X")
	assert.Contains(t, out, SourcesNote(3))
	assert.Contains(t, out, "09:30")
}

func TestRenderBotMessageWithoutSources(t *testing.T) {
	r := newRenderer(t)
	out := r.RenderMessage(models.Message{Text: "X", Sender: models.Bot, SourceCount: 0, Timestamp: at})

	assert.Contains(t, out, "X")
	assert.NotContains(t, out, "medical sources")
}

func TestRenderUserMessage(t *testing.T) {
	r := newRenderer(t)
	out := r.RenderMessage(models.Message{Text: "I have a **cough**", Sender: models.User, Timestamp: at})

	assert.Contains(t, out, "You")
	assert.Contains(t, out, "I have a **cough**")
}

func TestRenderMessageDeterministic(t *testing.T) {
	r := newRenderer(t)
	msg := models.Message{ID: "a", Text: "Rest and fluids.", Sender: models.Bot, SourceCount: 2, Timestamp: at}
	other := msg
	other.ID = "b"

	assert.Equal(t, r.RenderMessage(msg), r.RenderMessage(other))
}

func TestRenderMessagesTyping(t *testing.T) {
	r := newRenderer(t)
	msgs := []models.Message{
		{Text: "first", Sender: models.User, Timestamp: at},
		{Text: "second", Sender: models.Bot, Timestamp: at},
	}

	idle := r.RenderMessages(msgs, false, "*")
	assert.NotContains(t, idle, core.TypingText)
	assert.Less(t, strings.Index(idle, "first"), strings.Index(idle, "second"))

	busy := r.RenderMessages(msgs, true, "*")
	require.Contains(t, busy, core.TypingText)
	assert.Greater(t, strings.Index(busy, core.TypingText), strings.Index(busy, "second"))
}

func TestNilRendererFallsBackToPlainText(t *testing.T) {
	var r *MessageRenderer
	out := r.RenderMessage(models.Message{Text: "plain", Sender: models.Bot, Timestamp: at})
	assert.Contains(t, out, "plain")
}

func TestRenderStatus(t *testing.T) {
	assert.Contains(t, RenderStatus(models.Online, "default", 40), "Online")
	assert.Contains(t, RenderStatus(models.Offline, "default", 40), "Offline")
	assert.Contains(t, RenderSpeech(core.SpeechOnline, 120), "ready to help")
}

func TestRenderQuickHints(t *testing.T) {
	out := RenderQuickHints([]string{"a?", "b?", "c?", "d?", "e?"}, 200)
	assert.Contains(t, out, "F1 a?")
	assert.Contains(t, out, "F4 d?")
	assert.NotContains(t, out, "e?")
}

func TestConsoleSurface(t *testing.T) {
	r, err := NewMessageRenderer("notty", 80)
	require.NoError(t, err)

	var buf bytes.Buffer
	s := NewConsoleSurface(&buf, r, "http://localhost:5000", false)
	s.SetSpeech("hidden speech")
	s.SetTyping(true)
	s.SetConnection(models.Online)
	s.AppendMessage(models.NewMessage("Rest", models.Bot, 1, time.Now()))

	out := buf.String()
	assert.NotContains(t, out, "hidden speech")
	assert.NotContains(t, out, core.TypingText)
	assert.Contains(t, out, "Online")
	assert.Contains(t, out, "Rest")
	assert.Contains(t, out, "Based on 1 medical sources")

	buf.Reset()
	verbose := NewConsoleSurface(&buf, r, "", true)
	verbose.SetSpeech("shown speech")
	verbose.SetTyping(true)
	assert.Contains(t, buf.String(), "MediBot: shown speech")
	assert.Contains(t, buf.String(), core.TypingText)
}
