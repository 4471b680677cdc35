package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/MediBot/internal/eventbus"
	"github.com/Rorical/MediBot/internal/models"
)

// quickKeys map function keys to preset questions by position.
var quickKeys = []string{"f1", "f2", "f3", "f4"}

// HandleKeyMsgWithEventBus handles keys the page reacts to. It reports
// false for keys that belong to the input field.
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, input string, quick []string, eb *eventbus.EventBus) (tea.Cmd, bool) {
	key := keyMsg.String()
	switch key {
	case "ctrl+c", "esc":
		return tea.Quit, true
	case "enter":
		// Blank or busy sends are dropped by the core; only forward real text
		if strings.TrimSpace(input) != "" {
			if err := eb.SendToCore(eventbus.SendMessageEvent{Message: input}); err != nil {
				log.Error().Err(err).Msg("failed to forward message to core")
			}
		}
		return nil, true
	}

	for i, k := range quickKeys {
		if key == k && i < len(quick) {
			if err := eb.SendToCore(eventbus.QuickMessageEvent{Message: quick[i]}); err != nil {
				log.Error().Err(err).Msg("failed to forward quick message to core")
			}
			return nil, true
		}
	}
	return nil, false
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// Effect tells the page which widgets need refreshing after a core event.
type Effect struct {
	ListChanged bool
	Input       *string // New input field contents, nil when untouched
}

// HandleCoreEvent applies one surface update from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) Effect {
	var effect Effect
	switch event := coreEventMsg.Event.(type) {
	case eventbus.MessageAppendedEvent:
		appModel.Messages = append(appModel.Messages, event.Message)
		effect.ListChanged = true
	case eventbus.TypingEvent:
		appModel.Typing = event.Visible
		effect.ListChanged = true
	case eventbus.SpeechEvent:
		appModel.Speech = event.Text
	case eventbus.ConnectionEvent:
		appModel.Connection = event.State
	case eventbus.SendEnabledEvent:
		appModel.SendEnabled = event.Enabled
	case eventbus.InputEvent:
		text := event.Text
		effect.Input = &text
	}
	return effect
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}
