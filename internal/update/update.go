package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/MediBot/internal/eventbus"
	"github.com/Rorical/MediBot/internal/models"
)

// HandleUpdateWithEventBus routes page-level messages. Anything it does not
// consume is reported as unhandled so the caller can pass it to widgets.
func HandleUpdateWithEventBus(appModel *models.AppModel, msg tea.Msg, input string, quick []string, eb *eventbus.EventBus) (tea.Cmd, Effect, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := HandleKeyMsgWithEventBus(appModel, msg, input, quick, eb)
		return cmd, Effect{}, handled
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil, Effect{ListChanged: true}, false
	case CoreEventMsg:
		return nil, HandleCoreEvent(appModel, msg), true
	}
	return nil, Effect{}, false
}
