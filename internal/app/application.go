package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/MediBot/internal/api"
	"github.com/Rorical/MediBot/internal/config"
	"github.com/Rorical/MediBot/internal/core"
	"github.com/Rorical/MediBot/internal/dispatcher"
	"github.com/Rorical/MediBot/internal/eventbus"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	model      *AppModel
}

// NewApplication wires the chat page to the backend of the active profile.
func NewApplication(cfg *config.Config) *Application {
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		log.Error().Err(e.Err).Str("operation", e.Operation).Msg("event bus error")
	})

	disp := dispatcher.NewEventDispatcher(eb)

	backend := api.NewClient(cfg.BaseURL(), nil)
	chatService := core.NewChatService(backend, eb)

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		model:      newAppModel(disp, backend.BaseURL(), cfg.QuickQuestions),
	}
}

func (app *Application) Start() error {
	log.Info().Str("server", app.config.BaseURL()).Msg("starting chat")
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.dispatcher.Stop()
	app.eventBus.Close()
	app.service.Stop()
}
