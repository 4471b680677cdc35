package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Rorical/MediBot/internal/eventbus"
	"github.com/Rorical/MediBot/internal/models"
)

// Surface is the set of page regions the chat client writes to.
type Surface interface {
	AppendMessage(msg models.Message)
	SetTyping(visible bool)
	SetInput(text string)
	SetSendEnabled(enabled bool)
	SetSpeech(text string)
	SetConnection(state models.ConnectionState)
}

// BusSurface forwards surface writes to the UI over the event bus.
type BusSurface struct {
	ctx context.Context
	eb  *eventbus.EventBus
}

func NewBusSurface(ctx context.Context, eb *eventbus.EventBus) *BusSurface {
	return &BusSurface{ctx: ctx, eb: eb}
}

func (s *BusSurface) send(event eventbus.CoreEvent) {
	if err := s.eb.SendToUI(s.ctx, event); err != nil {
		log.Debug().Err(err).Msgf("dropped %T", event)
	}
}

func (s *BusSurface) AppendMessage(msg models.Message) {
	s.send(eventbus.MessageAppendedEvent{Message: msg})
}

func (s *BusSurface) SetTyping(visible bool) {
	s.send(eventbus.TypingEvent{Visible: visible})
}

func (s *BusSurface) SetInput(text string) {
	s.send(eventbus.InputEvent{Text: text})
}

func (s *BusSurface) SetSendEnabled(enabled bool) {
	s.send(eventbus.SendEnabledEvent{Enabled: enabled})
}

func (s *BusSurface) SetSpeech(text string) {
	s.send(eventbus.SpeechEvent{Text: text})
}

func (s *BusSurface) SetConnection(state models.ConnectionState) {
	s.send(eventbus.ConnectionEvent{State: state})
}
