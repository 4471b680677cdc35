package core

import (
	"context"
	"sync"

	"github.com/Rorical/MediBot/internal/eventbus"
)

// ChatService drives a ChatClient from UI events on the bus.
type ChatService struct {
	client   *ChatClient
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewChatService wires a ChatClient whose surface is the event bus.
func NewChatService(backend Backend, eb *eventbus.EventBus, opts ...Option) *ChatService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatService{
		client:   NewChatClient(backend, NewBusSurface(ctx, eb), opts...),
		eventBus: eb,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (cs *ChatService) Client() *ChatClient {
	return cs.client
}

// Start probes the backend once and begins handling UI events.
func (cs *ChatService) Start() {
	cs.wg.Add(2)
	go func() {
		defer cs.wg.Done()
		cs.client.Probe(cs.ctx)
	}()
	go func() {
		defer cs.wg.Done()
		cs.eventLoop()
	}()
}

// Stop cancels in-flight work and waits for the loops to exit.
func (cs *ChatService) Stop() {
	cs.cancel()
	cs.wg.Wait()
}

func (cs *ChatService) eventLoop() {
	for {
		select {
		case <-cs.ctx.Done():
			return
		case <-cs.eventBus.Done():
			return
		case event := <-cs.eventBus.UIToCore():
			cs.handleUIEvent(event)
		}
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		cs.client.Send(cs.ctx, e.Message)
	case eventbus.QuickMessageEvent:
		cs.client.SendQuick(cs.ctx, e.Message)
	}
}
