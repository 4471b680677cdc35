package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rorical/MediBot/internal/api"
	"github.com/Rorical/MediBot/internal/models"
)

// Backend is the remote side of the chat client.
type Backend interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	Chat(ctx context.Context, message string) api.ChatResult
}

// ChatClient runs the probe and chat turns against a Backend and reflects
// every state change onto a Surface.
type ChatClient struct {
	backend Backend
	surface Surface
	now     func() time.Time
	onBusy  func(busy bool)

	busy busyFlag

	mu         sync.RWMutex
	connection models.ConnectionState
}

type Option func(*ChatClient)

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(c *ChatClient) {
		c.now = now
	}
}

// WithBusyObserver registers a callback fired on every busy transition.
func WithBusyObserver(fn func(busy bool)) Option {
	return func(c *ChatClient) {
		c.onBusy = fn
	}
}

func NewChatClient(backend Backend, surface Surface, opts ...Option) *ChatClient {
	c := &ChatClient{
		backend: backend,
		surface: surface,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a chat turn is in flight.
func (c *ChatClient) Busy() bool {
	return c.busy.isBusy()
}

func (c *ChatClient) Connection() models.ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connection
}

// Probe checks backend health once and updates the status indicator and
// speech bubble. It never retries.
func (c *ChatClient) Probe(ctx context.Context) models.ConnectionState {
	state := models.Offline
	health, err := c.backend.Health(ctx)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("backend not available")
	case health.Status != api.StatusHealthy:
		log.Warn().Str("status", health.Status).Msg("backend reported unhealthy status")
	default:
		state = models.Online
	}

	c.mu.Lock()
	c.connection = state
	c.mu.Unlock()

	if state == models.Online {
		c.surface.SetSpeech(SpeechOnline)
	} else {
		c.surface.SetSpeech(SpeechOffline)
	}
	c.surface.SetConnection(state)
	return state
}

// Send starts a chat turn. It returns nil without touching the surface
// when the trimmed text is empty or another turn is in flight.
func (c *ChatClient) Send(ctx context.Context, text string) *Turn {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !c.busy.tryAcquire() {
		log.Debug().Msg("send ignored: request in flight")
		return nil
	}

	c.render(text, models.User, 0)
	c.surface.SetInput("")

	c.notifyBusy(true)
	c.surface.SetTyping(true)
	c.surface.SetSendEnabled(false)
	c.surface.SetSpeech(SpeechSearching)

	turn := newTurn(text)
	go c.complete(ctx, turn)
	return turn
}

// SendQuick fills the input with a preset question and sends it. While a
// turn is in flight the question stays in the input.
func (c *ChatClient) SendQuick(ctx context.Context, text string) *Turn {
	c.surface.SetInput(text)
	return c.Send(ctx, text)
}

func (c *ChatClient) complete(ctx context.Context, turn *Turn) {
	typing := true
	defer func() {
		if typing {
			c.surface.SetTyping(false)
		}
		c.surface.SetSendEnabled(true)
		c.busy.release()
		c.notifyBusy(false)
		close(turn.done)
	}()

	res := c.backend.Chat(ctx, turn.Message)
	turn.result = res

	c.surface.SetTyping(false)
	typing = false
	c.settle(res)
}

func (c *ChatClient) settle(res api.ChatResult) {
	switch res.Outcome {
	case api.Succeeded:
		c.render(res.Reply, models.Bot, res.Sources)
		if res.Sources > 0 {
			c.surface.SetSpeech(SpeechWithSources(res.Sources))
		} else {
			c.surface.SetSpeech(SpeechGeneral)
		}
	case api.Rejected:
		log.Warn().Err(res.Err).Int("status", res.StatusCode).Msg("chat request rejected")
		c.render(ReplyRejected, models.Bot, 0)
		c.surface.SetSpeech(SpeechRejected)
	default:
		log.Error().Err(res.Err).Msg("chat backend unreachable")
		c.render(ReplyUnreachable, models.Bot, 0)
		c.surface.SetSpeech(SpeechUnreachable)
	}
}

func (c *ChatClient) render(text string, sender models.Sender, sources int) {
	c.surface.AppendMessage(models.NewMessage(text, sender, sources, c.now()))
}

func (c *ChatClient) notifyBusy(busy bool) {
	if c.onBusy != nil {
		c.onBusy(busy)
	}
}
