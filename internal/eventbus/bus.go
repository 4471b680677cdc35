package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Rorical/MediBot/internal/models"
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// SendMessageEvent - UI asks core to start a chat turn with the input text
type SendMessageEvent struct {
	Message string
}

func (e SendMessageEvent) UIEvent() {}

// QuickMessageEvent - UI picked a preset question
type QuickMessageEvent struct {
	Message string
}

func (e QuickMessageEvent) UIEvent() {}

// MessageAppendedEvent - a message was added to the list
type MessageAppendedEvent struct {
	Message models.Message
}

func (e MessageAppendedEvent) CoreEvent() {}

// TypingEvent - typing placeholder shown or removed
type TypingEvent struct {
	Visible bool
}

func (e TypingEvent) CoreEvent() {}

// SpeechEvent - speech bubble overwritten
type SpeechEvent struct {
	Text string
}

func (e SpeechEvent) CoreEvent() {}

// ConnectionEvent - status indicator changed
type ConnectionEvent struct {
	State models.ConnectionState
}

func (e ConnectionEvent) CoreEvent() {}

// SendEnabledEvent - send affordance toggled
type SendEnabledEvent struct {
	Enabled bool
}

func (e SendEnabledEvent) CoreEvent() {}

// InputEvent - input field replaced (empty string clears it)
type InputEvent struct {
	Text string
}

func (e InputEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

var (
	ErrCoreQueueFull = errors.New("UI to Core channel is full")
	ErrClosed        = errors.New("event bus is closed")
)

// EventBus handles communication between UI and Core. UI->Core sends never
// block; Core->UI sends wait for room so surface updates are never dropped.
type EventBus struct {
	uiToCore      chan UIEvent
	coreToUI      chan CoreEvent
	done          chan struct{}
	closeOnce     sync.Once
	errorCallback func(EventBusError)
}

func NewEventBus() *EventBus {
	return &EventBus{
		uiToCore: make(chan UIEvent, 100),
		coreToUI: make(chan CoreEvent, 100),
		done:     make(chan struct{}),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	if eb.errorCallback != nil {
		eb.errorCallback(EventBusError{
			Operation: operation,
			Err:       err,
			Timestamp: time.Now(),
		})
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	select {
	case <-eb.done:
		eb.reportError("SendToCore", ErrClosed)
		return ErrClosed
	default:
	}

	select {
	case eb.uiToCore <- event:
		return nil
	default:
		eb.reportError("SendToCore", ErrCoreQueueFull)
		return ErrCoreQueueFull
	}
}

func (eb *EventBus) SendToUI(ctx context.Context, event CoreEvent) error {
	select {
	case eb.coreToUI <- event:
		return nil
	case <-eb.done:
		eb.reportError("SendToUI", ErrClosed)
		return ErrClosed
	case <-ctx.Done():
		eb.reportError("SendToUI", ctx.Err())
		return ctx.Err()
	}
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

// Done is closed when the bus shuts down.
func (eb *EventBus) Done() <-chan struct{} {
	return eb.done
}

// Close stops delivery. The channels themselves stay open so late senders
// fail through Done instead of panicking.
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		close(eb.done)
	})
}
