package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/MediBot/internal/eventbus"
	"github.com/Rorical/MediBot/internal/update"
)

func TestListenForCoreEvents(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	disp := NewEventDispatcher(eb)
	defer disp.Stop()

	require.NoError(t, eb.SendToUI(context.Background(), eventbus.SpeechEvent{Text: "hi"}))

	msg := disp.ListenForCoreEvents()()
	assert.Equal(t, update.CoreEventMsg{Event: eventbus.SpeechEvent{Text: "hi"}}, msg)
}

func TestListenReturnsNilAfterStop(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	disp := NewEventDispatcher(eb)
	disp.Stop()

	assert.Nil(t, disp.ListenForCoreEvents()())
}

func TestListenReturnsNilWhenBusCloses(t *testing.T) {
	eb := eventbus.NewEventBus()
	disp := NewEventDispatcher(eb)
	defer disp.Stop()
	eb.Close()

	assert.Nil(t, disp.ListenForCoreEvents()())
}
