package core

import "github.com/Rorical/MediBot/internal/api"

// Turn is one in-flight chat request.
type Turn struct {
	Message string

	done   chan struct{}
	result api.ChatResult
}

func newTurn(message string) *Turn {
	return &Turn{
		Message: message,
		done:    make(chan struct{}),
	}
}

// Done is closed once the turn has settled and the busy flag is clear.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn settles and returns how it ended.
func (t *Turn) Wait() api.ChatResult {
	<-t.done
	return t.result
}
