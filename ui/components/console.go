package components

import (
	"fmt"
	"io"
	"sync"

	"github.com/Rorical/MediBot/internal/models"
)

// ConsoleSurface prints chat regions as plain lines, for one-shot use
// outside the full-screen page. Input and send affordance have no console
// counterpart.
type ConsoleSurface struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *MessageRenderer
	server   string
	verbose  bool
}

// NewConsoleSurface writes to w. When verbose is false only messages are
// printed; speech, typing and status lines are skipped.
func NewConsoleSurface(w io.Writer, renderer *MessageRenderer, server string, verbose bool) *ConsoleSurface {
	return &ConsoleSurface{w: w, renderer: renderer, server: server, verbose: verbose}
}

func (s *ConsoleSurface) println(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, text)
}

func (s *ConsoleSurface) AppendMessage(msg models.Message) {
	s.println(s.renderer.RenderMessage(msg))
}

func (s *ConsoleSurface) SetTyping(visible bool) {
	if s.verbose && visible {
		s.println(RenderTyping("…"))
	}
}

func (s *ConsoleSurface) SetInput(string) {}

func (s *ConsoleSurface) SetSendEnabled(bool) {}

func (s *ConsoleSurface) SetSpeech(text string) {
	if s.verbose {
		s.println("MediBot: " + text)
	}
}

func (s *ConsoleSurface) SetConnection(state models.ConnectionState) {
	s.println(RenderStatus(state, s.server, 0))
}
