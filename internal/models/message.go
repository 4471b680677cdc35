package models

import (
	"time"

	"github.com/google/uuid"
)

type Sender int

const (
	User Sender = iota
	Bot
)

func (s Sender) String() string {
	if s == User {
		return "user"
	}
	return "bot"
}

// Message is a single rendered chat entry. Messages are appended once and
// never edited; the typing placeholder is not a Message.
type Message struct {
	ID          string
	Text        string
	Sender      Sender
	SourceCount int       // Number of knowledge-base passages behind a bot reply
	Timestamp   time.Time // Wall-clock time at render
}

func NewMessage(text string, sender Sender, sources int, at time.Time) Message {
	if sources < 0 {
		sources = 0
	}
	return Message{
		ID:          uuid.NewString(),
		Text:        text,
		Sender:      sender,
		SourceCount: sources,
		Timestamp:   at,
	}
}

// ConnectionState is decided once by the startup health probe.
type ConnectionState int

const (
	ConnectionUnknown ConnectionState = iota
	Online
	Offline
)

func (c ConnectionState) String() string {
	switch c {
	case Online:
		return "Online"
	case Offline:
		return "Offline"
	default:
		return "Connecting"
	}
}
