package core

import "fmt"

// Speech bubble strings.
const (
	SpeechGreeting    = "Hi! I'm MediBot. Checking my connection..."
	SpeechOnline      = "I'm online and ready to help with your medical questions!"
	SpeechOffline     = "I'm having trouble connecting. Please make sure the backend is running."
	SpeechSearching   = "Let me search my medical knowledge base for you..."
	SpeechGeneral     = "I've used my medical knowledge to help answer your question!"
	SpeechRejected    = "I'm having some technical difficulties."
	SpeechUnreachable = "I'm having trouble connecting to my medical database."
)

// Message list strings.
const (
	ReplyRejected    = "Sorry, I encountered an error. Please try again."
	ReplyUnreachable = "Sorry, I cannot connect to the medical database right now. Please try again later."
	TypingText       = "Searching medical database..."
)

func SpeechWithSources(n int) string {
	return fmt.Sprintf("I found information from %d medical sources to help answer your question!", n)
}
