package server

import (
	"fmt"
	"strings"

	"github.com/Rorical/MediBot/internal/knowledge"
)

// Replies used when no model answer is available. They are sent with a 200
// status so the chat shows them as ordinary answers.
const (
	ReplyNoModel    = "I'm currently experiencing technical difficulties. Please consult a healthcare professional for medical advice."
	ReplyHighDemand = "I'm experiencing high demand right now. Please try again later or consult a healthcare professional."
	ReplyFailed     = "I encountered an error while processing your request. Please consult a healthcare professional for medical advice."
)

const contextPrompt = `You are MediBot, a knowledgeable medical AI assistant. You have access to a comprehensive medical knowledge base and your own medical training.

Medical Knowledge Base Context:
%s

User Question: %s

Instructions:
- First, use the provided medical context if it's relevant to answer the question
- If the context doesn't fully answer the question, supplement with your general medical knowledge
- Provide accurate, clear, and helpful medical information
- Always remind users to consult healthcare professionals for serious concerns
- Be conversational and empathetic
- Keep responses informative but concise

MediBot Response:`

const generalPrompt = `You are MediBot, a knowledgeable medical AI assistant. Answer the following medical question using your medical knowledge and training.

User Question: %s

Instructions:
- Provide accurate medical information based on your knowledge
- Be clear, helpful, and easy to understand
- Always remind users to consult healthcare professionals for diagnosis and treatment
- Be conversational and empathetic
- If you're unsure about something, acknowledge it and recommend professional consultation

MediBot Response:`

// BuildPrompt grounds the question in the retrieved passages when there are
// any.
func BuildPrompt(question string, passages []knowledge.Passage) string {
	if len(passages) == 0 {
		return fmt.Sprintf(generalPrompt, question)
	}
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = p.Content
	}
	return fmt.Sprintf(contextPrompt, strings.Join(parts, "\n"), question)
}
