package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/MediBot/internal/config"
)

func TestSelectProvider(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{"nothing configured", config.ServerConfig{}, ProviderNone},
		{"gemini key", config.ServerConfig{GeminiAPIKey: "g", OpenAIAPIKey: "o"}, ProviderGemini},
		{"openai key", config.ServerConfig{OpenAIAPIKey: "o"}, ProviderOpenAI},
		{"explicit provider wins", config.ServerConfig{Provider: " OpenAI ", GeminiAPIKey: "g"}, ProviderOpenAI},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectProvider(tc.cfg))
		})
	}
}

func TestNewWithoutProvider(t *testing.T) {
	r, err := New(context.Background(), config.ServerConfig{})
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestNewRejectsMissingKeyAndUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.ServerConfig{Provider: ProviderOpenAI})
	assert.Error(t, err)

	_, err = New(context.Background(), config.ServerConfig{Provider: "llama"})
	assert.Error(t, err)
}

func TestOpenAIRespond(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " Drink water. "}},
			},
		})
	}))
	defer srv.Close()

	r := NewOpenAI("key", srv.URL, "")
	text, err := r.Respond(context.Background(), "how do I stay hydrated?")
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", text)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "how do I stay hydrated?", got.Messages[0].Content)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("key", srv.URL, "m").Respond(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("key", srv.URL, "m").Respond(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Rest "), genai.Text("well.")}}},
			{Content: nil},
		},
	}
	assert.Equal(t, "Rest well.", extractText(resp))
	assert.Equal(t, "", extractText(nil))
}
