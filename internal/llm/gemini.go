package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}
	return &Gemini{client: client, model: client.GenerativeModel(model), name: model}, nil
}

func (g *Gemini) Respond(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "gemini generate")
	}
	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Gemini) Name() string {
	return g.name
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}
