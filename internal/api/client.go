package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const userAgent = "MediBot-Client/1.0"

// Client talks to a MediBot backend. It enforces no timeout of its own;
// callers bound requests through the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health issues GET /api/health. Any transport error, non-2xx status or
// undecodable body is returned as an error.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create health request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "health request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("health check returned %s", resp.Status)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, errors.Wrap(err, "failed to decode health response")
	}
	return &health, nil
}

// Chat issues POST /api/chat and folds every failure into the result tag.
func (c *Client) Chat(ctx context.Context, message string) ChatResult {
	payload, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return ChatResult{Outcome: Unreachable, Err: errors.Wrap(err, "failed to marshal chat request")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(payload))
	if err != nil {
		return ChatResult{Outcome: Unreachable, Err: errors.Wrap(err, "failed to create chat request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ChatResult{Outcome: Unreachable, Err: errors.Wrap(err, "chat request failed")}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ChatResult{
			Outcome:    Rejected,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("chat returned %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	var chat chatReply
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return ChatResult{
			Outcome:    Unreachable,
			StatusCode: resp.StatusCode,
			Err:        errors.Wrap(err, "failed to decode chat response"),
		}
	}

	if chat.Response == nil {
		return ChatResult{
			Outcome:    Unreachable,
			StatusCode: resp.StatusCode,
			Err:        errors.New("chat response has no response field"),
		}
	}

	return ChatResult{
		Outcome:    Succeeded,
		Reply:      *chat.Response,
		Sources:    chat.Sources,
		StatusCode: resp.StatusCode,
	}
}
