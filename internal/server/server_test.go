package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/MediBot/internal/api"
	"github.com/Rorical/MediBot/internal/cache"
	"github.com/Rorical/MediBot/internal/knowledge"
)

type fakeResponder struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeResponder) Respond(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeResponder) Name() string { return "fake" }
func (f *fakeResponder) Close() error { return nil }

func (f *fakeResponder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeRetriever struct {
	passages []knowledge.Passage
	err      error
}

func (f *fakeRetriever) Search(_ context.Context, _ string, k int) ([]knowledge.Passage, error) {
	if len(f.passages) > k {
		return f.passages[:k], f.err
	}
	return f.passages, f.err
}

func passages(n int) []knowledge.Passage {
	out := make([]knowledge.Passage, n)
	for i := range out {
		out[i] = knowledge.Passage{Source: "doc.md", Chunk: i, Content: "passage text"}
	}
	return out
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, api.ChatPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeChat(t *testing.T, rec *httptest.ResponseRecorder) api.ChatResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h := New(&fakeResponder{}, WithRetriever(&fakeRetriever{})).Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, api.HealthPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, api.StatusHealthy, body.Status)
	assert.True(t, body.ModelAvailable)
	assert.True(t, body.KnowledgeBaseAvailable)
	assert.Equal(t, HealthMessage, body.Message)
}

func TestHealthWithoutModel(t *testing.T) {
	rec := httptest.NewRecorder()
	New(nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, api.HealthPath, nil))

	var body api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, api.StatusHealthy, body.Status)
	assert.False(t, body.ModelAvailable)
	assert.False(t, body.KnowledgeBaseAvailable)
}

func TestChatBadRequests(t *testing.T) {
	h := New(&fakeResponder{reply: "ok"}).Router()

	for _, body := range []string{`not json`, `{"message":""}`, `{"message":"   "}`, `{}`} {
		rec := postChat(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var e api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
		assert.NotEmpty(t, e.Error)
	}
}

func TestChatWithContext(t *testing.T) {
	responder := &fakeResponder{reply: "Drink fluids."}
	h := New(responder, WithRetriever(&fakeRetriever{passages: passages(5)}), WithTopK(3)).Router()

	resp := decodeChat(t, postChat(t, h, `{"message":"What helps a fever?"}`))
	assert.Equal(t, "Drink fluids.", resp.Response)
	assert.Equal(t, 3, resp.Sources)
	assert.Equal(t, ModelName, resp.Model)

	require.Len(t, responder.prompts, 1)
	assert.Contains(t, responder.prompts[0], "Medical Knowledge Base Context:")
	assert.Contains(t, responder.prompts[0], "What helps a fever?")
}

func TestChatWithoutContext(t *testing.T) {
	responder := &fakeResponder{reply: "General answer."}
	h := New(responder, WithRetriever(&fakeRetriever{err: errors.New("index broken")})).Router()

	resp := decodeChat(t, postChat(t, h, `{"message":"What causes migraines?"}`))
	assert.Equal(t, "General answer.", resp.Response)
	assert.Equal(t, 0, resp.Sources)
	assert.NotContains(t, responder.prompts[0], "Medical Knowledge Base Context:")
}

func TestChatFallbacks(t *testing.T) {
	cases := []struct {
		name      string
		responder *fakeResponder
		want      string
	}{
		{"quota", &fakeResponder{err: errors.New("googleapi: Error 429: Quota exceeded")}, ReplyHighDemand},
		{"other failure", &fakeResponder{err: errors.New("connection reset")}, ReplyFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(tc.responder, WithRetriever(&fakeRetriever{passages: passages(2)})).Router()
			resp := decodeChat(t, postChat(t, h, `{"message":"q"}`))
			assert.Equal(t, tc.want, resp.Response)
			assert.Equal(t, 0, resp.Sources)
		})
	}

	resp := decodeChat(t, postChat(t, New(nil).Router(), `{"message":"q"}`))
	assert.Equal(t, ReplyNoModel, resp.Response)
}

func TestChatCachesAnswers(t *testing.T) {
	responder := &fakeResponder{reply: "Cached answer."}
	h := New(responder, WithCache(cache.NewMemory(time.Minute)), WithRetriever(&fakeRetriever{passages: passages(1)})).Router()

	first := decodeChat(t, postChat(t, h, `{"message":"What causes migraines?"}`))
	second := decodeChat(t, postChat(t, h, `{"message":"  what causes   MIGRAINES? "}`))

	assert.Equal(t, first, second)
	assert.Equal(t, 1, responder.calls())
}

func TestChatDoesNotCacheFailures(t *testing.T) {
	responder := &fakeResponder{err: errors.New("boom")}
	h := New(responder, WithCache(cache.NewMemory(time.Minute))).Router()

	decodeChat(t, postChat(t, h, `{"message":"q"}`))
	decodeChat(t, postChat(t, h, `{"message":"q"}`))
	assert.Equal(t, 2, responder.calls())
}

func TestChatRateLimit(t *testing.T) {
	h := New(&fakeResponder{reply: "ok"}, WithRateLimit(2)).Router()

	assert.Equal(t, http.StatusOK, postChat(t, h, `{"message":"a"}`).Code)
	assert.Equal(t, http.StatusOK, postChat(t, h, `{"message":"b"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, postChat(t, h, `{"message":"c"}`).Code)

	// Health is never limited
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, api.HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatRateLimitIgnoresForwardedHeaders(t *testing.T) {
	post := func(h http.Handler, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, api.ChatPath, strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	h := New(&fakeResponder{reply: "ok"}, WithRateLimit(2)).Router()
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.3"))

	// Behind a trusted proxy each forwarded client gets its own budget.
	h = New(&fakeResponder{reply: "ok"}, WithRateLimit(1), WithTrustProxy(true)).Router()
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.2"))
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	New(nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, api.ChatPath, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClientAgainstServer(t *testing.T) {
	srv := httptest.NewServer(New(&fakeResponder{reply: "Rest."}, WithRetriever(&fakeRetriever{passages: passages(3)})).Router())
	defer srv.Close()
	client := api.NewClient(srv.URL, srv.Client())

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.StatusHealthy, health.Status)

	res := client.Chat(context.Background(), "Why rest?")
	assert.Equal(t, api.Succeeded, res.Outcome)
	assert.Equal(t, "Rest.", res.Reply)
	assert.Equal(t, 3, res.Sources)

	res = client.Chat(context.Background(), "")
	assert.Equal(t, api.Rejected, res.Outcome)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestBuildPrompt(t *testing.T) {
	general := BuildPrompt("q?", nil)
	assert.Contains(t, general, "User Question: q?")
	assert.NotContains(t, general, "Context")

	grounded := BuildPrompt("q?", []knowledge.Passage{{Content: "one"}, {Content: "two"}})
	assert.Contains(t, grounded, "one\ntwo")
}
