// Package server is the MediBot HTTP backend: a health probe and a chat
// endpoint that answers from a language model grounded in the local
// knowledge base.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/MediBot/internal/api"
	"github.com/Rorical/MediBot/internal/cache"
	"github.com/Rorical/MediBot/internal/knowledge"
	"github.com/Rorical/MediBot/internal/llm"
)

const (
	ModelName     = "medibot-enhanced"
	HealthMessage = "MediBot backend is running!"

	maxRequestBytes = 64 << 10
)

// Retriever finds passages relevant to a question.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]knowledge.Passage, error)
}

type Server struct {
	responder     llm.Responder
	retriever     Retriever
	cache         cache.Cache
	topK          int
	ratePerMinute int
	trustProxy    bool
}

type Option func(*Server)

func WithRetriever(r Retriever) Option {
	return func(s *Server) { s.retriever = r }
}

func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

func WithTopK(k int) Option {
	return func(s *Server) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithRateLimit caps chat requests per client address. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.ratePerMinute = perMinute }
}

// WithTrustProxy keys rate limiting and logs on the forwarded client address
// instead of the connection's. Headers are trivially spoofed without a proxy
// in front that rewrites them.
func WithTrustProxy(trust bool) Option {
	return func(s *Server) { s.trustProxy = trust }
}

// New builds a server. A nil responder makes every chat answer the
// technical difficulties reply.
func New(responder llm.Responder, opts ...Option) *Server {
	s := &Server{responder: responder, topK: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get(api.HealthPath, s.health)
	r.Group(func(r chi.Router) {
		if s.ratePerMinute > 0 {
			r.Use(newIPLimiter(s.ratePerMinute).Middleware)
		}
		r.Post(api.ChatPath, s.chat)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:                 api.StatusHealthy,
		ModelAvailable:         s.responder != nil,
		KnowledgeBaseAvailable: s.retriever != nil,
		Message:                HealthMessage,
	})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON body"))
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("No message provided"))
		return
	}

	log.Info().Str("request_id", middleware.GetReqID(r.Context())).Str("question", question).Msg("chat question")
	writeJSON(w, http.StatusOK, s.Answer(r.Context(), question))
}

// Answer produces the reply for one question. Model failures become
// apology replies with no sources; only real answers are cached.
func (s *Server) Answer(ctx context.Context, question string) api.ChatResponse {
	key := cache.Key(question)
	if cached, ok := s.cached(ctx, key); ok {
		return cached
	}

	if s.responder == nil {
		return api.ChatResponse{Response: ReplyNoModel, Model: ModelName}
	}

	passages := s.retrieve(ctx, question)
	text, err := s.responder.Respond(ctx, BuildPrompt(question, passages))
	if err != nil {
		log.Error().Err(err).Str("model", s.responder.Name()).Msg("model request failed")
		return api.ChatResponse{Response: failureReply(err), Model: ModelName}
	}

	resp := api.ChatResponse{Response: text, Sources: len(passages), Model: ModelName}
	s.store(ctx, key, resp)
	return resp
}

func failureReply(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "429") {
		return ReplyHighDemand
	}
	return ReplyFailed
}

func (s *Server) retrieve(ctx context.Context, question string) []knowledge.Passage {
	if s.retriever == nil {
		return nil
	}
	passages, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base search failed, answering without context")
		return nil
	}
	log.Debug().Int("passages", len(passages)).Msg("retrieved context")
	return passages
}

func (s *Server) cached(ctx context.Context, key string) (api.ChatResponse, bool) {
	var resp api.ChatResponse
	if s.cache == nil {
		return resp, false
	}
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("cache read failed")
		return resp, false
	}
	if !ok {
		return resp, false
	}
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable cache entry")
		return resp, false
	}
	return resp, true
}

func (s *Server) store(ctx context.Context, key string, resp api.ChatResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data)); err != nil {
		log.Warn().Err(err).Msg("cache write failed")
	}
}

func errorBody(msg string) api.ErrorResponse {
	return api.ErrorResponse{Error: msg}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}
