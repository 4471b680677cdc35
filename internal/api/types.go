package api

const (
	HealthPath = "/api/health"
	ChatPath   = "/api/chat"

	StatusHealthy = "healthy"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status                 string `json:"status"`
	ModelAvailable         bool   `json:"model_available"`
	KnowledgeBaseAvailable bool   `json:"knowledge_base_available"`
	Message                string `json:"message,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
	Sources  int    `json:"sources"`
	Model    string `json:"model,omitempty"`
}

// chatReply is ChatResponse as decoded by the client, where a missing
// response field is distinguishable from an empty one.
type chatReply struct {
	Response *string `json:"response"`
	Sources  int     `json:"sources"`
}

// ErrorResponse is returned with non-2xx statuses by the bundled server.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Outcome tags how a chat turn settled.
type Outcome int

const (
	// Succeeded: 2xx with a well-formed body.
	Succeeded Outcome = iota
	// Rejected: the server answered with a non-2xx status.
	Rejected
	// Unreachable: transport failure or a body that could not be decoded.
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	default:
		return "unreachable"
	}
}

// ChatResult is the tagged result of one chat turn.
type ChatResult struct {
	Outcome    Outcome
	Reply      string
	Sources    int
	StatusCode int
	Err        error
}
