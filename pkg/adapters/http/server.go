// Package http exposes the agent over HTTP: chat, direct batch execution,
// range reads, scenarios, metrics and a websocket chat channel.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/sheetpilot/api"
	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/cellref"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/runner"
	"github.com/aretw0/sheetpilot/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// Agent is what the HTTP surface needs from the agent.
type Agent interface {
	ProcessUserMessage(ctx context.Context, sessionID, text string) domain.Reply
	Execute(ctx context.Context, sessionID string, batch domain.Batch) (domain.Outcome, error)
	ReadRange(ctx context.Context, a1 string) ([][]string, error)
	Scenarios() ports.ScenarioLoader
}

// Server holds the handlers.
type Server struct {
	Agent   Agent
	Streams *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer serves g on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// MessageRequest is the body of POST /message.
type MessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Reply is the answer of POST /message.
type Reply struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// EchoMessage is the body and the answer of POST /echo.
type EchoMessage struct {
	Role    string `json:"role,omitempty"`
	Message string `json:"message"`
}

// ExecuteRequest is the body of POST /execute. Actions wins over Program.
type ExecuteRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Actions   []any  `json:"actions,omitempty"`
	Program   string `json:"program,omitempty"`
}

// RangeValues is the answer of GET /range.
type RangeValues struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// ScenarioInfo describes one scenario in GET /scenarios.
type ScenarioInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Actions     int    `json:"actions"`
}

// NewServer creates the handler set for agent.
func NewServer(agent Agent, opts ...Option) *Server {
	s := &Server{
		Agent:    agent,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the agent.
func NewHandler(agent Agent, opts ...Option) http.Handler {
	return NewServer(agent, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Server)
	})
	r.Post("/message", s.PostMessage)
	r.Post("/echo", s.PostEcho)
	r.Post("/execute", s.PostExecute)
	r.Get("/range", s.GetRange)
	r.Get("/scenarios", s.ListScenarios)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.ChatSocket)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PostMessage handles the POST /message request.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if !s.decode(w, r, &body) {
		return
	}
	message, err := runner.SanitizeMessage(body.Message)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid message: %v", err), http.StatusBadRequest)
		s.logger.WarnContext(r.Context(), "message rejected", "error", err, "size", len(body.Message))
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	reply := s.Agent.ProcessUserMessage(r.Context(), body.SessionID, message)
	s.Streams.Publish(Event{Type: EventReply, SessionID: body.SessionID, Text: reply.Text})
	s.writeJSON(w, http.StatusOK, Reply{SessionID: body.SessionID, Text: reply.Text})
}

// PostEcho handles the POST /echo request with the planning service's greeting.
func (s *Server) PostEcho(w http.ResponseWriter, r *http.Request) {
	var body EchoMessage
	if !s.decode(w, r, &body) {
		return
	}
	s.writeJSON(w, http.StatusOK, EchoMessage{
		Role:    domain.RoleAssistant,
		Message: domain.EchoGreeting + body.Message,
	})
}

// PostExecute handles the POST /execute request.
func (s *Server) PostExecute(w http.ResponseWriter, r *http.Request) {
	var body ExecuteRequest
	if !s.decode(w, r, &body) {
		return
	}

	var (
		batch domain.Batch
		err   error
	)
	switch {
	case body.Actions != nil:
		batch, err = schema.DecodeBatch(body.Actions)
	case strings.TrimSpace(body.Program) != "":
		batch, err = dsl.Parse(body.Program)
	default:
		err = errors.New("actions or program is required")
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	out, err := s.Agent.Execute(r.Context(), body.SessionID, batch)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "execute failed", "session_id", body.SessionID, "error", err)
		http.Error(w, runner.ErrorReply, http.StatusInternalServerError)
		return
	}
	s.Streams.Publish(Event{Type: EventOutcome, SessionID: body.SessionID, Outcome: &out})
	w.Header().Set("X-Session-Id", body.SessionID)
	s.writeJSON(w, http.StatusOK, out)
}

// GetRange handles the GET /range request.
func (s *Server) GetRange(w http.ResponseWriter, r *http.Request) {
	var a1 string
	if err := runtime.BindQueryParameter("form", true, true, "a1", r.URL.Query(), &a1); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	values, err := s.Agent.ReadRange(r.Context(), a1)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) || errors.Is(err, domain.ErrMissingParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.ErrorContext(r.Context(), "read range failed", "range", a1, "error", err)
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	label := a1
	if span, err := cellref.ParseSpan(a1); err == nil {
		label = span.String()
	}
	s.writeJSON(w, http.StatusOK, RangeValues{Range: label, Values: values})
}

// ListScenarios handles the GET /scenarios request.
func (s *Server) ListScenarios(w http.ResponseWriter, r *http.Request) {
	loader := s.Agent.Scenarios()
	ids, err := loader.ListScenarios(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list scenarios failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	infos := make([]ScenarioInfo, 0, len(ids))
	for _, id := range ids {
		sc, err := loader.Scenario(r.Context(), id)
		if err != nil {
			s.logger.WarnContext(r.Context(), "skipping unreadable scenario", "scenario", id, "error", err)
			continue
		}
		infos = append(infos, ScenarioInfo{ID: sc.ID, Title: sc.Title, Description: sc.Description, Actions: len(sc.Batch)})
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.WarnContext(r.Context(), "invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
