// Package mcp exposes the agent as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/runner"
	"github.com/aretw0/sheetpilot/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ScenariosURI is the resource listing the available scenarios.
const ScenariosURI = "sheetpilot://scenarios"

// Agent defines what the MCP server needs from the agent.
type Agent interface {
	ProcessUserMessage(ctx context.Context, sessionID, text string) domain.Reply
	Execute(ctx context.Context, sessionID string, batch domain.Batch) (domain.Outcome, error)
	ReadRange(ctx context.Context, a1 string) ([][]string, error)
	Scenarios() ports.ScenarioLoader
}

// MessageResult is the structured output of process_message.
type MessageResult struct {
	SessionID string `json:"session_id" jsonschema_description:"Session the message was processed in"`
	Text      string `json:"text" jsonschema_description:"Reply for the user"`
}

// RangeResult is the structured output of read_range.
type RangeResult struct {
	Range  string     `json:"range" jsonschema_description:"The range that was read"`
	Values [][]string `json:"values" jsonschema_description:"Cell values, row by row"`
}

// Server wraps the agent and exposes it as an MCP Server.
type Server struct {
	agent     Agent
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(agent Agent, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		agent:     agent,
		logger:    logger,
		mcpServer: server.NewMCPServer("sheetpilot-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: process_message
	messageTool := mcp.NewTool("process_message",
		mcp.WithDescription("Send a chat message to the spreadsheet agent. The planner decides which cells to change."),
		mcp.WithString("message", mcp.Required(), mcp.Description("What to do with the sheet")),
		mcp.WithString("session_id", mcp.Description("Conversation to continue (optional)")),
		mcp.WithOutputSchema[MessageResult](),
	)
	s.mcpServer.AddTool(messageTool, mcp.NewStructuredToolHandler(s.handleProcessMessage))

	// TOOL: execute_actions
	executeTool := mcp.NewTool("execute_actions",
		mcp.WithDescription("Execute an action batch directly, given as a JSON array of actions or as a program in the text action language."),
		mcp.WithString("actions", mcp.Description(`JSON array of actions, e.g. [{"type":"Select","col1":"A","row1":1,"row2":-1}]`)),
		mcp.WithString("program", mcp.Description("Text program, e.g. REGEX ^.*$ | SELECT A1 ; REGEX ^.*$ | FORMAT style: bold")),
		mcp.WithString("session_id", mcp.Description("Session whose clipboard is used (optional)")),
		mcp.WithOutputSchema[domain.Outcome](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecute))

	// TOOL: read_range
	readTool := mcp.NewTool("read_range",
		mcp.WithDescription("Read the values of an A1 range. A row of -1 means the last used row."),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 range, e.g. A1:C-1")),
		mcp.WithOutputSchema[RangeResult](),
	)
	s.mcpServer.AddTool(readTool, mcp.NewStructuredToolHandler(s.handleReadRange))
}

func (s *Server) handleProcessMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MessageResult, error) {
	message, _ := args["message"].(string)
	sessionID, _ := args["session_id"].(string)

	clean, err := runner.SanitizeMessage(message)
	if err != nil {
		s.logger.Warn("MCP process_message: input rejected", "error", err, "size", len(message))
		return MessageResult{}, fmt.Errorf("input rejected: %w", err)
	}

	reply := s.agent.ProcessUserMessage(ctx, sessionID, clean)
	return MessageResult{SessionID: sessionID, Text: reply.Text}, nil
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Outcome, error) {
	sessionID, _ := args["session_id"].(string)

	batch, err := batchFromArgs(args)
	if err != nil {
		return domain.Outcome{}, err
	}
	out, err := s.agent.Execute(ctx, sessionID, batch)
	if err != nil {
		s.logger.Error("MCP execute_actions failed", "error", err)
		return domain.Outcome{}, fmt.Errorf("execute failed: %w", err)
	}
	return out, nil
}

func batchFromArgs(args map[string]interface{}) (domain.Batch, error) {
	switch raw := args["actions"].(type) {
	case string:
		if strings.TrimSpace(raw) != "" {
			return schema.UnmarshalBatch([]byte(raw))
		}
	case []interface{}:
		return schema.DecodeBatch(raw)
	}
	if program, _ := args["program"].(string); strings.TrimSpace(program) != "" {
		return dsl.Parse(program)
	}
	return nil, errors.New("actions or program is required")
}

func (s *Server) handleReadRange(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RangeResult, error) {
	a1, _ := args["range"].(string)
	values, err := s.agent.ReadRange(ctx, a1)
	if err != nil {
		return RangeResult{}, fmt.Errorf("read failed: %w", err)
	}
	return RangeResult{Range: a1, Values: values}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: sheetpilot://scenarios
	s.mcpServer.AddResource(mcp.NewResource(ScenariosURI, "Simulation Scenarios",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.scenarios(ctx)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ScenariosURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

type scenarioEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Program     string `json:"program,omitempty"`
}

func (s *Server) scenarios(ctx context.Context) (string, error) {
	loader := s.agent.Scenarios()
	ids, err := loader.ListScenarios(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list scenarios: %w", err)
	}
	entries := make([]scenarioEntry, 0, len(ids))
	for _, id := range ids {
		sc, err := loader.Scenario(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to load scenario %s: %w", id, err)
		}
		entry := scenarioEntry{ID: sc.ID, Title: sc.Title, Description: sc.Description}
		if program, err := dsl.Print(sc.Batch); err == nil {
			entry.Program = program
		}
		entries = append(entries, entry)
	}
	jsonBytes, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}
