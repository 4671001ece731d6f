// Package httpplanner talks to the remote planning service over HTTP.
package httpplanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sheetpilot/api"
	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// PlanPath is the planning endpoint.
	PlanPath = "/subtask-process"
	// EchoPath is the connectivity diagnostic.
	EchoPath = "/echo"

	// DefaultTimeout bounds one round trip.
	DefaultTimeout = 60 * time.Second

	maxResponseSize = 8 << 20
	userAgent       = "sheetpilot"
)

// Client implements ports.Planner and ports.Echoer against a planning service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	validate   bool
	response   *openapi3.Schema
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithoutValidation skips checking responses against the protocol document.
func WithoutValidation() Option {
	return func(c *Client) {
		c.validate = false
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("planner url is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
		validate:   true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.validate {
		doc, err := api.LoadPlanner(context.Background())
		if err != nil {
			return nil, err
		}
		c.response, err = api.Schema(doc, "PlannerResponse")
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Plan posts req to the planning endpoint. When the response carries no
// "actions" but a "program", the program is parsed as action text.
func (c *Client) Plan(ctx context.Context, req domain.PlannerRequest) (domain.PlannerResponse, error) {
	body, err := c.post(ctx, PlanPath, req)
	if err != nil {
		return domain.PlannerResponse{}, err
	}

	if c.validate {
		var doc any
		if err := json.Unmarshal(body, &doc); err != nil {
			return domain.PlannerResponse{}, fmt.Errorf("%w: %v", domain.ErrPlannerResponse, err)
		}
		if err := c.response.VisitJSON(doc); err != nil {
			return domain.PlannerResponse{}, fmt.Errorf("%w: %v", domain.ErrPlannerResponse, err)
		}
	}

	resp, err := schema.UnmarshalResponse(body)
	if err != nil {
		return domain.PlannerResponse{}, fmt.Errorf("%w: %w", domain.ErrPlannerResponse, err)
	}
	if !resp.HasActions() && strings.TrimSpace(resp.Program) != "" {
		batch, err := dsl.Parse(resp.Program)
		if err != nil {
			return domain.PlannerResponse{}, fmt.Errorf("%w: %w", domain.ErrPlannerResponse, err)
		}
		resp.Actions = batch
	}

	c.logger.DebugContext(ctx, "planner responded",
		"actions", len(resp.Actions), "has_actions", resp.HasActions(), "message", resp.Message)
	return resp.PlannerResponse, nil
}

// Echo posts payload to the diagnostic endpoint and returns the "message" field.
func (c *Client) Echo(ctx context.Context, payload string) (string, error) {
	body, err := c.post(ctx, EchoPath, map[string]string{
		"role":    domain.RoleUser,
		"message": payload,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPlannerResponse, err)
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlannerTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	start := time.Now()
	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "planner request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPlannerTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrPlannerTransport, err)
	}
	c.logger.DebugContext(ctx, "planner round trip",
		"path", path, "status", res.StatusCode, "duration", time.Since(start), "bytes", len(body))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrPlannerTransport, path, res.StatusCode)
	}
	return body, nil
}
