package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/sheetpilot"
	httpadapter "github.com/aretw0/sheetpilot/pkg/adapters/http"
	"github.com/aretw0/sheetpilot/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP surface until ctx is cancelled.
func Serve(ctx context.Context, rt *Runtime, port int, logger *slog.Logger) error {
	handler := httpadapter.NewHandler(rt.Agent,
		httpadapter.WithLogger(logger),
		httpadapter.WithGatherer(rt.Registry),
	)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}

// ServeMCP exposes the agent as an MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, rt *Runtime, transport string, port int, logger *slog.Logger) error {
	srv := mcp.NewServer(rt.Agent, sheetpilot.Version, logger)
	switch transport {
	case TransportStdio:
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q (use %s or %s)", transport, TransportStdio, TransportSSE)
	}
}
