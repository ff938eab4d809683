// Package gateway serves a local HTTP endpoint that forwards requests to the
// AMS API through the authenticated client. Local tools talk plain HTTP to the
// gateway and get bearer attachment and token refresh for free.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/suresoft/ams-client/internal/client"
	"github.com/suresoft/ams-client/internal/observability/middleware"
)

// maxRequestBody caps forwarded request bodies.
const maxRequestBody = 10 << 20

// Forwarder executes API calls on behalf of the gateway.
type Forwarder interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
	IsAuthenticated(ctx context.Context) bool
	RefreshInProgress() bool
}

// Gateway represents the local forwarding server.
type Gateway struct {
	mux     *http.ServeMux
	server  *http.Server
	addr    string
	forward Forwarder
}

// Compile-time check that Gateway implements http.Handler
var _ http.Handler = (*Gateway)(nil)

// New creates a gateway forwarding through f.
func New(f Forwarder) *Gateway {
	g := &Gateway{forward: f}
	logger := slog.Default()

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", middleware.Chain(http.HandlerFunc(g.handleHealth),
		Recovery,
	))
	mux.Handle("/", middleware.Chain(http.HandlerFunc(g.handleForward),
		middleware.Logging(logger),
		middleware.Propagation,
		Recovery,
	))
	g.mux = mux

	return g
}

// ServeHTTP implements http.Handler interface
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Authenticated bool `json:"authenticated"`
	Refreshing    bool `json:"refreshing"`
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, healthResponse{
		Authenticated: g.forward.IsAuthenticated(r.Context()),
		Refreshing:    g.forward.RefreshInProgress(),
	}, http.StatusOK)
}

func (g *Gateway) handleForward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		writeJSONError(ctx, w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			writeJSONError(ctx, w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
	}

	req := client.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
	}
	if len(body) > 0 {
		req.Body = body
	}

	resp, err := g.forward.Do(ctx, req)
	if err != nil {
		status, detail := errorResponse(err)
		writeJSONError(ctx, w, detail, status)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		slog.DebugContext(ctx, "failed to write response", "error", err)
	}
}

// Start starts the HTTP server in the background and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (g *Gateway) Start(ctx context.Context, address string) (<-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	g.server = &http.Server{
		Handler:      g,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // covers a refresh plus the retried call
		IdleTimeout:  90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := g.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	g.addr = listener.Addr().String()
	slog.InfoContext(ctx, "gateway listening", "address", g.addr)
	return errCh, nil
}

// Addr returns the listening address, or "" before Start.
func (g *Gateway) Addr() string {
	return g.addr
}

// Shutdown performs graceful shutdown of the HTTP server.
// Returns error if shutdown fails or times out.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	if err := g.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = g.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
