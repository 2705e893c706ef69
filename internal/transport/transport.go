// ABOUTME: HTTP transport adapter for the MCP JSON-RPC endpoint.
// ABOUTME: Decodes inbound POST bodies, hands them to the dispatcher, and serializes envelopes.

package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/2389/mcp-bridge/internal/dispatch"
)

// DefaultPath is the MCP endpoint path when the config does not override it.
const DefaultPath = "/mcp"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Config contains configuration options for the Adapter.
type Config struct {
	Dispatcher *dispatch.Dispatcher
	Path       string
	Logger     *slog.Logger
}

// Adapter exposes the dispatcher over a single HTTP POST endpoint. Requests
// that are not a POST to the MCP path are not handled here: Middleware
// passes them to the next handler in the host pipeline unchanged.
type Adapter struct {
	dispatcher *dispatch.Dispatcher
	path       string
	logger     *slog.Logger
}

// New creates an Adapter with the given configuration.
func New(cfg Config) (*Adapter, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		dispatcher: cfg.Dispatcher,
		path:       path,
		logger:     logger,
	}, nil
}

// Path returns the MCP endpoint path.
func (a *Adapter) Path() string {
	return a.path
}

// Middleware wraps next so that POST requests to the MCP path are handled
// here and everything else flows through untouched. This is the adapter's
// only interaction contract with the host pipeline.
func (a *Adapter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == a.path && r.Method == http.MethodPost {
			a.handlePost(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP serves the MCP endpoint standalone (no next handler). Non-POST
// methods on the endpoint are rejected, other paths are not found.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != a.path {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	a.handlePost(w, r)
}

// handlePost decodes one JSON-RPC message and writes the dispatcher's
// envelope back. Notifications are acknowledged with 202 Accepted and no
// body. Decode failures are reported as internal errors rather than
// escaping to the host as an unhandled fault.
func (a *Adapter) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		a.writeResponse(w, dispatch.NewError(nil, dispatch.CodeInternalError, "Internal error"))
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		a.writeResponse(w, dispatch.NewError(nil, dispatch.CodeInternalError, "request body too large"))
		return
	}

	var req dispatch.Request
	if err := json.Unmarshal(body, &req); err != nil {
		// The id is unrecoverable from an unparseable body; respond with a
		// null id rather than inventing one.
		a.logger.Debug("malformed JSON-RPC request", "error", err)
		a.writeResponse(w, dispatch.NewError(nil, dispatch.CodeInternalError, "Internal error"))
		return
	}

	a.logger.Debug("MCP request", "method", req.Method)

	resp := a.dispatcher.Dispatch(r.Context(), &req, r)
	if resp == nil {
		// Notification: bare success acknowledgment, no response body.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	a.writeResponse(w, resp)
}

func (a *Adapter) writeResponse(w http.ResponseWriter, resp *dispatch.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}
