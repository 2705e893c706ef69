// ABOUTME: Routes decoded MCP protocol requests to the registry and REST bridge.
// ABOUTME: Produces JSON-RPC response envelopes and maps failures to protocol error codes.

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"

	"github.com/2389/mcp-bridge/internal/bridge"
	"github.com/2389/mcp-bridge/internal/registry"
)

// ProtocolVersion is the MCP protocol version advertised on initialize.
const ProtocolVersion = "2024-11-05"

// Defaults for serverInfo when the registry configuration leaves them unset.
const (
	DefaultServerName    = "express-mcp-server"
	DefaultServerVersion = "1.0.0"
)

// ToolInfo is a tool descriptor surfaced on tools/list.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema,omitempty"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Content is a single content block in a tool result or prompt message.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result for tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// ListResourcesResult is the result for resources/list.
type ListResourcesResult struct {
	Resources []registry.ResourceDef `json:"resources"`
}

// ResourceContent is one entry of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ReadResourceResult is the result for resources/read.
type ReadResourceResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ListPromptsResult is the result for prompts/list.
type ListPromptsResult struct {
	Prompts []registry.PromptDef `json:"prompts"`
}

// GetPromptParams are the params for prompts/get.
type GetPromptParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// PromptMessage is one message of a prompts/get result.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// GetPromptResult is the result for prompts/get.
type GetPromptResult struct {
	Messages []PromptMessage `json:"messages"`
}

// ServerInfo identifies the server on initialize.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the result for initialize.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// Config contains configuration options for the Dispatcher.
type Config struct {
	Registry *registry.Registry
	Bridge   *bridge.Bridge
	Logger   *slog.Logger
}

// Dispatcher routes one decoded protocol request per call. It is stateless
// across requests; all shared state lives in the Registry.
type Dispatcher struct {
	registry *registry.Registry
	bridge   *bridge.Bridge
	logger   *slog.Logger
}

// New creates a Dispatcher with the given configuration.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Bridge == nil {
		return nil, errors.New("bridge is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		registry: cfg.Registry,
		bridge:   cfg.Bridge,
		logger:   logger,
	}, nil
}

// Dispatch routes req to its handler and returns the response envelope.
// Notifications return nil: the transport acknowledges them with a bare
// success status and no body. httpReq is the originating HTTP request and
// may be nil; it is handed to custom handlers and to the bridge for header
// forwarding.
//
// Every non-notification request yields a well-formed response, success or
// error: a panic anywhere in dispatch is converted to a -32603 envelope
// carrying the request's original id.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, httpReq *http.Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in dispatch", "method", req.Method, "panic", r)
			resp = NewError(req.ID, CodeInternalError, "Internal error")
		}
	}()

	// An absent method is a malformed envelope, not an unknown method.
	if req.Method == "" {
		return NewError(req.ID, CodeInternalError, "Internal error")
	}

	// Notifications are routed before the main switch and never produce a
	// response body.
	if strings.HasPrefix(req.Method, "notifications/") {
		d.handleNotification(req.Method)
		return nil
	}

	switch req.Method {
	case "initialize":
		return d.handleInitialize(req)
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, req, httpReq)
	case "resources/list":
		return NewResult(req.ID, ListResourcesResult{Resources: d.registry.Resources()})
	case "resources/read":
		return d.handleResourcesRead(ctx, req)
	case "prompts/list":
		return NewResult(req.ID, ListPromptsResult{Prompts: d.registry.Prompts()})
	case "prompts/get":
		return d.handlePromptsGet(ctx, req)
	default:
		return NewError(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// handleNotification logs the notification by suffix. Unrecognized suffixes
// are logged too; notifications never fail the call.
func (d *Dispatcher) handleNotification(method string) {
	suffix := strings.TrimPrefix(method, "notifications/")
	switch suffix {
	case "initialized":
		d.logger.Info("client initialized")
	case "cancelled":
		d.logger.Info("client cancelled request")
	default:
		d.logger.Warn("unrecognized notification", "method", method)
	}
}

// handleInitialize builds the capabilities object from the current config.
// Tools are always advertised; resources and prompts only when their
// configured catalogs are non-empty.
func (d *Dispatcher) handleInitialize(req *Request) *Response {
	cfg := d.registry.ConfigSnapshot()

	name := cfg.ServerName
	if name == "" {
		name = DefaultServerName
	}
	version := cfg.ServerVersion
	if version == "" {
		version = DefaultServerVersion
	}

	capabilities := map[string]any{
		"tools": map[string]any{},
	}
	if len(cfg.Resources) > 0 {
		capabilities["resources"] = map[string]any{}
	}
	if len(cfg.Prompts) > 0 {
		capabilities["prompts"] = map[string]any{}
	}

	return NewResult(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    capabilities,
		ServerInfo:      ServerInfo{Name: name, Version: version},
	})
}

// handleToolsList surfaces the registered tool descriptors.
func (d *Dispatcher) handleToolsList(req *Request) *Response {
	defs := d.registry.Tools()
	tools := make([]ToolInfo, len(defs))
	for i, def := range defs {
		tools[i] = ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
	}

	d.logger.Debug("tools/list", "count", len(tools))
	return NewResult(req.ID, ListToolsResult{Tools: tools})
}

// handleToolsCall resolves the named tool and executes it through its custom
// handler or the REST bridge. Custom handlers always take priority and never
// touch the network.
func (d *Dispatcher) handleToolsCall(ctx context.Context, req *Request, httpReq *http.Request) *Response {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, "invalid params")
		}
	}
	if params.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "tool name is required")
	}

	def, ok := d.registry.Route(params.Name)
	if !ok {
		known := strings.Join(d.registry.ToolNames(), ", ")
		return NewError(req.ID, CodeInvalidParams,
			fmt.Sprintf("Unknown tool: %s. Available tools: %s", params.Name, known))
	}

	requestID := uuid.New().String()
	d.logger.Debug("tools/call",
		"tool_name", params.Name,
		"request_id", requestID,
		"bridged", def.Handler == nil,
	)

	var result any
	var err error
	if def.Handler != nil {
		result, err = def.Handler(ctx, params.Arguments, httpReq)
	} else {
		// The configured base path prefixes the route template on a
		// working copy; the registered definition stays untouched.
		if basePath := d.registry.ConfigSnapshot().BasePath; basePath != "" {
			def.Path = basePath + def.Path
		}
		result, err = d.bridge.Call(ctx, def, params.Arguments, httpReq)
	}
	if err != nil {
		d.logger.Warn("tool execution failed",
			"tool_name", params.Name,
			"request_id", requestID,
			"error", err,
		)
		return NewError(req.ID, CodeInternalError, errMessage(err, "Tool execution failed"))
	}

	d.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"request_id", requestID,
	)

	return NewResult(req.ID, CallToolResult{
		Content: []Content{{Type: "text", Text: indentedText(result)}},
	})
}

// handleResourcesRead resolves a resource URI through the registry handlers.
// The full params object is handed to the handler alongside the URI.
func (d *Dispatcher) handleResourcesRead(ctx context.Context, req *Request) *Response {
	var params map[string]any
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, "invalid params")
		}
	}
	uri, _ := params["uri"].(string)
	if uri == "" {
		return NewError(req.ID, CodeInvalidParams, "resource uri is required")
	}

	result, err := d.registry.ReadResource(ctx, uri, params)
	if err != nil {
		d.logger.Warn("resource read failed", "uri", uri, "error", err)
		return NewError(req.ID, CodeInternalError, errMessage(err, "Resource read failed"))
	}

	return NewResult(req.ID, ReadResourceResult{
		Contents: []ResourceContent{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     plainText(result),
		}},
	})
}

// handlePromptsGet resolves a prompt through the registry handlers, with
// arguments defaulting to an empty map.
func (d *Dispatcher) handlePromptsGet(ctx context.Context, req *Request) *Response {
	var params GetPromptParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, "invalid params")
		}
	}
	if params.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "prompt name is required")
	}

	args := params.Arguments
	if args == nil {
		args = map[string]any{}
	}

	result, err := d.registry.GetPrompt(ctx, params.Name, args)
	if err != nil {
		d.logger.Warn("prompt get failed", "prompt", params.Name, "error", err)
		return NewError(req.ID, CodeInternalError, errMessage(err, "Prompt get failed"))
	}

	return NewResult(req.ID, GetPromptResult{
		Messages: []PromptMessage{{
			Role:    "user",
			Content: Content{Type: "text", Text: plainText(result)},
		}},
	})
}

// indentedText renders a handler or bridge result for tool content: strings
// pass through unchanged, everything else is JSON at 2-space indent.
func indentedText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// plainText renders a resource or prompt result: strings pass through,
// everything else is compact JSON.
func plainText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// errMessage extracts the error's message, falling back to a fixed generic
// string per operation.
func errMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
