// ABOUTME: Thread-safe store for tool, resource, and prompt definitions.
// ABOUTME: Manages route registration, tool lookup, and server configuration merging.

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrNoResourceHandler indicates no handler is registered for a resource URI.
var ErrNoResourceHandler = errors.New("no handler for resource")

// ErrNoPromptHandler indicates no handler is registered for a prompt name.
var ErrNoPromptHandler = errors.New("no handler for prompt")

// HandlerFunc is a custom tool handler. When set on a ToolDef it takes
// priority over the REST bridge and never triggers an outbound HTTP call.
// The originating request may be nil when the tool is invoked outside an
// HTTP context (e.g. tests).
type HandlerFunc func(ctx context.Context, args map[string]any, req *http.Request) (any, error)

// ResourceHandler resolves a resource URI to its content.
type ResourceHandler func(ctx context.Context, params map[string]any) (any, error)

// PromptHandler resolves a prompt name and arguments to its content.
type PromptHandler func(ctx context.Context, args map[string]any) (any, error)

// RouteKey uniquely identifies a tool's REST binding.
type RouteKey struct {
	Method string
	Path   string
}

// ToolDef describes one tool exposed to protocol clients: its REST route,
// discovery metadata, and an optional in-process handler.
type ToolDef struct {
	Method      string
	Path        string
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Handler     HandlerFunc
}

// Key returns the route key for this definition.
func (d ToolDef) Key() RouteKey {
	return RouteKey{Method: d.Method, Path: d.Path}
}

// ResourceDef describes a URI-addressed readable value.
type ResourceDef struct {
	URI         string `json:"uri" yaml:"uri"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	MIMEType    string `json:"mimeType,omitempty" yaml:"mime_type,omitempty"`
}

// PromptArg describes one argument of a prompt template.
type PromptArg struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// PromptDef describes an argument-parameterized text template.
type PromptDef struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Arguments   []PromptArg `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Config holds server identity and the static resource/prompt catalogs.
// Zero-valued fields are treated as absent during Configure merging.
type Config struct {
	ServerName       string
	ServerVersion    string
	BasePath         string
	Resources        []ResourceDef
	ResourceHandlers map[string]ResourceHandler
	Prompts          []PromptDef
	PromptHandlers   map[string]PromptHandler
}

// Registry stores tool definitions keyed by (method, path) plus one Config.
//
// Mutating operations (Configure, Register, Clear) are expected to run during
// process startup or test teardown, before traffic is served. All operations
// are nonetheless guarded by a mutex so concurrent mutation is merely
// unordered, never a data race.
type Registry struct {
	mu     sync.RWMutex
	routes map[RouteKey]ToolDef
	order  []RouteKey // registration order; replacement keeps position
	config Config
	logger *slog.Logger
}

// New creates an empty Registry. Construct one instance per server; tests
// that need isolation build a fresh Registry rather than sharing a global.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		routes: make(map[RouteKey]ToolDef),
		logger: logger,
	}
}

// Configure shallow-merges cfg into the stored configuration: each set
// top-level field overwrites the stored one, zero-valued fields are left
// untouched. Nested maps and slices replace wholesale; there is no deep
// merge (a new ResourceHandlers map fully replaces the old one).
func (r *Registry) Configure(cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.ServerName != "" {
		r.config.ServerName = cfg.ServerName
	}
	if cfg.ServerVersion != "" {
		r.config.ServerVersion = cfg.ServerVersion
	}
	if cfg.BasePath != "" {
		r.config.BasePath = cfg.BasePath
	}
	if cfg.Resources != nil {
		r.config.Resources = cfg.Resources
	}
	if cfg.ResourceHandlers != nil {
		r.config.ResourceHandlers = cfg.ResourceHandlers
	}
	if cfg.Prompts != nil {
		r.config.Prompts = cfg.Prompts
	}
	if cfg.PromptHandlers != nil {
		r.config.PromptHandlers = cfg.PromptHandlers
	}

	r.logger.Debug("registry configured",
		"server_name", r.config.ServerName,
		"resources", len(r.config.Resources),
		"prompts", len(r.config.Prompts),
	)
}

// Register inserts def at its (method, path) route key, silently replacing
// any earlier definition at the same key (last write wins). A replaced key
// keeps its original position in iteration order. No validation is performed:
// path syntax, schema shape, and duplicate tool names are the caller's
// responsibility. Duplicate tool names across distinct routes resolve
// first-match-wins in Route.
func (r *Registry) Register(def ToolDef) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := def.Key()
	if _, exists := r.routes[key]; !exists {
		r.order = append(r.order, key)
	}
	r.routes[key] = def

	r.logger.Debug("tool registered",
		"tool_name", def.Name,
		"method", def.Method,
		"path", def.Path,
		"total_tools", len(r.routes),
	)
}

// Tools returns all registered tool definitions in registration order.
func (r *Registry) Tools() []ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolDef, 0, len(r.order))
	for _, key := range r.order {
		tools = append(tools, r.routes[key])
	}
	return tools
}

// ToolNames returns the names of all registered tools in registration order.
// Used for the unknown-tool error message.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.routes[key].Name)
	}
	return names
}

// Route returns the first registered definition whose tool name equals name,
// in registration order. When multiple routes share a tool name the earliest
// registration wins; this is documented behavior, not a guarantee callers
// should rely on.
func (r *Registry) Route(name string) (ToolDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, key := range r.order {
		if def := r.routes[key]; def.Name == name {
			return def, true
		}
	}
	return ToolDef{}, false
}

// Resources returns the configured resource catalog, empty when unset.
func (r *Registry) Resources() []ResourceDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ResourceDef, len(r.config.Resources))
	copy(out, r.config.Resources)
	return out
}

// Prompts returns the configured prompt catalog, empty when unset.
func (r *Registry) Prompts() []PromptDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PromptDef, len(r.config.Prompts))
	copy(out, r.config.Prompts)
	return out
}

// ReadResource resolves uri through the configured resource handlers.
// Returns ErrNoResourceHandler when no handler is registered for the URI.
func (r *Registry) ReadResource(ctx context.Context, uri string, params map[string]any) (any, error) {
	r.mu.RLock()
	handler, ok := r.config.ResourceHandlers[uri]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResourceHandler, uri)
	}
	return handler(ctx, params)
}

// GetPrompt resolves name through the configured prompt handlers.
// Returns ErrNoPromptHandler when no handler is registered for the name.
func (r *Registry) GetPrompt(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	handler, ok := r.config.PromptHandlers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPromptHandler, name)
	}
	return handler(ctx, args)
}

// Clear removes all route definitions. The stored configuration is
// intentionally NOT reset: resource and prompt catalogs, handlers, and
// server identity survive a Clear. Callers that want a pristine registry
// construct a new one instead.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = make(map[RouteKey]ToolDef)
	r.order = nil

	r.logger.Debug("registry cleared", "config_preserved", true)
}

// ConfigSnapshot returns a copy of the stored configuration.
func (r *Registry) ConfigSnapshot() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.config
}
